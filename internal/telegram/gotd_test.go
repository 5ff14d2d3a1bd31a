package telegram

import (
	"testing"

	"github.com/gotd/td/tg"

	"github.com/promptgram/promptgram/internal/domain"
)

func historySlice(count int, ids ...int) *tg.MessagesMessagesSlice {
	// The service returns newest first.
	msgs := make([]tg.MessageClass, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, &tg.Message{
			ID:      id,
			Message: "m",
			Date:    1700000000 + id,
			FromID:  &tg.PeerUser{UserID: 7},
		})
	}
	return &tg.MessagesMessagesSlice{
		Count:    count,
		Messages: msgs,
		Users:    []tg.UserClass{&tg.User{ID: 7, FirstName: "Ada", Username: "ada"}},
	}
}

func testRequest(limit int) PageRequest {
	return PageRequest{
		Chat:  domain.Chat{ID: 42, Title: "dev", Kind: domain.ChatSupergroup},
		Limit: limit,
	}
}

func TestConvertHistory_ReversesToOldestFirst(t *testing.T) {
	page, err := convertHistory(historySlice(100, 30, 20, 10), testRequest(20))
	if err != nil {
		t.Fatal(err)
	}

	want := []int{10, 20, 30}
	if len(page.Messages) != len(want) {
		t.Fatalf("got %d messages, want %d", len(page.Messages), len(want))
	}
	for i, id := range want {
		if page.Messages[i].ID != id {
			t.Errorf("messages[%d].ID = %d, want %d", i, page.Messages[i].ID, id)
		}
	}
	if page.Count != 100 {
		t.Errorf("Count = %d, want 100", page.Count)
	}

	first := page.Messages[0]
	if first.ChatID != 42 || first.ChatTitle != "dev" {
		t.Errorf("chat fields = (%d, %q), want (42, dev)", first.ChatID, first.ChatTitle)
	}
	if first.Sender == nil || first.Sender.FirstName != "Ada" {
		t.Errorf("sender not resolved from users: %+v", first.Sender)
	}
}

func TestConvertHistory_MayHaveMoreHeuristic(t *testing.T) {
	full := make([]int, 20)
	for i := range full {
		full[i] = 100 - i
	}

	page, err := convertHistory(historySlice(500, full...), testRequest(20))
	if err != nil {
		t.Fatal(err)
	}
	if !page.MayHaveMore {
		t.Error("exactly-full page: MayHaveMore = false, want true")
	}

	page, err = convertHistory(historySlice(7, 9, 8, 7, 6, 5, 4, 3), testRequest(20))
	if err != nil {
		t.Fatal(err)
	}
	if page.MayHaveMore {
		t.Error("short page: MayHaveMore = true, want false")
	}
}

func TestConvertHistory_NotModified(t *testing.T) {
	page, err := convertHistory(&tg.MessagesMessagesNotModified{}, testRequest(20))
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Messages) != 0 || page.MayHaveMore {
		t.Errorf("not-modified page = %+v, want empty", page)
	}
}

func TestConvertTopics(t *testing.T) {
	res := &tg.MessagesForumTopics{
		Topics: []tg.ForumTopicClass{
			&tg.ForumTopic{ID: 1, Title: "general", TopMessage: 900, Pinned: true},
			&tg.ForumTopicDeleted{ID: 2},
			&tg.ForumTopic{ID: 3, Title: "ideas", Closed: true},
		},
	}

	topics := convertTopics(res)
	if len(topics) != 2 {
		t.Fatalf("got %d topics, want 2 (deleted skipped)", len(topics))
	}
	if topics[0].ID != 1 || topics[0].Title != "general" || !topics[0].Pinned || topics[0].TopMessage != 900 {
		t.Errorf("topics[0] = %+v", topics[0])
	}
	if topics[1].ID != 3 || !topics[1].Closed {
		t.Errorf("topics[1] = %+v", topics[1])
	}
}
