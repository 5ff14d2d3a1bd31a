package state_test

import (
	"testing"
	"time"

	"github.com/promptgram/promptgram/internal/domain"
	"github.com/promptgram/promptgram/internal/state"
)

func page(mayHaveMore bool, ids ...int) domain.Page {
	msgs := make([]domain.Message, len(ids))
	for i, id := range ids {
		msgs[i] = domain.Message{
			ID:        id,
			ChatID:    100,
			Text:      "msg",
			Timestamp: time.Unix(int64(id), 0),
		}
	}
	return domain.Page{Messages: msgs, MayHaveMore: mayHaveMore}
}

func ids(msgs []domain.Message) []int {
	out := make([]int, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestPager_InitialPage(t *testing.T) {
	p := state.NewPager(20)
	p.Reset(100, 0)
	p.SetInitial(page(true, 41, 42, 43))

	if got := ids(p.Messages()); len(got) != 3 || got[0] != 41 || got[2] != 43 {
		t.Errorf("messages = %v, want [41 42 43]", got)
	}
	if !p.MayHaveMore() {
		t.Error("MayHaveMore = false, want true")
	}
	if p.OldestID() != 41 {
		t.Errorf("OldestID = %d, want 41", p.OldestID())
	}
}

func TestPager_MergePrependsOlderPage(t *testing.T) {
	p := state.NewPager(20)
	p.Reset(100, 0)
	p.SetInitial(page(true, 41, 42, 43))

	if !p.BeginFetch() {
		t.Fatal("BeginFetch = false, want true")
	}
	added := p.Merge(page(true, 21, 22, 23))
	if added != 3 {
		t.Errorf("Merge added = %d, want 3", added)
	}

	got := ids(p.Messages())
	want := []int{21, 22, 23, 41, 42, 43}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages = %v, want %v", got, want)
		}
	}
	if p.OldestID() != 21 {
		t.Errorf("OldestID = %d, want 21", p.OldestID())
	}
}

func TestPager_MergeOrderAfterSequentialFetches(t *testing.T) {
	p := state.NewPager(3)
	p.Reset(100, 0)
	p.SetInitial(page(true, 90, 91, 92))

	pages := []domain.Page{
		page(true, 60, 61, 62),
		page(true, 30, 31, 32),
		page(false, 1, 2),
	}
	for _, pg := range pages {
		if !p.BeginFetch() {
			t.Fatal("BeginFetch = false mid-sequence")
		}
		p.Merge(pg)
	}

	got := ids(p.Messages())
	seen := make(map[int]bool)
	for i, id := range got {
		if i > 0 && got[i-1] >= id {
			t.Fatalf("sequence not strictly ascending: %v", got)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d in %v", id, got)
		}
		seen[id] = true
	}
	if p.MayHaveMore() {
		t.Error("MayHaveMore = true after short page")
	}
	if p.BeginFetch() {
		t.Error("BeginFetch = true with exhausted history")
	}
}

func TestPager_MergeDropsDuplicateIDs(t *testing.T) {
	p := state.NewPager(20)
	p.Reset(100, 0)
	p.SetInitial(page(true, 40, 41, 42))

	p.BeginFetch()
	// Overlapping range: 40 is already present.
	added := p.Merge(page(true, 38, 39, 40))
	if added != 2 {
		t.Errorf("Merge added = %d, want 2", added)
	}

	got := ids(p.Messages())
	want := []int{38, 39, 40, 41, 42}
	if len(got) != len(want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("messages = %v, want %v", got, want)
		}
	}
}

func TestPager_BusySuppressesConcurrentFetch(t *testing.T) {
	p := state.NewPager(20)
	p.Reset(100, 0)
	p.SetInitial(page(true, 10, 11))

	if !p.BeginFetch() {
		t.Fatal("first BeginFetch = false")
	}
	if p.BeginFetch() {
		t.Error("second BeginFetch = true while busy")
	}

	p.EndFetch()
	if !p.BeginFetch() {
		t.Error("BeginFetch = false after EndFetch")
	}
}

func TestPager_BeginFetchOnEmptySequence(t *testing.T) {
	p := state.NewPager(20)
	p.Reset(100, 0)
	if p.BeginFetch() {
		t.Error("BeginFetch = true with no messages loaded")
	}
}

func TestPager_ResetRetargets(t *testing.T) {
	p := state.NewPager(20)
	p.Reset(100, 0)
	p.SetInitial(page(false, 1, 2, 3))

	p.Reset(200, 7)
	if p.Len() != 0 {
		t.Errorf("Len = %d after Reset, want 0", p.Len())
	}
	if p.ChatID() != 200 || p.TopicID() != 7 {
		t.Errorf("target = (%d,%d), want (200,7)", p.ChatID(), p.TopicID())
	}
	if !p.MayHaveMore() {
		t.Error("MayHaveMore = false after Reset, want true")
	}
}
