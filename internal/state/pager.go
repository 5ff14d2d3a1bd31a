package state

import (
	"sync"

	"github.com/promptgram/promptgram/internal/domain"
)

// DefaultPageSize matches the batch size the picker loads per fetch.
const DefaultPageSize = 20

// Pager owns the merged, oldest-first message sequence for the active
// chat (or topic) and the backward-pagination bookkeeping around it: the
// may-have-more heuristic and the busy flag that suppresses concurrent
// backward fetches, which would otherwise corrupt scroll anchoring.
type Pager struct {
	mu          sync.Mutex
	chatID      int64
	topicID     int
	messages    []domain.Message
	seen        map[int]struct{}
	mayHaveMore bool
	busy        bool
	pageSize    int
}

func NewPager(pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pager{
		seen:     make(map[int]struct{}),
		pageSize: pageSize,
	}
}

// PageSize is the limit the next fetch should request.
func (p *Pager) PageSize() int { return p.pageSize }

// Reset clears the sequence and retargets the pager at a chat or topic.
func (p *Pager) Reset(chatID int64, topicID int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chatID = chatID
	p.topicID = topicID
	p.messages = nil
	p.seen = make(map[int]struct{})
	p.mayHaveMore = true
	p.busy = false
}

func (p *Pager) ChatID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chatID
}

func (p *Pager) TopicID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topicID
}

// SetInitial installs the newest page as the whole sequence.
func (p *Pager) SetInitial(page domain.Page) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = nil
	p.seen = make(map[int]struct{})
	for _, m := range page.Messages {
		if _, dup := p.seen[m.ID]; dup {
			continue
		}
		p.seen[m.ID] = struct{}{}
		p.messages = append(p.messages, m)
	}
	p.mayHaveMore = page.MayHaveMore
	p.busy = false
}

// Merge prepends an older page and reports how many messages were
// actually added. Messages whose id is already present are dropped; the
// service is trusted not to repeat ids, but overlapping ranges have been
// observed and silently duplicating rows is worse than skipping them.
func (p *Pager) Merge(page domain.Page) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.mayHaveMore = page.MayHaveMore
	p.busy = false

	if len(page.Messages) == 0 {
		return 0
	}

	fresh := make([]domain.Message, 0, len(page.Messages))
	for _, m := range page.Messages {
		if _, dup := p.seen[m.ID]; dup {
			continue
		}
		p.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	p.messages = append(fresh, p.messages...)
	return len(fresh)
}

// BeginFetch marks a backward fetch as outstanding. It returns false when
// one is already running or when the history is known to be exhausted;
// the caller must skip the fetch in either case.
func (p *Pager) BeginFetch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy || !p.mayHaveMore || len(p.messages) == 0 {
		return false
	}
	p.busy = true
	return true
}

// EndFetch clears the busy flag without merging, for failed fetches.
func (p *Pager) EndFetch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
}

// OldestID returns the id to use as the next BeforeID, zero when empty.
func (p *Pager) OldestID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return 0
	}
	return p.messages[0].ID
}

func (p *Pager) MayHaveMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mayHaveMore
}

// Messages returns a copy of the merged sequence, oldest first.
func (p *Pager) Messages() []domain.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Message, len(p.messages))
	copy(out, p.messages)
	return out
}

func (p *Pager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}
