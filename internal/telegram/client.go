package telegram

import (
	"context"

	"github.com/promptgram/promptgram/internal/domain"
)

// PageRequest asks for one bounded batch of history.
type PageRequest struct {
	Chat domain.Chat
	// TopicID selects a forum thread's history instead of the main one.
	TopicID int
	// BeforeID, when nonzero, restricts the page to messages strictly
	// older than this id (backward pagination).
	BeforeID int
	Limit    int
}

// Client is the interface for Telegram read operations.
type Client interface {
	// Self returns the logged-in user.
	Self(ctx context.Context) (*domain.Sender, error)
	// ListChats fetches the dialog list as one bounded snapshot, with
	// forum topics filled in eagerly. Results are not cached.
	ListChats(ctx context.Context) ([]domain.Chat, error)
	// ListTopics fetches a forum channel's topics, capped at 100.
	// Best-effort: failures yield an empty slice, not an error.
	ListTopics(ctx context.Context, chat domain.Chat) []domain.Topic
	// FetchPage retrieves history oldest-first. A privacy-blocked
	// channel yields an empty page rather than an error.
	FetchPage(ctx context.Context, req PageRequest) (domain.Page, error)
}
