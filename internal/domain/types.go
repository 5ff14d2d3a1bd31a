package domain

import "time"

// ChatKind classifies a dialog the way Telegram does.
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// Chat is one entry in the dialog list snapshot.
type Chat struct {
	ID         int64
	Title      string
	Username   string
	Kind       ChatKind
	AccessHash int64
	IsForum    bool
	Topics     []Topic // populated eagerly for forum channels
}

// Topic is a sub-thread of a forum channel.
type Topic struct {
	ID           int
	Title        string
	IconColor    int
	TopMessage   int
	MessageCount int
	Pinned       bool
	Closed       bool
	Hidden       bool
}

// Sender identifies the user a message came from, when known.
type Sender struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type Message struct {
	ID        int       `json:"id"`
	ChatID    int64     `json:"chat_id"`
	ChatTitle string    `json:"chat_title"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"date"`
	SenderID  int64     `json:"from_id,omitempty"`
	Sender    *Sender   `json:"user,omitempty"`
	// Markdown is Text with Telegram formatting entities applied, empty
	// when the message carries no formatting.
	Markdown string `json:"-"`
}

// Page is one bounded batch of history, oldest first.
type Page struct {
	Messages []Message
	// MayHaveMore is a heuristic: true iff the service returned a full
	// page. An exact-size page does not prove more exist.
	MayHaveMore bool
	// Count is the total the service reported for sliced results, zero
	// otherwise. Informational only.
	Count int
}

// Platform selects where a generated post is intended to go.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformTwitter  Platform = "twitter"
	PlatformBoth     Platform = "both"
)

// PromptTemplate is a prompt body containing a {{messages}} placeholder.
type PromptTemplate struct {
	ID       string
	Name     string
	Body     string
	Platform Platform
}

type AuthState int

const (
	AuthStateNone AuthState = iota
	AuthStateCredentials
	AuthStatePhone
	AuthStateCode
	AuthStatePassword
	AuthStateAuthenticated
)
