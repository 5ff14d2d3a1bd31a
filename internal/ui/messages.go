package ui

import (
	"github.com/promptgram/promptgram/internal/domain"
)

// SessionReadyMsg reports that the gateway connected; Authorized is false
// when the stored session is absent or stale and login is needed.
type SessionReadyMsg struct {
	Authorized bool
}

// SessionErrorMsg reports a failed gateway construction.
type SessionErrorMsg struct {
	Err           error
	NoCredentials bool
}

// CredentialsSavedMsg reports that the API credentials were persisted.
type CredentialsSavedMsg struct {
	Err error
}

// CodeRequestedMsg asks the login screen to show the code prompt.
type CodeRequestedMsg struct{}

// PasswordRequestedMsg asks the login screen to show the password prompt.
type PasswordRequestedMsg struct{}

// LoginFinishedMsg reports the outcome of the login handshake.
type LoginFinishedMsg struct {
	Err error
}

// SelfLoadedMsg delivers the logged-in user for the status bar.
type SelfLoadedMsg struct {
	Self *domain.Sender
}

// ChatsLoadedMsg delivers the dialog snapshot.
type ChatsLoadedMsg struct {
	Chats []domain.Chat
	Err   error
}

// TargetSelectedMsg is emitted when the user picks a chat or a topic.
type TargetSelectedMsg struct {
	Chat  domain.Chat
	Topic int // zero for the main history
}

// PageLoadedMsg delivers the newest page for the active target.
type PageLoadedMsg struct {
	ChatID int64
	Topic  int
	Page   domain.Page
	Err    error
}

// LoadOlderMsg is emitted when the viewport reaches the top.
type LoadOlderMsg struct{}

// OlderPageLoadedMsg delivers an older page for backward merge.
type OlderPageLoadedMsg struct {
	ChatID int64
	Topic  int
	Page   domain.Page
	Err    error
}

// ContinueMsg moves from the picker to the composer.
type ContinueMsg struct{}

// BackToPickerMsg aborts composition back to the selection screen.
type BackToPickerMsg struct{}

// LogoutMsg reports the outcome of a logout.
type LogoutMsg struct {
	Err error
}

// CopiedMsg reports the outcome of copying the generated prompt.
type CopiedMsg struct {
	Err error
}

// StatusMsg updates the status pill.
type StatusMsg struct {
	Text      string
	Connected bool
}

// SplashDoneMsg signals that the splash screen timeout has elapsed.
type SplashDoneMsg struct{}
