package telegram

import (
	"context"
	"errors"
	"sync"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

var (
	// ErrNoPendingCode is returned by SubmitCode when Telegram has not
	// asked for a verification code.
	ErrNoPendingCode = errors.New("no verification code request outstanding")
	// ErrNoPendingPassword is returned by SubmitPassword when Telegram
	// has not asked for the 2FA password.
	ErrNoPendingPassword = errors.New("no password request outstanding")
)

// LoginFlow implements gotd's auth.UserAuthenticator for an interactive
// login. The handshake suspends inside Code/Password until the user
// supplies a value through SubmitCode/SubmitPassword; each challenge type
// holds at most one outstanding completion, owned by this instance.
//
// There is deliberately no timeout on the suspended wait: a login can sit
// on the code prompt until the context is cancelled.
type LoginFlow struct {
	mu              sync.Mutex
	phone           string
	pendingCode     chan string
	pendingPassword chan string

	// UI notifications, invoked when Telegram issues a challenge.
	OnCodeRequested     func()
	OnPasswordRequested func()
}

func NewLoginFlow() *LoginFlow {
	return &LoginFlow{}
}

// SetPhone stores the phone number the handshake will present.
func (f *LoginFlow) SetPhone(phone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phone = phone
}

func (f *LoginFlow) Phone(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phone == "" {
		return "", errors.New("phone number not set")
	}
	return f.phone, nil
}

func (f *LoginFlow) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	f.mu.Lock()
	ch := make(chan string, 1)
	f.pendingCode = ch
	notify := f.OnCodeRequested
	f.mu.Unlock()

	if notify != nil {
		notify()
	}

	select {
	case code := <-ch:
		return code, nil
	case <-ctx.Done():
		f.clearPendingCode(ch)
		return "", ctx.Err()
	}
}

func (f *LoginFlow) Password(ctx context.Context) (string, error) {
	f.mu.Lock()
	ch := make(chan string, 1)
	f.pendingPassword = ch
	notify := f.OnPasswordRequested
	f.mu.Unlock()

	if notify != nil {
		notify()
	}

	select {
	case pw := <-ch:
		return pw, nil
	case <-ctx.Done():
		f.clearPendingPassword(ch)
		return "", ctx.Err()
	}
}

// SubmitCode resolves the outstanding code challenge. It fails with
// ErrNoPendingCode when no challenge is suspended.
func (f *LoginFlow) SubmitCode(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingCode == nil {
		return ErrNoPendingCode
	}
	f.pendingCode <- code
	f.pendingCode = nil
	return nil
}

// SubmitPassword resolves the outstanding password challenge. It fails
// with ErrNoPendingPassword when no challenge is suspended.
func (f *LoginFlow) SubmitPassword(password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingPassword == nil {
		return ErrNoPendingPassword
	}
	f.pendingPassword <- password
	f.pendingPassword = nil
	return nil
}

func (f *LoginFlow) clearPendingCode(ch chan string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingCode == ch {
		f.pendingCode = nil
	}
}

func (f *LoginFlow) clearPendingPassword(ch chan string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pendingPassword == ch {
		f.pendingPassword = nil
	}
}

func (f *LoginFlow) AcceptTermsOfService(ctx context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (f *LoginFlow) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("sign up not supported")
}
