package telegram

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginFlow_SubmitWithoutChallenge(t *testing.T) {
	f := NewLoginFlow()

	if err := f.SubmitCode("12345"); !errors.Is(err, ErrNoPendingCode) {
		t.Errorf("SubmitCode error = %v, want ErrNoPendingCode", err)
	}
	if err := f.SubmitPassword("hunter2"); !errors.Is(err, ErrNoPendingPassword) {
		t.Errorf("SubmitPassword error = %v, want ErrNoPendingPassword", err)
	}
}

func TestLoginFlow_CodeChallenge(t *testing.T) {
	f := NewLoginFlow()

	requested := make(chan struct{})
	f.OnCodeRequested = func() { close(requested) }

	type result struct {
		code string
		err  error
	}
	got := make(chan result, 1)
	go func() {
		code, err := f.Code(context.Background(), nil)
		got <- result{code, err}
	}()

	select {
	case <-requested:
	case <-time.After(time.Second):
		t.Fatal("OnCodeRequested was not invoked")
	}

	if err := f.SubmitCode("12345"); err != nil {
		t.Fatalf("SubmitCode error: %v", err)
	}

	select {
	case r := <-got:
		if r.err != nil {
			t.Fatalf("Code error: %v", r.err)
		}
		if r.code != "12345" {
			t.Errorf("code = %q, want 12345", r.code)
		}
	case <-time.After(time.Second):
		t.Fatal("Code did not return after submit")
	}

	// The completion is single-shot: a second submit has nothing to
	// resolve.
	if err := f.SubmitCode("67890"); !errors.Is(err, ErrNoPendingCode) {
		t.Errorf("second SubmitCode error = %v, want ErrNoPendingCode", err)
	}
}

func TestLoginFlow_PasswordChallenge(t *testing.T) {
	f := NewLoginFlow()

	requested := make(chan struct{})
	f.OnPasswordRequested = func() { close(requested) }

	got := make(chan string, 1)
	go func() {
		pw, err := f.Password(context.Background())
		if err != nil {
			t.Errorf("Password error: %v", err)
		}
		got <- pw
	}()

	<-requested
	if err := f.SubmitPassword("hunter2"); err != nil {
		t.Fatalf("SubmitPassword error: %v", err)
	}

	select {
	case pw := <-got:
		if pw != "hunter2" {
			t.Errorf("password = %q, want hunter2", pw)
		}
	case <-time.After(time.Second):
		t.Fatal("Password did not return after submit")
	}
}

func TestLoginFlow_CancelClearsChallenge(t *testing.T) {
	f := NewLoginFlow()

	ctx, cancel := context.WithCancel(context.Background())
	requested := make(chan struct{})
	f.OnCodeRequested = func() { close(requested) }

	errCh := make(chan error, 1)
	go func() {
		_, err := f.Code(ctx, nil)
		errCh <- err
	}()

	<-requested
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Code error = %v, want context.Canceled", err)
	}

	// The abandoned challenge must not accept a late submit.
	if err := f.SubmitCode("12345"); !errors.Is(err, ErrNoPendingCode) {
		t.Errorf("SubmitCode after cancel = %v, want ErrNoPendingCode", err)
	}
}

func TestLoginFlow_Phone(t *testing.T) {
	f := NewLoginFlow()

	if _, err := f.Phone(context.Background()); err == nil {
		t.Error("Phone() with no number should fail")
	}

	f.SetPhone("+15551234567")
	phone, err := f.Phone(context.Background())
	if err != nil {
		t.Fatalf("Phone error: %v", err)
	}
	if phone != "+15551234567" {
		t.Errorf("phone = %q", phone)
	}
}
