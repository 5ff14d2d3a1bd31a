package telegram

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/promptgram/promptgram/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Telegram.APIID = 12345
	cfg.Telegram.APIHash = "abcdef"
	return cfg
}

func testGateway(t *testing.T, cfg *config.Config) *Gateway {
	t.Helper()
	return NewGateway(cfg, filepath.Join(t.TempDir(), "session.json"), NewLoginFlow(), zap.NewNop())
}

func TestGateway_MissingCredentials(t *testing.T) {
	g := testGateway(t, &config.Config{})

	_, err := g.Session(context.Background())
	if !errors.Is(err, config.ErrNoCredentials) {
		t.Errorf("Session error = %v, want ErrNoCredentials", err)
	}
	if g.State() != GatewayUninitialized {
		t.Errorf("state = %v, want Uninitialized", g.State())
	}
}

func TestGateway_ConcurrentInitBuildsOnce(t *testing.T) {
	g := testGateway(t, testConfig())

	var dials atomic.Int32
	g.dial = func(ctx context.Context) (*Handle, error) {
		dials.Add(1)
		time.Sleep(20 * time.Millisecond) // widen the construction window
		return &Handle{authorized: true}, nil
	}

	const callers = 16
	handles := make([]*Handle, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := g.Session(context.Background())
			if err != nil {
				t.Errorf("Session error: %v", err)
				return
			}
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if n := dials.Load(); n != 1 {
		t.Errorf("dial called %d times, want 1", n)
	}
	for i := 1; i < callers; i++ {
		if handles[i] != handles[0] {
			t.Error("concurrent callers received different handles")
		}
	}
	if g.State() != GatewayReady {
		t.Errorf("state = %v, want Ready", g.State())
	}
}

func TestGateway_FailureLeavesNoHandle(t *testing.T) {
	g := testGateway(t, testConfig())

	boom := errors.New("network down")
	var dials int
	g.dial = func(ctx context.Context) (*Handle, error) {
		dials++
		if dials == 1 {
			return nil, &AuthError{Err: boom}
		}
		return &Handle{}, nil
	}

	_, err := g.Session(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Session error = %v, want AuthError", err)
	}
	if g.State() != GatewayFailed {
		t.Errorf("state = %v, want Failed", g.State())
	}

	// A retry constructs fresh.
	if _, err := g.Session(context.Background()); err != nil {
		t.Fatalf("retry Session error: %v", err)
	}
	if dials != 2 {
		t.Errorf("dial called %d times, want 2", dials)
	}
}

func TestGateway_UnauthorizedHandleIsNotAnError(t *testing.T) {
	g := testGateway(t, testConfig())
	g.dial = func(ctx context.Context) (*Handle, error) {
		return &Handle{authorized: false}, nil
	}

	h, err := g.Session(context.Background())
	if err != nil {
		t.Fatalf("Session error: %v", err)
	}
	if h.Authorized() {
		t.Error("Authorized() = true, want false")
	}
}

func TestGateway_LogoutClearsSessionAndHandle(t *testing.T) {
	sessionPath := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(sessionPath, []byte(`{"token":"x"}`), 0600); err != nil {
		t.Fatal(err)
	}

	g := NewGateway(testConfig(), sessionPath, NewLoginFlow(), zap.NewNop())

	done := make(chan struct{})
	close(done)
	g.dial = func(ctx context.Context) (*Handle, error) {
		return &Handle{authorized: true, cancel: func() {}, done: done}, nil
	}

	if _, err := g.Session(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := g.Logout(context.Background()); err != nil {
		t.Fatalf("Logout error: %v", err)
	}

	if _, err := os.Stat(sessionPath); !os.IsNotExist(err) {
		t.Error("session file still exists after logout")
	}
	if g.State() != GatewayUninitialized {
		t.Errorf("state = %v, want Uninitialized", g.State())
	}

	// A fresh construction follows logout.
	var dials int
	g.dial = func(ctx context.Context) (*Handle, error) {
		dials++
		return &Handle{}, nil
	}
	if _, err := g.Session(context.Background()); err != nil {
		t.Fatal(err)
	}
	if dials != 1 {
		t.Errorf("dial called %d times after logout, want 1", dials)
	}
}
