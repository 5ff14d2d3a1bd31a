package telegram

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/promptgram/promptgram/internal/config"
)

// AuthError wraps a failure to connect or authenticate against Telegram.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("telegram auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

type GatewayState int

const (
	GatewayUninitialized GatewayState = iota
	GatewayInitializing
	GatewayReady
	GatewayFailed
)

// Handle is an established connection to Telegram. An unauthorized handle
// is still a valid handle: callers check Authorized and route to login.
type Handle struct {
	client *telegram.Client
	api    *tg.Client

	mu         sync.Mutex
	authorized bool

	cancel context.CancelFunc
	done   chan struct{}
}

func (h *Handle) Authorized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.authorized
}

func (h *Handle) setAuthorized(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.authorized = v
}

// API exposes the raw MTProto client for the service layer.
func (h *Handle) API() *tg.Client { return h.api }

// Gateway lazily constructs and memoizes a single connection. The mutex
// serializes concurrent initialization: callers arriving during the
// construction window block and then observe the memoized handle instead
// of racing to build a second one. A failed construction leaves nothing
// cached, so the next call retries.
type Gateway struct {
	cfg         *config.Config
	sessionPath string
	flow        *LoginFlow
	logger      *zap.Logger

	mu     sync.Mutex
	state  GatewayState
	handle *Handle

	dial func(ctx context.Context) (*Handle, error)
}

func NewGateway(cfg *config.Config, sessionPath string, flow *LoginFlow, logger *zap.Logger) *Gateway {
	g := &Gateway{
		cfg:         cfg,
		sessionPath: sessionPath,
		flow:        flow,
		logger:      logger.Named("gateway"),
	}
	g.dial = g.connect
	return g
}

// State reports the gateway lifecycle state.
func (g *Gateway) State() GatewayState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the memoized handle, constructing it on first use.
func (g *Gateway) Session(ctx context.Context) (*Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == GatewayReady {
		return g.handle, nil
	}

	if !g.cfg.HasCredentials() {
		return nil, config.ErrNoCredentials
	}

	g.state = GatewayInitializing
	h, err := g.dial(ctx)
	if err != nil {
		g.state = GatewayFailed
		return nil, err
	}
	g.handle = h
	g.state = GatewayReady
	return h, nil
}

// Login drives the interactive handshake for the given phone number. The
// call suspends while LoginFlow waits for the code (and optionally the
// password); on success the handle becomes authorized and the session
// token is already persisted by the session storage.
func (g *Gateway) Login(ctx context.Context, phone string) error {
	h, err := g.Session(ctx)
	if err != nil {
		return err
	}

	g.flow.SetPhone(phone)
	if err := h.client.Auth().IfNecessary(ctx, auth.NewFlow(g.flow, auth.SendCodeOptions{})); err != nil {
		return &AuthError{Err: err}
	}
	h.setAuthorized(true)
	g.logger.Info("logged in", zap.String("phone", maskPhone(phone)))
	return nil
}

// Logout disconnects, deletes the persisted session token and clears the
// memoized handle. The next Session call performs a fresh construction.
func (g *Gateway) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handle != nil {
		g.handle.cancel()
		select {
		case <-g.handle.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		g.handle = nil
	}
	g.state = GatewayUninitialized

	if err := os.Remove(g.sessionPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// connect builds the gotd client, starts its run loop and waits until the
// connection is up and the authorization status is known.
func (g *Gateway) connect(ctx context.Context) (*Handle, error) {
	client := telegram.NewClient(g.cfg.Telegram.APIID, g.cfg.Telegram.APIHash, telegram.Options{
		Logger:         g.logger.Named("mtproto"),
		SessionStorage: &session.FileStorage{Path: g.sessionPath},
	})

	runCtx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	errCh := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		errCh <- client.Run(runCtx, func(cb context.Context) error {
			close(ready)
			<-cb.Done()
			return cb.Err()
		})
	}()

	select {
	case <-ready:
	case err := <-errCh:
		cancel()
		return nil, &AuthError{Err: fmt.Errorf("connect: %w", err)}
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		cancel()
		return nil, &AuthError{Err: fmt.Errorf("auth status: %w", err)}
	}

	g.logger.Info("connected", zap.Bool("authorized", status.Authorized))

	return &Handle{
		client:     client,
		api:        client.API(),
		authorized: status.Authorized,
		cancel:     cancel,
		done:       done,
	}, nil
}

// maskPhone keeps the first two and last two digits for logs.
func maskPhone(phone string) string {
	if len(phone) < 5 {
		return "***"
	}
	masked := []byte(phone)
	for i := 2; i < len(masked)-2; i++ {
		masked[i] = '*'
	}
	return string(masked)
}
