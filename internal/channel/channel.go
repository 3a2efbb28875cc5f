// Package channel maintains the push connection to the dashboard server.
package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stwalsh4118/cclive/internal/debug"
	"github.com/stwalsh4118/cclive/internal/session"
)

// Path is the push endpoint on the dashboard host.
const Path = "/ws/live"

// DefaultReconnectDelay is the fixed wait between connection attempts.
const DefaultReconnectDelay = 5 * time.Second

// Handler receives channel events.
type Handler interface {
	OnSnapshot(session.Snapshot)
	Disconnect()
}

// Dialer opens websocket connections. *websocket.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// Poster queues work onto an execution context. *loop.Loop implements it.
type Poster interface {
	Post(fn func()) bool
}

// OnLoop returns a handler that runs h's callbacks on p instead of the
// reader goroutine.
func OnLoop(p Poster, h Handler) Handler {
	return &posted{p: p, h: h}
}

type posted struct {
	p Poster
	h Handler
}

func (p *posted) OnSnapshot(snap session.Snapshot) {
	p.p.Post(func() { p.h.OnSnapshot(snap) })
}

func (p *posted) Disconnect() {
	p.p.Post(p.h.Disconnect)
}

// Manager connects, decodes and reconnects forever.
type Manager struct {
	url     string
	delay   time.Duration
	dialer  Dialer
	handler Handler

	connected atomic.Bool
	attempts  atomic.Int64
	received  atomic.Int64
	dropped   atomic.Int64
}

// Option configures a Manager.
type Option func(*Manager)

// WithReconnectDelay sets the fixed wait between attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithDialer replaces websocket.DefaultDialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) {
		if d != nil {
			m.dialer = d
		}
	}
}

// New creates a manager for the endpoint at rawURL.
func New(rawURL string, h Handler, opts ...Option) *Manager {
	m := &Manager{
		url:     rawURL,
		delay:   DefaultReconnectDelay,
		dialer:  websocket.DefaultDialer,
		handler: h,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run keeps the connection alive until ctx is cancelled. Every failure,
// including a failed dial, is reported to the handler as a disconnect and
// followed by the same fixed delay. There is no retry limit.
func (m *Manager) Run(ctx context.Context) error {
	for {
		err := m.connect(ctx)
		m.connected.Store(false)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		attempts, received, dropped := m.Stats()
		debug.Logger().Info("channel closed",
			zap.String("url", m.url),
			zap.Error(err),
			zap.Duration("retry_in", m.delay),
			zap.Int64("attempts", attempts),
			zap.Int64("received", received),
			zap.Int64("dropped", dropped),
		)
		m.handler.Disconnect()

		t := time.NewTimer(m.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Connected reports whether a connection is currently open.
func (m *Manager) Connected() bool {
	return m.connected.Load()
}

// Stats returns connection attempts, decoded snapshots and dropped messages.
func (m *Manager) Stats() (attempts, received, dropped int64) {
	return m.attempts.Load(), m.received.Load(), m.dropped.Load()
}

func (m *Manager) connect(ctx context.Context) error {
	m.attempts.Add(1)
	conn, _, err := m.dialer.DialContext(ctx, m.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", m.url, err)
	}
	defer conn.Close()

	m.connected.Store(true)
	debug.Logger().Info("channel connected", zap.String("url", m.url))

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}

		snap, err := session.Decode(data)
		if err != nil {
			m.dropped.Add(1)
			debug.Logger().Warn("dropping malformed message", zap.Error(err), zap.Int("bytes", len(data)))
			continue
		}
		m.received.Add(1)
		m.handler.OnSnapshot(snap)
	}
}

// EndpointURL derives the push endpoint from the dashboard page URL. Secure
// pages get a secure channel.
func EndpointURL(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("cannot derive endpoint from %q: need an http(s) page URL", pageURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("cannot derive endpoint from %q: missing host", pageURL)
	}

	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: Path}).String(), nil
}
