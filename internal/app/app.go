// Package app wires the page, the event loop, the controller and the push
// channel into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stwalsh4118/cclive/internal/channel"
	"github.com/stwalsh4118/cclive/internal/debug"
	"github.com/stwalsh4118/cclive/internal/dom"
	"github.com/stwalsh4118/cclive/internal/live"
	"github.com/stwalsh4118/cclive/internal/loop"
	"github.com/stwalsh4118/cclive/internal/page"
	"github.com/stwalsh4118/cclive/internal/pathutil"
	"github.com/stwalsh4118/cclive/internal/reveal"
	"github.com/stwalsh4118/cclive/internal/session"
	"github.com/stwalsh4118/cclive/internal/view"
)

// Options configures a Runtime.
type Options struct {
	// Page is the dashboard URL or a local HTML file.
	Page string
	// Endpoint overrides the push URL derived from Page.
	Endpoint string

	ReconnectDelay time.Duration
	RevealTick     time.Duration
	RevealSettle   time.Duration

	// OnFrame receives a frame after every change, on the loop goroutine.
	OnFrame func(view.Frame)
	// OnSnapshot observes every applied snapshot, on the loop goroutine.
	OnSnapshot func(session.Snapshot)
	// OnDisconnect observes every disconnect, on the loop goroutine.
	OnDisconnect func()

	HTTPClient *http.Client
	Dialer     channel.Dialer
}

// Runtime owns every component for one dashboard.
type Runtime struct {
	Page       *page.Page
	Loop       *loop.Loop
	Controller *live.Controller
	Channel    *channel.Manager

	endpoint string
	opts     Options
}

// New loads the page and builds the components. Nothing runs until Run.
func New(ctx context.Context, opts Options) (*Runtime, error) {
	doc, err := LoadPage(ctx, opts.Page, opts.HTTPClient)
	if err != nil {
		return nil, err
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint, err = channel.EndpointURL(opts.Page)
		if err != nil {
			return nil, fmt.Errorf("no push endpoint (set one explicitly for file pages): %w", err)
		}
	}

	p := page.Load(doc)
	l := loop.New(loop.DefaultQueueSize)
	c := live.New(p, reveal.New(l, opts.RevealTick, opts.RevealSettle))

	r := &Runtime{
		Page:       p,
		Loop:       l,
		Controller: c,
		endpoint:   endpoint,
		opts:       opts,
	}
	r.Channel = channel.New(endpoint, channel.OnLoop(l, (*handler)(r)),
		channel.WithReconnectDelay(opts.ReconnectDelay),
		channel.WithDialer(opts.Dialer),
	)
	if opts.OnFrame != nil {
		l.OnIdle(func() { opts.OnFrame(r.Frame()) })
	}

	debug.Logger().Info("page loaded",
		zap.String("page", pathutil.ShortenPath(opts.Page)),
		zap.String("endpoint", endpoint),
		zap.Int("indicators", len(p.Indicators)),
		zap.Int("stats", len(p.Stats)),
		zap.Int("static_cards", len(p.Cards)),
		zap.Bool("container", p.Container != nil),
	)
	return r, nil
}

// Endpoint returns the push URL in use.
func (r *Runtime) Endpoint() string {
	return r.endpoint
}

// Frame captures the current page. Call it only from the loop goroutine or
// after Run returned.
func (r *Runtime) Frame() view.Frame {
	return view.Capture(r.Page, time.Now())
}

// Run drives the loop and the channel until ctx is done or one of them fails.
// Cancellation and deadline expiry are not errors.
func (r *Runtime) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Loop.Run(gctx)
	})
	g.Go(func() error {
		return r.Channel.Run(gctx)
	})

	// Publish the page as loaded before the first snapshot arrives.
	r.Loop.Post(func() {})

	err := g.Wait()
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil
	}
	return err
}

// Do runs fn on the loop goroutine and waits for it.
func (r *Runtime) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !r.Loop.Post(func() {
		defer close(done)
		fn()
	}) {
		return errors.New("loop stopped")
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Render writes the reconciled page. Call it only from the loop goroutine or
// after Run returned.
func (r *Runtime) Render(w io.Writer) error {
	return r.Page.Doc.Render(w)
}

type handler Runtime

func (h *handler) OnSnapshot(snap session.Snapshot) {
	h.Controller.OnSnapshot(snap)
	if h.opts.OnSnapshot != nil {
		h.opts.OnSnapshot(snap)
	}
}

func (h *handler) Disconnect() {
	h.Controller.Disconnect()
	if h.opts.OnDisconnect != nil {
		h.opts.OnDisconnect()
	}
}

// LoadPage reads the dashboard from an http(s) URL or a local file.
func LoadPage(ctx context.Context, src string, client *http.Client) (*dom.Document, error) {
	if src == "" {
		return nil, errors.New("no dashboard page given")
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open page: %w", err)
		}
		defer f.Close()
		return dom.Parse(f)
	}

	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: unexpected status %s", resp.Status)
	}
	return dom.Parse(resp.Body)
}
