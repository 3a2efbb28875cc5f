package channel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stwalsh4118/cclive/internal/loop"
	"github.com/stwalsh4118/cclive/internal/session"
)

type event struct {
	kind string
	snap session.Snapshot
}

type recorder struct {
	events chan event
}

func newRecorder() *recorder {
	return &recorder{events: make(chan event, 32)}
}

func (r *recorder) OnSnapshot(s session.Snapshot) { r.events <- event{kind: "snapshot", snap: s} }
func (r *recorder) Disconnect() { r.events <- event{kind: "disconnect"} }

func (r *recorder) next(t *testing.T) event {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel event")
		return event{}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pushServer sends messages to every connection, then closes it.
func pushServer(t *testing.T, messages ...string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var conns atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Path {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conns.Add(1)
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}))
	t.Cleanup(srv.Close)
	return srv, &conns
}

func wsURL(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := EndpointURL(srv.URL)
	if err != nil {
		t.Fatalf("EndpointURL() error = %v", err)
	}
	return u
}

func TestManagerDeliversAndReconnects(t *testing.T) {
	srv, conns := pushServer(t,
		`{"active":true,"sessions":[{"session_id":"a","total_tokens":500}]}`,
		`{not json`,
		`{"active":false}`,
	)
	rec := newRecorder()
	m := New(wsURL(t, srv), rec, WithReconnectDelay(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	first := rec.next(t)
	if first.kind != "snapshot" || !first.snap.Active || len(first.snap.Sessions) != 1 {
		t.Fatalf("first event = %+v", first)
	}
	if first.snap.Sessions[0].TotalTokens != 500 {
		t.Errorf("TotalTokens = %d, want 500", first.snap.Sessions[0].TotalTokens)
	}

	// The malformed message is skipped; the next event is the inactive snapshot.
	second := rec.next(t)
	if second.kind != "snapshot" || second.snap.Active {
		t.Fatalf("second event = %+v, want inactive snapshot", second)
	}

	if ev := rec.next(t); ev.kind != "disconnect" {
		t.Fatalf("third event = %q, want disconnect", ev.kind)
	}

	// After the fixed delay the manager dials again and gets the same stream.
	if ev := rec.next(t); ev.kind != "snapshot" {
		t.Fatalf("event after reconnect = %q, want snapshot", ev.kind)
	}
	if conns.Load() < 2 {
		t.Errorf("connections = %d, want at least 2", conns.Load())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	_, received, dropped := m.Stats()
	if dropped < 1 {
		t.Errorf("dropped = %d, want at least 1", dropped)
	}
	if received < 3 {
		t.Errorf("received = %d, want at least 3", received)
	}
}

func TestManagerDialFailureIsDisconnect(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(t, srv)
	srv.Close()

	rec := newRecorder()
	m := New(url, rec, WithReconnectDelay(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	for i := 0; i < 3; i++ {
		if ev := rec.next(t); ev.kind != "disconnect" {
			t.Fatalf("event %d = %q, want disconnect", i, ev.kind)
		}
	}
	if attempts, _, _ := m.Stats(); attempts < 3 {
		t.Errorf("attempts = %d, want at least 3", attempts)
	}
	if m.Connected() {
		t.Error("Connected() = true without a server")
	}
}

func TestManagerStopsOnCancelWhileConnected(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"active":true}`))
		<-block
	}))
	defer srv.Close()
	defer close(block)

	rec := newRecorder()
	m := New(wsURL(t, srv), rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	rec.next(t)
	if !m.Connected() {
		t.Error("Connected() = false while reading")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	select {
	case ev := <-rec.events:
		t.Errorf("unexpected event after cancel: %q", ev.kind)
	default:
	}
}

func TestOnLoopPostsCallbacks(t *testing.T) {
	l := loop.New(0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})
	h := OnLoop(l, handlerFuncs{
		snapshot: func(s session.Snapshot) {
			mu.Lock()
			order = append(order, "snapshot")
			mu.Unlock()
		},
		disconnect: func() {
			mu.Lock()
			order = append(order, "disconnect")
			mu.Unlock()
			close(done)
		},
	})

	h.OnSnapshot(session.Snapshot{Active: true})
	h.Disconnect()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callbacks never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	if got := strings.Join(order, ","); got != "snapshot,disconnect" {
		t.Errorf("order = %q", got)
	}
}

type handlerFuncs struct {
	snapshot   func(session.Snapshot)
	disconnect func()
}

func (h handlerFuncs) OnSnapshot(s session.Snapshot) { h.snapshot(s) }
func (h handlerFuncs) Disconnect() { h.disconnect() }

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		page    string
		want    string
		wantErr bool
	}{
		{"http://localhost:8080/dashboard?x=1", "ws://localhost:8080/ws/live", false},
		{"https://stats.example.com/", "wss://stats.example.com/ws/live", false},
		{"wss://stats.example.com/other", "wss://stats.example.com/ws/live", false},
		{"file:///tmp/page.html", "", true},
		{"/relative/page", "", true},
		{"http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			got, err := EndpointURL(tt.page)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EndpointURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("EndpointURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
