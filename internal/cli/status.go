package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/stwalsh4118/cclive/internal/channel"
	"github.com/stwalsh4118/cclive/internal/metrics"
	"github.com/stwalsh4118/cclive/internal/session"
)

// DefaultStatusTimeout bounds how long status waits for the first snapshot.
const DefaultStatusTimeout = 10 * time.Second

// StatusOptions configures the one-shot status command.
type StatusOptions struct {
	Endpoint string
	Format   string // plain or tmux
	Verbose  bool
	Timeout  time.Duration
	Dialer   channel.Dialer
}

// RunStatus prints a summary of the first snapshot the server pushes.
func RunStatus(ctx context.Context, opts StatusOptions) int {
	if opts.Format == "" {
		opts.Format = "plain"
	}
	if opts.Format != "plain" && opts.Format != "tmux" {
		fmt.Fprintf(os.Stderr, "invalid format: %s\n", opts.Format)
		return 1
	}

	snap, err := firstSnapshot(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed reading live status: %v\n", err)
		return 1
	}

	output := formatSummary(snap, opts.Format, opts.Verbose)
	if output != "" {
		fmt.Fprintln(os.Stdout, output)
	}
	return 0
}

type statusEvent struct {
	snap         session.Snapshot
	disconnected bool
}

type statusHandler struct {
	events chan statusEvent
}

func (h *statusHandler) OnSnapshot(s session.Snapshot) {
	select {
	case h.events <- statusEvent{snap: s}:
	default:
	}
}

func (h *statusHandler) Disconnect() {
	select {
	case h.events <- statusEvent{disconnected: true}:
	default:
	}
}

func firstSnapshot(ctx context.Context, opts StatusOptions) (session.Snapshot, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultStatusTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	h := &statusHandler{events: make(chan statusEvent, 1)}
	m := channel.New(opts.Endpoint, h, channel.WithDialer(opts.Dialer))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case ev := <-h.events:
		if ev.disconnected {
			return session.Snapshot{}, fmt.Errorf("cannot connect to %s", opts.Endpoint)
		}
		return ev.snap, nil
	case <-ctx.Done():
		return session.Snapshot{}, fmt.Errorf("no snapshot from %s within %s", opts.Endpoint, timeout)
	}
}

func formatSummary(snap session.Snapshot, format string, verbose bool) string {
	if !snap.Live() {
		if format == "tmux" {
			return ""
		}
		return "no live sessions"
	}

	total := snap.Sessions[0].Totals()
	for _, s := range snap.Sessions[1:] {
		total = total.Add(s.Totals())
	}

	if format == "tmux" {
		return fmt.Sprintf("● %d · %s", total.Sessions, metrics.FormatTokenCount(total.Tokens))
	}

	noun := "sessions"
	if total.Sessions == 1 {
		noun = "session"
	}
	parts := []string{
		fmt.Sprintf("%d live %s", total.Sessions, noun),
		metrics.FormatTokenCount(total.Tokens) + " tokens",
		metrics.FormatDuration(total.ActiveSeconds) + " active",
		fmt.Sprintf("%d tool calls", total.ToolCalls),
	}
	summary := strings.Join(parts, ", ")
	if !verbose {
		return summary
	}

	sessions := append([]session.Session(nil), snap.Sessions...)
	session.SortSessions(sessions)
	lines := []string{summary}
	for _, s := range sessions {
		project := s.Project
		if project == "" {
			project = "unknown"
		}
		lines = append(lines, fmt.Sprintf("  %s  %s  %s tokens  %s", s.SessionID, project,
			metrics.FormatTokenCount(s.TotalTokens), metrics.FormatDuration(s.ActiveTime)))
	}
	return strings.Join(lines, "\n")
}
