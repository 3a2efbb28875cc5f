package session

import (
	"sort"

	"github.com/stwalsh4118/cclive/internal/metrics"
)

// Session is one live code-assistant session as pushed by the dashboard server.
type Session struct {
	SessionID    string `json:"session_id"`
	Project      string `json:"project"`
	Model        string `json:"model"`
	UserPrompts  int64  `json:"user_prompts"`
	ToolCalls    int64  `json:"tool_calls"`
	TotalTokens  int64  `json:"total_tokens"`
	InputTokens  int64  `json:"input_tokens,omitempty"`
	OutputTokens int64  `json:"output_tokens,omitempty"`
	ActiveTime   int64  `json:"active_time_seconds"`
	LastPrompt   string `json:"last_prompt"`
	Summary      string `json:"summary,omitempty"`
	Sensitive    bool   `json:"sensitive,omitempty"`
}

// Snapshot is the full live state carried by one push message.
// The latest snapshot always wins.
type Snapshot struct {
	Active   bool      `json:"active"`
	Sessions []Session `json:"sessions"`
}

// Live reports whether the snapshot carries any session to display.
func (s Snapshot) Live() bool {
	return s.Active && len(s.Sessions) > 0
}

// Prompt returns the prompt text that may be shown for the session.
// Sensitive sessions never expose their prompt.
func (s Session) Prompt() string {
	if s.Sensitive {
		return ""
	}
	return s.LastPrompt
}

// Totals returns the session's contribution to the aggregate figures.
func (s Session) Totals() metrics.Totals {
	return metrics.Totals{
		Sessions:      1,
		Tokens:        s.TotalTokens,
		ActiveSeconds: s.ActiveTime,
		ToolCalls:     s.ToolCalls,
	}
}

// SortSessions orders sessions by id so that listings are stable across snapshots.
func SortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SessionID < sessions[j].SessionID
	})
}
