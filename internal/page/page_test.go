package page

import (
	"testing"

	"github.com/stwalsh4118/cclive/internal/dom"
	"github.com/stwalsh4118/cclive/internal/metrics"
)

const fullPage = `<html><body>
<header><span class="cc-status-dot"></span></header>
<footer><span class="cc-status-dot"></span></footer>
<div class="stats">
  <span data-stat="sessions" data-raw="5">5</span>
  <span data-stat="tokens" data-raw="1000.4">1.0k</span>
  <span data-stat="active-time" data-raw="59.5">59s</span>
  <span data-stat="tool-calls" data-raw="oops">?</span>
</div>
<details class="cc-session" data-session-id="s1"><summary><span class="cc-session-caret">&#9654;</span></summary></details>
<details class="cc-session" data-session-id="s2"><summary></summary></details>
<div id="cc-live-sessions"></div>
</body></html>`

func TestLoad(t *testing.T) {
	doc, err := dom.ParseString(fullPage)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	p := Load(doc)

	if len(p.Indicators) != 2 {
		t.Errorf("Indicators = %d, want 2", len(p.Indicators))
	}
	if len(p.Stats) != 4 {
		t.Errorf("Stats = %d, want 4", len(p.Stats))
	}
	want := metrics.Totals{Sessions: 5, Tokens: 1000, ActiveSeconds: 60, ToolCalls: 0}
	if p.Baseline != want {
		t.Errorf("Baseline = %+v, want %+v", p.Baseline, want)
	}
	if p.StaticCard("s1") == nil || p.StaticCard("s2") == nil {
		t.Error("static cards not registered")
	}
	if !p.IsStatic("s1") || p.IsStatic("live-only") {
		t.Error("IsStatic() mismatch")
	}
	if p.Container == nil {
		t.Error("Container = nil")
	}
}

func TestLoadBarePage(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><p>nothing live here</p></body></html>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	p := Load(doc)

	if len(p.Indicators) != 0 || len(p.Stats) != 0 || len(p.Cards) != 0 {
		t.Errorf("expected empty registry, got %+v", p)
	}
	if p.Container != nil {
		t.Error("Container should be nil")
	}
	if p.Baseline != (metrics.Totals{}) {
		t.Errorf("Baseline = %+v, want zero", p.Baseline)
	}
}

func TestParseRaw(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"42", 42},
		{" 7 ", 7},
		{"1.5", 2},
		{"1.49", 1},
		{"", 0},
		{"NaN", 0},
		{"abc", 0},
	}

	for _, tc := range tests {
		if got := parseRaw(tc.raw); got != tc.want {
			t.Errorf("parseRaw(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}
