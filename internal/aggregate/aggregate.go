// Package aggregate keeps the page's rolling totals in step with the live
// session set.
package aggregate

import (
	"strconv"

	"github.com/stwalsh4118/cclive/internal/digits"
	"github.com/stwalsh4118/cclive/internal/metrics"
	"github.com/stwalsh4118/cclive/internal/page"
	"github.com/stwalsh4118/cclive/internal/session"
)

// Recalculator combines the page baseline with live-session deltas.
type Recalculator struct {
	page *page.Page
}

// New creates a recalculator for p.
func New(p *page.Page) *Recalculator {
	return &Recalculator{page: p}
}

// Totals returns baseline plus the contribution of every live session that is
// not already part of the baseline.
func (r *Recalculator) Totals(live map[string]session.Session) metrics.Totals {
	total := r.page.Baseline
	for id, s := range live {
		if r.page.IsStatic(id) {
			continue
		}
		total = total.Add(s.Totals())
	}
	return total
}

// Recompute writes the current totals to the page's stat displays. Pages
// without stat displays are left alone.
func (r *Recalculator) Recompute(live map[string]session.Session) {
	if len(r.page.Stats) == 0 {
		return
	}
	total := r.Totals(live)
	for stat, el := range r.page.Stats {
		digits.Update(el, Format(stat, total))
	}
}

// Format renders the figure for stat.
func Format(stat page.Stat, t metrics.Totals) string {
	switch stat {
	case page.StatSessions:
		return strconv.FormatInt(t.Sessions, 10)
	case page.StatTokens:
		return metrics.FormatTokenCount(t.Tokens)
	case page.StatActiveTime:
		return metrics.FormatDuration(t.ActiveSeconds)
	case page.StatToolCalls:
		return strconv.FormatInt(t.ToolCalls, 10)
	default:
		return ""
	}
}
