// Package page builds the registry of live-updatable targets from a
// server-rendered dashboard page. The registry is built once; components hold
// handles instead of re-querying the document by selector.
package page

import (
	"math"
	"strconv"
	"strings"

	"github.com/stwalsh4118/cclive/internal/dom"
	"github.com/stwalsh4118/cclive/internal/metrics"
)

// Stat names an aggregate display on the page.
type Stat string

const (
	StatSessions   Stat = "sessions"
	StatTokens     Stat = "tokens"
	StatActiveTime Stat = "active-time"
	StatToolCalls  Stat = "tool-calls"
)

// Stats lists every aggregate display in page order.
var Stats = []Stat{StatSessions, StatTokens, StatActiveTime, StatToolCalls}

// Markup hooks the page provides.
const (
	IndicatorClass  = "cc-status-dot"
	StatAttr        = "data-stat"
	RawAttr         = "data-raw"
	SessionIDAttr   = "data-session-id"
	LiveContainerID = "cc-live-sessions"
)

// Page is the registry of targets found on the page.
type Page struct {
	Doc        *dom.Document
	Indicators []*dom.Element
	Stats      map[Stat]*dom.Element
	Baseline   metrics.Totals
	Cards      map[string]*dom.Element
	Container  *dom.Element
}

// Load scans doc for indicators, stat displays, static session cards and the
// live container. Anything missing is simply absent from the registry.
func Load(doc *dom.Document) *Page {
	p := &Page{
		Doc:        doc,
		Indicators: doc.QueryAll(dom.Class(IndicatorClass)),
		Stats:      make(map[Stat]*dom.Element),
		Cards:      make(map[string]*dom.Element),
		Container:  doc.ByID(LiveContainerID),
	}

	baseline := make(map[Stat]int64)
	for _, stat := range Stats {
		el := doc.Query(dom.AttrValue(StatAttr, string(stat)))
		if el == nil {
			continue
		}
		p.Stats[stat] = el
		raw, _ := el.Attr(RawAttr)
		baseline[stat] = parseRaw(raw)
	}
	p.Baseline = metrics.Totals{
		Sessions:      baseline[StatSessions],
		Tokens:        baseline[StatTokens],
		ActiveSeconds: baseline[StatActiveTime],
		ToolCalls:     baseline[StatToolCalls],
	}

	for _, el := range doc.QueryAll(dom.Attr(SessionIDAttr)) {
		id, _ := el.Attr(SessionIDAttr)
		if _, seen := p.Cards[id]; !seen {
			p.Cards[id] = el
		}
	}

	return p
}

// StaticCard returns the pre-rendered card for id, or nil.
func (p *Page) StaticCard(id string) *dom.Element {
	return p.Cards[id]
}

// IsStatic reports whether id is already counted in the baseline totals.
func (p *Page) IsStatic(id string) bool {
	_, ok := p.Cards[id]
	return ok
}

// parseRaw reads a data-raw value the way the page script does: numeric
// values are rounded, anything else counts as zero.
func parseRaw(raw string) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Floor(v + 0.5))
}
