// Package live reconciles pushed snapshots against the displayed page.
package live

import (
	"github.com/stwalsh4118/cclive/internal/aggregate"
	"github.com/stwalsh4118/cclive/internal/card"
	"github.com/stwalsh4118/cclive/internal/debug"
	"github.com/stwalsh4118/cclive/internal/metrics"
	"github.com/stwalsh4118/cclive/internal/page"
	"github.com/stwalsh4118/cclive/internal/reveal"
	"github.com/stwalsh4118/cclive/internal/session"
)

// Indicator state.
const (
	ActiveClass   = "active"
	TitleActive   = "Claude Code: active"
	TitleOffline  = "Claude Code: offline"
	indicatorAttr = "title"
)

// Controller owns the live session set. It must only be used from the loop
// goroutine.
type Controller struct {
	page     *page.Page
	cards    *card.Renderer
	totals   *aggregate.Recalculator
	sessions map[string]session.Session
	active   bool
}

// New wires a controller to the page and the reveal animator.
func New(p *page.Page, animator *reveal.Animator) *Controller {
	return &Controller{
		page:     p,
		cards:    card.NewRenderer(p, animator),
		totals:   aggregate.New(p),
		sessions: make(map[string]session.Session),
	}
}

// OnSnapshot applies snap. Afterwards the live set equals the snapshot's
// sessions and the page shows exactly that set.
func (c *Controller) OnSnapshot(snap session.Snapshot) {
	c.setActive(snap.Active)

	if !snap.Live() {
		c.clear()
		c.totals.Recompute(c.sessions)
		return
	}

	present := make(map[string]bool, len(snap.Sessions))
	for _, s := range snap.Sessions {
		present[s.SessionID] = true
		c.sessions[s.SessionID] = s
		if err := c.cards.Render(s); err != nil {
			debug.Log("live: render %s: %v", s.SessionID, err)
		}
	}

	for id := range c.sessions {
		if present[id] {
			continue
		}
		c.cards.Remove(id)
		delete(c.sessions, id)
	}

	c.totals.Recompute(c.sessions)
}

// Disconnect drops all live state after the channel went away.
func (c *Controller) Disconnect() {
	c.setActive(false)
	c.clear()
	c.totals.Recompute(c.sessions)
}

// Active reports the indicator state set by the last snapshot.
func (c *Controller) Active() bool {
	return c.active
}

// Sessions returns the live sessions ordered by id.
func (c *Controller) Sessions() []session.Session {
	out := make([]session.Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		out = append(out, s)
	}
	session.SortSessions(out)
	return out
}

// Totals returns the aggregate figures currently displayed.
func (c *Controller) Totals() metrics.Totals {
	return c.totals.Totals(c.sessions)
}

// Cards exposes the card renderer.
func (c *Controller) Cards() *card.Renderer {
	return c.cards
}

func (c *Controller) clear() {
	for id := range c.sessions {
		c.cards.Remove(id)
		delete(c.sessions, id)
	}
}

func (c *Controller) setActive(active bool) {
	c.active = active
	title := TitleOffline
	if active {
		title = TitleActive
	}
	for _, el := range c.page.Indicators {
		if active {
			el.AddClass(ActiveClass)
		} else {
			el.RemoveClass(ActiveClass)
		}
		el.SetAttr(indicatorAttr, title)
	}
}
