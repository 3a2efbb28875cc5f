// Package view captures immutable frames of the reconciled page for display.
package view

import (
	"strings"
	"time"

	"github.com/stwalsh4118/cclive/internal/card"
	"github.com/stwalsh4118/cclive/internal/dom"
	"github.com/stwalsh4118/cclive/internal/live"
	"github.com/stwalsh4118/cclive/internal/page"
	"github.com/stwalsh4118/cclive/internal/reveal"
)

// Frame is a snapshot of everything the page shows.
type Frame struct {
	Active bool
	Title  string
	Stats  []Stat
	Cards  []Card
	At     time.Time
}

// Stat is one aggregate figure as displayed.
type Stat struct {
	Name  page.Stat
	Value string
}

// Card is one session card as displayed.
type Card struct {
	ID        string
	Project   string
	Tokens    string
	Static    bool
	Live      bool
	Rows      []Row
	Prompt    string
	Revealing bool
}

// Row is one label/value pair from a card's details table.
type Row struct {
	Label string
	Value string
}

// LiveCount returns the number of cards currently marked live.
func (f Frame) LiveCount() int {
	n := 0
	for _, c := range f.Cards {
		if c.Live {
			n++
		}
	}
	return n
}

// Stat returns the displayed value for name.
func (f Frame) Stat(name page.Stat) (string, bool) {
	for _, s := range f.Stats {
		if s.Name == name {
			return s.Value, true
		}
	}
	return "", false
}

// Capture reads p's document into a frame. Static cards come first in page
// order, followed by created cards in container order.
func Capture(p *page.Page, now time.Time) Frame {
	f := Frame{At: now}

	if len(p.Indicators) > 0 {
		dot := p.Indicators[0]
		f.Active = dot.HasClass(live.ActiveClass)
		f.Title, _ = dot.Attr("title")
	}

	for _, name := range page.Stats {
		if el, ok := p.Stats[name]; ok {
			f.Stats = append(f.Stats, Stat{Name: name, Value: strings.TrimLeft(el.Text(), " ")})
		}
	}

	for _, el := range p.Doc.QueryAll(dom.Attr(page.SessionIDAttr)) {
		id, _ := el.Attr(page.SessionIDAttr)
		if p.StaticCard(id) != el {
			continue
		}
		c := readCard(el)
		c.ID = id
		c.Static = true
		f.Cards = append(f.Cards, c)
	}

	if p.Container != nil {
		for _, el := range p.Container.Children() {
			if !el.HasClass(card.SessionClass) {
				continue
			}
			c := readCard(el)
			c.ID = strings.TrimPrefix(el.ID(), card.CardID(""))
			f.Cards = append(f.Cards, c)
		}
	}

	return f
}

func readCard(el *dom.Element) Card {
	c := Card{Live: el.HasClass(card.LiveClass)}

	if summary := el.Query(dom.Tag("summary")); summary != nil {
		if project := summary.Query(dom.Class(card.SummaryClass)); project != nil {
			c.Project = strings.TrimSpace(project.Text())
		} else {
			c.Project = summary.OwnText()
		}
		if tokens := summary.Query(dom.Class(card.TokensClass)); tokens != nil {
			c.Tokens = strings.TrimSpace(tokens.Text())
		}
	}

	if details := el.Query(dom.Class(card.DetailsClass)); details != nil {
		for _, tr := range details.QueryAll(dom.Tag("tr")) {
			cells := tr.QueryAll(dom.Tag("td"))
			if len(cells) < 2 {
				continue
			}
			c.Rows = append(c.Rows, Row{
				Label: strings.TrimSpace(cells[0].Text()),
				Value: strings.TrimSpace(cells[1].Text()),
			})
		}
	}

	if prompt := el.Query(dom.Class(card.TypewriterClass)); prompt != nil {
		c.Prompt = prompt.Text()
		c.Revealing = prompt.HasClass(reveal.ActiveClass)
	}

	return c
}
