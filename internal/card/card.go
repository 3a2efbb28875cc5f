// Package card renders live sessions as dashboard cards, either by enhancing a
// server-rendered card or by building a standalone one.
package card

import (
	"fmt"
	"strings"

	"github.com/stwalsh4118/cclive/internal/dom"
	"github.com/stwalsh4118/cclive/internal/metrics"
	"github.com/stwalsh4118/cclive/internal/page"
	"github.com/stwalsh4118/cclive/internal/reveal"
	"github.com/stwalsh4118/cclive/internal/session"
)

// Card markup classes.
const (
	SessionClass     = "cc-session"
	LiveClass        = "cc-session-live"
	InjectedClass    = "cc-live-injected"
	LabelClass       = "cc-live-label"
	CaretClass       = "cc-session-caret"
	SummaryClass     = "cc-session-summary"
	TokensClass      = "cc-session-tokens"
	DetailsClass     = "cc-session-details"
	PromptBlockClass = "cc-live-prompt"
	TypewriterClass  = "cc-typewriter"
	InlineDotClass   = "cc-status-dot-inline"
)

const promptLabelHTML = `<span style="font-family:var(--font-mono);font-size:0.8rem;color:var(--muted)">Latest Prompt</span>`

// CardID is the element id of a dynamically created card.
func CardID(sessionID string) string {
	return "cc-live-" + sessionID
}

// PromptID is the element id of a session's prompt display.
func PromptID(sessionID string) string {
	return CardID(sessionID) + "-prompt"
}

// Renderer owns the card-side state of every live session.
type Renderer struct {
	page     *page.Page
	animator *reveal.Animator

	created    map[string]*dom.Element // dynamically created cards
	prompts    map[string]*dom.Element // prompt displays, both paths
	lastPrompt map[string]string       // prompt text last handed to the animator
	originals  map[*dom.Element]string // token text of static cards before enhancement
}

// NewRenderer creates a renderer for the given page.
func NewRenderer(p *page.Page, a *reveal.Animator) *Renderer {
	return &Renderer{
		page:       p,
		animator:   a,
		created:    make(map[string]*dom.Element),
		prompts:    make(map[string]*dom.Element),
		lastPrompt: make(map[string]string),
		originals:  make(map[*dom.Element]string),
	}
}

// Render shows s, enhancing its static card when the page has one.
func (r *Renderer) Render(s session.Session) error {
	if card := r.page.StaticCard(s.SessionID); card != nil {
		return r.enhance(card, s)
	}
	return r.create(s)
}

// Created returns the dynamically created card for id, or nil.
func (r *Renderer) Created(id string) *dom.Element {
	return r.created[id]
}

// PromptElement returns the prompt display for id, or nil.
func (r *Renderer) PromptElement(id string) *dom.Element {
	return r.prompts[id]
}

func (r *Renderer) enhance(card *dom.Element, s session.Session) error {
	doc := r.page.Doc
	card.AddClass(LiveClass)

	if summary := card.Query(dom.Tag("summary")); summary != nil {
		if summary.Query(dom.Class(LabelClass)) == nil {
			if caret := summary.Query(dom.Class(CaretClass)); caret != nil {
				label := doc.CreateElement("span")
				label.SetAttr("class", LabelClass+" "+InjectedClass)
				label.SetText("Live")
				dot := doc.CreateElement("span")
				dot.SetAttr("class", strings.Join([]string{page.IndicatorClass, InlineDotClass, "active", InjectedClass}, " "))

				summary.InsertAfter(caret, label)
				summary.InsertAfter(caret, dot)
			}
		}

		if tokens := summary.Query(dom.Class(TokensClass)); tokens != nil {
			if _, saved := r.originals[tokens]; !saved {
				r.originals[tokens] = tokens.Text()
			}
			text := tokenLabel(s.TotalTokens)
			if tokens.Text() != text {
				tokens.SetText(text)
			}
		}
	}

	details := card.Query(dom.Class(DetailsClass))
	prompt := s.Prompt()
	if details == nil || prompt == "" {
		return nil
	}

	el := r.prompts[s.SessionID]
	if el == nil || !card.Contains(el) {
		block := doc.CreateElement("div")
		block.SetAttr("class", PromptBlockClass+" "+InjectedClass)
		if err := block.SetInnerHTML(promptLabelHTML); err != nil {
			return err
		}
		el = doc.CreateElement("div")
		el.SetAttr("class", TypewriterClass)
		el.SetAttr("id", PromptID(s.SessionID))
		block.AppendChild(el)
		details.AppendChild(block)

		r.prompts[s.SessionID] = el
		delete(r.lastPrompt, s.SessionID)
	}

	r.reveal(s.SessionID, el, prompt)
	return nil
}

func (r *Renderer) create(s session.Session) error {
	container := r.page.Container
	if container == nil {
		return nil
	}
	doc := r.page.Doc
	id := s.SessionID

	card := r.created[id]
	if card == nil {
		card = doc.CreateElement("details")
		card.SetAttr("class", SessionClass+" "+LiveClass)
		card.SetAttr("id", CardID(id))
		container.AppendChild(card)
		r.created[id] = card
	}

	summary := card.Query(dom.Tag("summary"))
	if summary == nil {
		summary = doc.CreateElement("summary")
		card.AppendChild(summary)
	}
	if err := summary.SetInnerHTML(summaryHTML(s)); err != nil {
		return fmt.Errorf("render summary for %s: %w", id, err)
	}

	details := card.Query(dom.Class(DetailsClass))
	if details == nil {
		details = doc.CreateElement("div")
		details.SetAttr("class", DetailsClass)
		card.AppendChild(details)
	}

	// Rebuilding the details detaches the prompt display; the existing one is
	// put back so a running reveal keeps its element.
	prev := r.prompts[id]
	if err := details.SetInnerHTML(detailsHTML(s)); err != nil {
		return fmt.Errorf("render details for %s: %w", id, err)
	}
	placeholder := details.Query(dom.Class(TypewriterClass))
	switch {
	case placeholder == nil:
	case prev != nil:
		placeholder.ReplaceWith(prev)
	default:
		placeholder.SetAttr("id", PromptID(id))
		r.prompts[id] = placeholder
		delete(r.lastPrompt, id)
	}

	if el := r.prompts[id]; el != nil {
		if prompt := s.Prompt(); prompt != "" {
			r.reveal(id, el, prompt)
		}
	}
	return nil
}

// reveal animates prompt only when it differs from the last prompt shown.
func (r *Renderer) reveal(id string, el *dom.Element, prompt string) {
	if last, ok := r.lastPrompt[id]; ok && last == prompt {
		return
	}
	r.lastPrompt[id] = prompt
	r.animator.Animate(el, prompt)
}

// Revert restores a static card to its server-rendered appearance. Reverting
// a card that is not enhanced is a no-op.
func (r *Renderer) Revert(card *dom.Element) {
	if card == nil {
		return
	}
	card.RemoveClass(LiveClass)
	for _, el := range card.QueryAll(dom.Class(InjectedClass)) {
		el.Remove()
	}
	for tokens, text := range r.originals {
		if !card.Contains(tokens) {
			continue
		}
		if tokens.Text() != text {
			tokens.SetText(text)
		}
		delete(r.originals, tokens)
	}
}

// Remove tears down everything rendered for id: its reveal timer, its
// enhancement or its created card, and its last-prompt record.
func (r *Renderer) Remove(id string) {
	if el := r.prompts[id]; el != nil {
		r.animator.Cancel(el)
		delete(r.prompts, id)
	}

	if card := r.page.StaticCard(id); card != nil && card.HasClass(LiveClass) {
		r.Revert(card)
	}

	if card := r.created[id]; card != nil {
		card.Remove()
		delete(r.created, id)
	}

	delete(r.lastPrompt, id)
}

func tokenLabel(tokens int64) string {
	return metrics.FormatTokenCount(tokens) + " tokens"
}

func summaryHTML(s session.Session) string {
	project := s.Project
	if project == "" {
		project = "unknown"
	}

	var b strings.Builder
	b.WriteString(`<span class="` + CaretClass + `">&#9654;</span>`)
	b.WriteString(`<span class="` + page.IndicatorClass + ` ` + InlineDotClass + ` active"></span>`)
	b.WriteString(`<span class="` + LabelClass + `">Live</span>`)
	b.WriteString(`<span class="` + SummaryClass + `">` + dom.EscapeMarkup(project) + `</span>`)
	b.WriteString(`<span class="` + TokensClass + `">` + tokenLabel(s.TotalTokens) + `</span>`)
	return b.String()
}

func detailsHTML(s session.Session) string {
	var b strings.Builder
	b.WriteString("<table>")
	row := func(label, value string) {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>", label, value)
	}
	row("Model", dom.EscapeMarkup(s.Model))
	row("User Prompts", fmt.Sprintf("%d", s.UserPrompts))
	row("Tool Calls", fmt.Sprintf("%d", s.ToolCalls))
	row("Total Tokens", metrics.FormatTokenCount(s.TotalTokens))
	row("Active Time", metrics.FormatDuration(s.ActiveTime))
	if s.Summary != "" {
		row("Summary", dom.EscapeMarkup(s.Summary))
	}
	b.WriteString("</table>")
	b.WriteString(`<div style="margin-top:0.5rem">` + promptLabelHTML + `<div class="` + TypewriterClass + `"></div></div>`)
	return b.String()
}
