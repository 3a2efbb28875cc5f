// Package digits renders numeric displays as per-character spans so that only
// the characters that changed animate, like an odometer.
package digits

import (
	"strings"

	"github.com/stwalsh4118/cclive/internal/dom"
)

// CSS classes applied to rendered characters.
const (
	DigitClass = "cc-digit"
	EnterClass = "cc-digit-enter"
)

const filler = ' '

// Update re-renders el to show text. Unchanged text is a no-op; padding left
// by an earlier, longer value does not count as a change.
// It reports whether el was re-rendered.
func Update(el *dom.Element, text string) bool {
	if el == nil {
		return false
	}
	old := strings.TrimLeft(el.Text(), string(filler))
	if old == text {
		return false
	}

	oldChars, newChars := alignRight([]rune(old), []rune(text))

	el.SetText("")
	doc := el.Document()
	for i, ch := range newChars {
		span := doc.CreateElement("span")
		span.AddClass(DigitClass)
		span.SetText(string(ch))
		if oldChars[i] != ch {
			span.AddClass(EnterClass)
		}
		el.AppendChild(span)
	}

	doc.Flush(el)
	for _, span := range el.QueryAll(dom.Class(EnterClass)) {
		span.RemoveClass(EnterClass)
	}
	return true
}

// Entering returns the positions tagged as entering. It is only meaningful
// from inside a flush hook.
func Entering(el *dom.Element) []int {
	var out []int
	for i, span := range el.Children() {
		if span.HasClass(EnterClass) {
			out = append(out, i)
		}
	}
	return out
}

// alignRight left-pads the shorter rune slice so both align on the right.
func alignRight(a, b []rune) ([]rune, []rune) {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	return pad(a, n), pad(b, n)
}

func pad(r []rune, n int) []rune {
	if len(r) >= n {
		return r
	}
	return []rune(strings.Repeat(string(filler), n-len(r)) + string(r))
}
