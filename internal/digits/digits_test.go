package digits

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stwalsh4118/cclive/internal/dom"
)

func newDisplay(t *testing.T, text string) *dom.Element {
	t.Helper()
	doc, err := dom.ParseString(`<span id="stat">` + text + `</span>`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc.ByID("stat")
}

func TestUpdateNoOpWhenUnchanged(t *testing.T) {
	el := newDisplay(t, "42")
	doc := el.Document()

	if Update(el, "42") {
		t.Error("Update() = true for unchanged text")
	}
	if doc.Mutations() != 0 {
		t.Errorf("mutations = %d, want 0", doc.Mutations())
	}

	Update(el, "43")
	after := doc.Mutations()
	if Update(el, "43") {
		t.Error("second Update() with same text should be a no-op")
	}
	if doc.Mutations() != after {
		t.Errorf("second Update() mutated the document (%d -> %d)", after, doc.Mutations())
	}
}

func TestUpdateMarksChangedPositions(t *testing.T) {
	tests := []struct {
		name     string
		old      string
		new      string
		entering []int
		text     string
	}{
		{"single digit change", "1200", "1205", []int{3}, "1205"},
		{"grows on the left", "999", "1.0k", []int{0, 1, 2, 3}, "1.0k"},
		{"shrinks keeps alignment", "1.0k", "999", []int{0, 1, 2, 3}, " 999"},
		{"carry", "19", "20", []int{0, 1}, "20"},
		{"from empty", "", "5", []int{0}, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := newDisplay(t, tt.old)
			var seen []int
			el.Document().SetFlushHook(func(e *dom.Element) {
				seen = Entering(e)
			})

			if !Update(el, tt.new) {
				t.Fatal("Update() = false, want true")
			}
			if !reflect.DeepEqual(seen, tt.entering) {
				t.Errorf("entering at flush = %v, want %v", seen, tt.entering)
			}
			if got := el.Text(); got != tt.text {
				t.Errorf("Text() = %q, want %q", got, tt.text)
			}
			if len(Entering(el)) != 0 {
				t.Error("entering class should be cleared after flush")
			}
			for _, span := range el.Children() {
				if !span.HasClass(DigitClass) {
					t.Errorf("child %q missing %s", span.Text(), DigitClass)
				}
			}
		})
	}
}

func TestUpdateNilElement(t *testing.T) {
	if Update(nil, "1") {
		t.Error("Update(nil) = true")
	}
}

func TestUpdateOneSpanPerCharacter(t *testing.T) {
	el := newDisplay(t, "0")
	Update(el, "1h 2m")

	children := el.Children()
	if len(children) != len("1h 2m") {
		t.Fatalf("children = %d, want %d", len(children), len("1h 2m"))
	}
	var b strings.Builder
	for _, c := range children {
		b.WriteString(c.Text())
	}
	if b.String() != "1h 2m" {
		t.Errorf("joined spans = %q", b.String())
	}
}

func TestUpdateIgnoresAlignmentPadding(t *testing.T) {
	el := newDisplay(t, "1.0k")
	doc := el.Document()

	Update(el, "999")
	after := doc.Mutations()
	if Update(el, "999") {
		t.Error("Update() re-rendered a padded value that did not change")
	}
	if doc.Mutations() != after {
		t.Error("padded no-op mutated the document")
	}
}
