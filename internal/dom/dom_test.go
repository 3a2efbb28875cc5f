package dom

import (
	"strings"
	"testing"
)

const testPage = `<!DOCTYPE html><html><body>
<span class="cc-status-dot"></span>
<div id="stats"><span data-stat="tokens" data-raw="1000">1.0k</span></div>
<details class="cc-session" data-session-id="abc"><summary><span class="cc-session-caret">&#9654;</span>Project <span class="cc-session-tokens">5 tokens</span></summary><div class="cc-session-details"></div></details>
<div id="cc-live-sessions"></div>
</body></html>`

func mustParse(t *testing.T, markup string) *Document {
	t.Helper()
	doc, err := ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func TestQueries(t *testing.T) {
	doc := mustParse(t, testPage)

	if doc.Body() == nil {
		t.Fatal("Body() = nil")
	}
	if got := len(doc.QueryAll(Class("cc-status-dot"))); got != 1 {
		t.Errorf("QueryAll(cc-status-dot) = %d elements, want 1", got)
	}
	stat := doc.Query(AttrValue("data-stat", "tokens"))
	if stat == nil {
		t.Fatal("stat element not found")
	}
	if raw, _ := stat.Attr("data-raw"); raw != "1000" {
		t.Errorf("data-raw = %q, want %q", raw, "1000")
	}
	if doc.ByID("cc-live-sessions") == nil {
		t.Error("ByID(cc-live-sessions) = nil")
	}
	if doc.ByID("missing") != nil {
		t.Error("ByID(missing) should be nil")
	}

	card := doc.Query(Attr("data-session-id"))
	summary := card.Query(Tag("summary"))
	if summary == nil {
		t.Fatal("summary not found")
	}
	if got := summary.Text(); got != "▶Project 5 tokens" {
		t.Errorf("summary.Text() = %q", got)
	}
}

func TestHandlesAreCanonical(t *testing.T) {
	doc := mustParse(t, testPage)

	a := doc.ByID("cc-live-sessions")
	b := doc.Query(AttrValue("id", "cc-live-sessions"))
	if a != b {
		t.Error("expected the same *Element for the same node")
	}
}

func TestClassMutations(t *testing.T) {
	doc := mustParse(t, testPage)
	dot := doc.Query(Class("cc-status-dot"))

	before := doc.Mutations()
	dot.AddClass("active")
	if !dot.HasClass("active") {
		t.Error("AddClass did not add class")
	}
	dot.AddClass("active")
	if got := doc.Mutations() - before; got != 1 {
		t.Errorf("mutations = %d, want 1 (second AddClass is a no-op)", got)
	}

	dot.RemoveClass("active")
	if dot.HasClass("active") {
		t.Error("RemoveClass did not remove class")
	}
	if got := strings.Join(dot.Classes(), " "); got != "cc-status-dot" {
		t.Errorf("Classes() = %q, want %q", got, "cc-status-dot")
	}

	before = doc.Mutations()
	dot.RemoveClass("active")
	dot.SetAttr("class", "cc-status-dot")
	if doc.Mutations() != before {
		t.Error("no-op class and attribute writes should not count as mutations")
	}
}

func TestTextMutations(t *testing.T) {
	doc := mustParse(t, `<div id="t">old <b>bold</b></div>`)
	el := doc.ByID("t")

	el.SetText("")
	if el.Text() != "" || len(el.Children()) != 0 {
		t.Errorf("SetText(\"\") left content %q", el.Text())
	}

	el.AppendText("h")
	el.AppendText("i")
	if el.Text() != "hi" {
		t.Errorf("Text() = %q, want %q", el.Text(), "hi")
	}

	el.SetText("<not markup>")
	if el.Text() != "<not markup>" {
		t.Errorf("SetText should store literal text, got %q", el.Text())
	}
	if strings.Contains(el.InnerHTML(), "<not") {
		t.Errorf("text must be escaped on render, got %q", el.InnerHTML())
	}
}

func TestSetInnerHTML(t *testing.T) {
	doc := mustParse(t, `<div id="host"><span class="old"></span></div>`)
	host := doc.ByID("host")
	old := host.Query(Class("old"))

	err := host.SetInnerHTML(`<table><tr><td>Model</td><td>` + EscapeMarkup("<x>") + `</td></tr></table><div class="cc-typewriter"></div>`)
	if err != nil {
		t.Fatalf("SetInnerHTML() error = %v", err)
	}
	if old.Attached() {
		t.Error("previous children should be detached")
	}
	if host.Query(Class("cc-typewriter")) == nil {
		t.Error("new content not queryable")
	}
	cells := host.QueryAll(Tag("td"))
	if len(cells) != 2 || cells[1].Text() != "<x>" {
		t.Errorf("unexpected cells after SetInnerHTML: %d", len(cells))
	}
}

func TestInsertAfterAndRemove(t *testing.T) {
	doc := mustParse(t, `<summary id="s"><span class="caret"></span>text</summary>`)
	summary := doc.ByID("s")
	caret := summary.Query(Class("caret"))

	label := doc.CreateElement("span")
	label.AddClass("label")
	dot := doc.CreateElement("span")
	dot.AddClass("dot")

	summary.InsertAfter(caret, label)
	summary.InsertAfter(caret, dot)

	children := summary.Children()
	var order []string
	for _, c := range children {
		order = append(order, c.Classes()[0])
	}
	if got := strings.Join(order, ","); got != "caret,dot,label" {
		t.Errorf("child order = %q, want %q", got, "caret,dot,label")
	}
	if !strings.HasSuffix(summary.InnerHTML(), "</span>text") {
		t.Errorf("injected elements should precede existing text: %q", summary.InnerHTML())
	}

	dot.Remove()
	label.Remove()
	if dot.Attached() || label.Attached() {
		t.Error("removed elements still attached")
	}
	before := doc.Mutations()
	dot.Remove()
	if doc.Mutations() != before {
		t.Error("removing a detached element should be a no-op")
	}
	if summary.InnerHTML() != `<span class="caret"></span>text` {
		t.Errorf("summary not restored: %q", summary.InnerHTML())
	}
}

func TestReplaceWithKeepsHandle(t *testing.T) {
	doc := mustParse(t, `<div id="host"><div id="p1"></div></div>`)
	host := doc.ByID("host")
	kept := doc.ByID("p1")
	kept.SetText("typing")

	if err := host.SetInnerHTML(`<div id="placeholder"></div>`); err != nil {
		t.Fatalf("SetInnerHTML() error = %v", err)
	}
	doc.ByID("placeholder").ReplaceWith(kept)

	if doc.ByID("p1") != kept {
		t.Error("reattached element should keep its handle")
	}
	if host.Text() != "typing" {
		t.Errorf("host.Text() = %q, want %q", host.Text(), "typing")
	}
}

func TestFlushHook(t *testing.T) {
	doc := mustParse(t, `<div id="x"></div>`)
	el := doc.ByID("x")

	var seen *Element
	doc.SetFlushHook(func(e *Element) { seen = e })
	doc.Flush(el)
	if seen != el {
		t.Error("flush hook not called with element")
	}
}

func TestEscapeMarkup(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`<script>alert("xss")</script>`, `&lt;script&gt;alert("xss")&lt;/script&gt;`},
		{"a & b", "a &amp; b"},
		{"hello world", "hello world"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := EscapeMarkup(tc.input); got != tc.expected {
			t.Errorf("EscapeMarkup(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestOwnText(t *testing.T) {
	doc := mustParse(t, testPage)
	summary := doc.Query(Tag("summary"))
	if got := summary.OwnText(); got != "Project" {
		t.Errorf("OwnText() = %q, want %q", got, "Project")
	}
}
