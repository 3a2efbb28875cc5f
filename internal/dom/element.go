package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Document returns the document that owns e.
func (e *Element) Document() *Document {
	return e.doc
}

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// ID returns the id attribute.
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets the named attribute. Setting an unchanged value is not a mutation.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == val {
				return
			}
			e.node.Attr[i].Val = val
			e.doc.mutations++
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
	e.doc.mutations++
}

// RemoveAttr deletes the named attribute if present.
func (e *Element) RemoveAttr(key string) {
	for i, a := range e.node.Attr {
		if a.Namespace == "" && a.Key == key {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			e.doc.mutations++
			return
		}
	}
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains c.
func (e *Element) HasClass(c string) bool {
	for _, have := range e.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends c to the class list unless already present.
func (e *Element) AddClass(c string) {
	if e.HasClass(c) {
		return
	}
	e.SetAttr("class", strings.Join(append(e.Classes(), c), " "))
}

// RemoveClass drops c from the class list.
func (e *Element) RemoveClass(c string) {
	if !e.HasClass(c) {
		return
	}
	classes := e.Classes()
	kept := classes[:0]
	for _, have := range classes {
		if have != c {
			kept = append(kept, have)
		}
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// Text returns the concatenated text content of e and its descendants.
func (e *Element) Text() string {
	var b strings.Builder
	collectText(e.node, &b)
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			b.WriteString(c.Data)
		case html.ElementNode:
			collectText(c, b)
		}
	}
}

// OwnText returns the text of e's direct text children, trimmed.
func (e *Element) OwnText() string {
	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

// SetText replaces all children with a single text node.
func (e *Element) SetText(s string) {
	e.clearChildren()
	if s != "" {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
	e.doc.mutations++
}

// AppendText adds s to the end of e's text.
func (e *Element) AppendText(s string) {
	if last := e.node.LastChild; last != nil && last.Type == html.TextNode {
		last.Data += s
	} else {
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	}
	e.doc.mutations++
}

// SetInnerHTML replaces all children with the parsed markup. Callers must escape
// untrusted values with EscapeMarkup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	e.clearChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	e.doc.mutations++
	return nil
}

// InnerHTML renders the children of e.
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders e itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.node)
	return buf.String()
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	child.detach()
	e.node.AppendChild(child.node)
	e.doc.adopt(child)
	e.doc.mutations++
}

// InsertAfter moves child directly after ref, which must be a child of e.
// A nil ref inserts child as the first child.
func (e *Element) InsertAfter(ref, child *Element) {
	child.detach()
	next := e.node.FirstChild
	if ref != nil {
		next = ref.node.NextSibling
	}
	e.node.InsertBefore(child.node, next)
	e.doc.adopt(child)
	e.doc.mutations++
}

// ReplaceWith puts other in e's position and detaches e.
func (e *Element) ReplaceWith(other *Element) {
	parent := e.node.Parent
	if parent == nil || other == e {
		return
	}
	other.detach()
	parent.InsertBefore(other.node, e.node)
	parent.RemoveChild(e.node)
	e.doc.forget(e.node)
	e.doc.adopt(other)
	e.doc.mutations++
}

// Remove detaches e from its parent. Removing a detached element is a no-op.
func (e *Element) Remove() {
	if e.node.Parent == nil {
		return
	}
	e.detach()
	e.doc.forget(e.node)
	e.doc.mutations++
}

// Parent returns the parent element, or nil at the root or when detached.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Attached reports whether e is reachable from the document root.
func (e *Element) Attached() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// Contains reports whether o is e or one of its descendants.
func (e *Element) Contains(o *Element) bool {
	if o == nil {
		return false
	}
	for n := o.node; n != nil; n = n.Parent {
		if n == e.node {
			return true
		}
	}
	return false
}

// Children returns the element children of e.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.wrap(c))
		}
	}
	return out
}

// Query returns the first descendant of e matching m, or nil.
func (e *Element) Query(m Matcher) *Element {
	return e.doc.first(e.node, m)
}

// QueryAll returns all descendants of e matching m in document order.
func (e *Element) QueryAll(m Matcher) []*Element {
	return e.doc.all(e.node, m)
}

func (e *Element) detach() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

func (e *Element) clearChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		e.doc.forget(c)
		c = next
	}
}
