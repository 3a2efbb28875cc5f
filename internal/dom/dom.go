// Package dom is a small mutable document model over golang.org/x/net/html.
//
// Element handles are canonical: looking up the same node twice yields the same
// *Element, so handles can be used as map keys for as long as the node stays in
// the document (or is held by the caller).
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns a parsed node tree and the handles that wrap it.
type Document struct {
	root      *html.Node
	elements  map[*html.Node]*Element
	mutations int
	flushHook func(*Element)
}

// Element is a handle to one element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Parse reads a full HTML page.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Document{
		root:     root,
		elements: make(map[*html.Node]*Element),
	}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Mutations returns the number of mutating operations applied so far.
func (d *Document) Mutations() int {
	return d.mutations
}

// SetFlushHook registers fn to be called whenever a renderer forces a layout flush.
func (d *Document) SetFlushHook(fn func(*Element)) {
	d.flushHook = fn
}

// Flush forces a layout flush for el. Transient visual state set before the
// flush is observable by the hook.
func (d *Document) Flush(el *Element) {
	if d.flushHook != nil {
		d.flushHook(el)
	}
}

// Body returns the <body> element.
func (d *Document) Body() *Element {
	return d.Query(Tag("body"))
}

// CreateElement returns a new detached element.
func (d *Document) CreateElement(tag string) *Element {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return d.wrap(n)
}

// ByID returns the element with the given id attribute, or nil.
func (d *Document) ByID(id string) *Element {
	return d.Query(AttrValue("id", id))
}

// Query returns the first element in document order that matches m, or nil.
func (d *Document) Query(m Matcher) *Element {
	return d.first(d.root, m)
}

// QueryAll returns all elements in document order that match m.
func (d *Document) QueryAll(m Matcher) []*Element {
	return d.all(d.root, m)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, ignoring write errors.
func (d *Document) String() string {
	var buf bytes.Buffer
	_ = d.Render(&buf)
	return buf.String()
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, node: n}
	d.elements[n] = el
	return el
}

func (d *Document) adopt(el *Element) {
	d.elements[el.node] = el
}

func (d *Document) forget(n *html.Node) {
	delete(d.elements, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forget(c)
	}
}

func (d *Document) first(n *html.Node, m Matcher) *Element {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if el := d.wrap(c); m(el) {
			return el
		}
		if found := d.first(c, m); found != nil {
			return found
		}
	}
	return nil
}

func (d *Document) all(n *html.Node, m Matcher) []*Element {
	var out []*Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if el := d.wrap(c); m(el) {
			out = append(out, el)
		}
		out = append(out, d.all(c, m)...)
	}
	return out
}
