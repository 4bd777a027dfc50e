// Package htmltree implements the board tree surfaces over a parsed HTML
// snapshot, with CSS selectors evaluated by cascadia.
package htmltree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"boardpoints/internal/board"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNotChild is returned when ReplaceChild is given a node that is not a
	// direct child of the receiver.
	ErrNotChild = errors.New("htmltree: node is not a child of this element")
	// ErrAttached is returned when inserting a node that already has a parent.
	ErrAttached = errors.New("htmltree: node is already attached")
	// ErrForeign is returned for elements that belong to another Document.
	ErrForeign = errors.New("htmltree: element belongs to another document")
)

// Document is a mutable HTML snapshot. It counts every write applied to it.
type Document struct {
	root *html.Node

	mu        sync.Mutex
	selectors map[string]cascadia.Selector
	writes    int
}

var _ board.Document = (*Document)(nil)

// Parse reads a full HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root, selectors: make(map[string]cascadia.Selector)}, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the document back out as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on error.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// Writes returns how many mutations have been applied since parsing.
func (d *Document) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

// Root returns the <html> element.
func (d *Document) Root() (board.Element, error) {
	n, err := d.first(d.root, "html")
	if err != nil || n == nil {
		return nil, err
	}
	return d.wrap(n), nil
}

// Body returns the <body> element.
func (d *Document) Body() (board.Element, error) {
	n, err := d.first(d.root, "body")
	if err != nil || n == nil {
		return nil, err
	}
	return d.wrap(n), nil
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string) (board.Element, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, errors.New("htmltree: empty tag name")
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return d.wrap(n), nil
}

// Query returns the first descendant of the document root matching selector.
func (d *Document) Query(selector string) (board.Element, error) {
	n, err := d.first(d.root, selector)
	if err != nil || n == nil {
		return nil, err
	}
	return d.wrap(n), nil
}

func (d *Document) compile(selector string) (cascadia.Selector, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	d.selectors[selector] = sel
	return sel, nil
}

// first finds the first descendant of n, excluding n, in document order.
func (d *Document) first(n *html.Node, selector string) (*html.Node, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := sel.MatchFirst(c); m != nil {
			return m, nil
		}
	}
	return nil, nil
}

// all finds every descendant of n, excluding n, in document order.
func (d *Document) all(n *html.Node, selector string) ([]*html.Node, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, sel.MatchAll(c)...)
	}
	return out, nil
}

func (d *Document) wrote() {
	d.mu.Lock()
	d.writes++
	d.mu.Unlock()
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{doc: d, node: n}
}
