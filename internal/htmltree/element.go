package htmltree

import (
	"strings"

	"boardpoints/internal/board"

	"golang.org/x/net/html"
)

// Element wraps one node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

var _ board.Element = (*Element)(nil)

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

func (e *Element) Query(selector string) (board.Element, error) {
	n, err := e.doc.first(e.node, selector)
	if err != nil || n == nil {
		return nil, err
	}
	return e.doc.wrap(n), nil
}

func (e *Element) QueryAll(selector string) ([]board.Element, error) {
	nodes, err := e.doc.all(e.node, selector)
	if err != nil {
		return nil, err
	}
	out := make([]board.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, e.doc.wrap(n))
	}
	return out, nil
}

// TextContent concatenates every descendant text node.
func (e *Element) TextContent() (string, error) {
	var sb strings.Builder
	collectText(e.node, &sb)
	return sb.String(), nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

func (e *Element) HasClass(class string) (bool, error) {
	for _, c := range classes(e.node) {
		if c == class {
			return true, nil
		}
	}
	return false, nil
}

func (e *Element) AddClass(add ...string) error {
	current := classes(e.node)
	changed := false
	for _, c := range add {
		if c == "" || contains(current, c) {
			continue
		}
		current = append(current, c)
		changed = true
	}
	if !changed {
		return nil
	}
	setAttr(e.node, "class", strings.Join(current, " "))
	e.doc.wrote()
	return nil
}

// SetTextContent replaces all children with a single text node.
func (e *Element) SetTextContent(text string) error {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	e.doc.wrote()
	return nil
}

func (e *Element) Prepend(child board.Element) error {
	c, err := e.own(child)
	if err != nil {
		return err
	}
	if c.node.Parent != nil {
		return ErrAttached
	}
	e.node.InsertBefore(c.node, e.node.FirstChild)
	e.doc.wrote()
	return nil
}

func (e *Element) ReplaceChild(next, old board.Element) error {
	n, err := e.own(next)
	if err != nil {
		return err
	}
	o, err := e.own(old)
	if err != nil {
		return err
	}
	if o.node.Parent != e.node {
		return ErrNotChild
	}
	if n.node.Parent != nil {
		return ErrAttached
	}
	e.node.InsertBefore(n.node, o.node)
	e.node.RemoveChild(o.node)
	e.doc.wrote()
	return nil
}

func (e *Element) own(el board.Element) (*Element, error) {
	o, ok := el.(*Element)
	if !ok || o == nil || o.doc != e.doc {
		return nil, ErrForeign
	}
	return o, nil
}

func classes(n *html.Node) []string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
