package browser

import (
	"errors"
	"fmt"

	"boardpoints/internal/board"

	"github.com/go-rod/rod"
)

// PageDocument implements board.Document over a live page. Every call goes
// through the DevTools protocol; element handles are remote object refs and
// are only valid while the page is not reloaded.
type PageDocument struct {
	page *rod.Page
}

var _ board.Document = (*PageDocument)(nil)

// NewPageDocument wraps page. Lookups never wait for elements to appear.
func NewPageDocument(page *rod.Page) *PageDocument {
	return &PageDocument{page: page.Sleeper(rod.NotFoundSleeper)}
}

func (d *PageDocument) Root() (board.Element, error) {
	return d.single("html")
}

func (d *PageDocument) Body() (board.Element, error) {
	return d.single("body")
}

func (d *PageDocument) single(selector string) (board.Element, error) {
	el, err := d.page.Element(selector)
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s: %w", selector, err)
	}
	return &PageElement{el: el}, nil
}

// CreateElement creates a detached element in the page's document.
func (d *PageDocument) CreateElement(tag string) (board.Element, error) {
	el, err := d.page.ElementByJS(rod.Eval(`(tag) => document.createElement(tag)`, tag))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", tag, err)
	}
	return &PageElement{el: el}, nil
}

// PageElement implements board.Element over a Rod element.
type PageElement struct {
	el *rod.Element
}

var _ board.Element = (*PageElement)(nil)

func (e *PageElement) Query(selector string) (board.Element, error) {
	has, el, err := e.el.Has(selector)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	if !has {
		return nil, nil
	}
	return &PageElement{el: el}, nil
}

func (e *PageElement) QueryAll(selector string) ([]board.Element, error) {
	found, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query all %s: %w", selector, err)
	}
	out := make([]board.Element, 0, len(found))
	for _, el := range found {
		out = append(out, &PageElement{el: el})
	}
	return out, nil
}

func (e *PageElement) TextContent() (string, error) {
	res, err := e.el.Eval(`() => this.textContent`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *PageElement) HasClass(class string) (bool, error) {
	res, err := e.el.Eval(`(c) => this.classList.contains(c)`, class)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (e *PageElement) AddClass(classes ...string) error {
	args := make([]interface{}, 0, len(classes))
	for _, c := range classes {
		args = append(args, c)
	}
	_, err := e.el.Eval(`(...c) => this.classList.add(...c)`, args...)
	return err
}

func (e *PageElement) SetTextContent(text string) error {
	_, err := e.el.Eval(`(t) => { this.textContent = t }`, text)
	return err
}

func (e *PageElement) Prepend(child board.Element) error {
	c, err := asPageElement(child)
	if err != nil {
		return err
	}
	_, err = e.el.Eval(`(c) => this.prepend(c)`, c.el.Object)
	return err
}

func (e *PageElement) ReplaceChild(next, old board.Element) error {
	n, err := asPageElement(next)
	if err != nil {
		return err
	}
	o, err := asPageElement(old)
	if err != nil {
		return err
	}
	_, err = e.el.Eval(`(n, o) => { this.replaceChild(n, o) }`, n.el.Object, o.el.Object)
	return err
}

func asPageElement(el board.Element) (*PageElement, error) {
	p, ok := el.(*PageElement)
	if !ok || p == nil {
		return nil, fmt.Errorf("browser: unsupported element %T", el)
	}
	return p, nil
}
