// Package board aggregates story points across a project board and annotates
// each card, column, and project header with its running total.
//
// The board is an externally owned tree. Every tick re-queries it from the
// Document; element handles must never be held across ticks.
package board

// Element is one node of the host tree.
//
// Query returns (nil, nil) when nothing matches. Selectors are evaluated
// against the element's descendants, never the element itself.
type Element interface {
	Query(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)
	TextContent() (string, error)
	HasClass(class string) (bool, error)
	AddClass(classes ...string) error
	SetTextContent(text string) error
	// Prepend inserts a detached child as the first child.
	Prepend(child Element) error
	// ReplaceChild swaps old, a direct child, for the detached next.
	ReplaceChild(next, old Element) error
}

// Document is the root of the host tree and the factory for new elements.
type Document interface {
	// Root returns the element the project is queried from.
	Root() (Element, error)
	// Body returns the element carrying the activation guard class.
	Body() (Element, error)
	CreateElement(tag string) (Element, error)
}
