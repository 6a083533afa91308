// Package xmltree provides a small in-memory XML document tree with a
// deterministic writer and a tolerant reader. It exists because the
// configuration schema demands byte-stable output: fixed indentation,
// attributes and children in insertion order, identical bytes for identical
// trees. Sections of a document are appended by independent writers, so the
// tree API is append-only; a writer never inspects sibling state.
package xmltree

import (
	"strings"
)

// Attr is a single name/value attribute pair. Order of attributes on an
// element is the order in which they were first set.
type Attr struct {
	Name  string
	Value string
}

// Element is one node of the document tree. Text and Children are mutually
// exclusive in practice for this schema, but the writer handles both.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// New returns a detached element with the given tag.
func New(tag string) *Element {
	return &Element{Tag: tag}
}

// Child appends a new empty child element and returns it.
func (e *Element) Child(tag string) *Element {
	c := &Element{Tag: tag}
	e.Children = append(e.Children, c)
	return c
}

// ChildText appends a new child element carrying text content and returns it.
func (e *Element) ChildText(tag, text string) *Element {
	c := &Element{Tag: tag, Text: text}
	e.Children = append(e.Children, c)
	return c
}

// SetAttr upserts an attribute. A repeated set keeps the attribute's original
// position so output stays stable.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

// Attr returns the named attribute value and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrDefault returns the named attribute value, or def when absent.
func (e *Element) AttrDefault(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Find returns the first direct child with the given tag, or nil.
func (e *Element) Find(tag string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// FindAll returns every direct child with the given tag, in document order.
func (e *Element) FindAll(tag string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// ChildTextOf returns the trimmed text of the first child with the given tag,
// or the empty string when the child is absent.
func (e *Element) ChildTextOf(tag string) string {
	c := e.Find(tag)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text)
}
