package xmltree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Parse reads an XML document and returns its root element. Whitespace
// between elements is dropped; text inside leaf elements is kept trimmed of
// the surrounding indentation the writer introduces.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Tag: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("parse xml: multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
			text.Reset()
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("parse xml: unbalanced end element %s", t.Name.Local)
			}
			el := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(el.Children) == 0 {
				el.Text = strings.TrimSpace(text.String())
			}
			text.Reset()
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse xml: empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("parse xml: unterminated element %s", stack[len(stack)-1].Tag)
	}
	return root, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(b []byte) (*Element, error) {
	return Parse(bytes.NewReader(b))
}
