package xmltree

import (
	"bytes"
	"io"
	"strings"
)

const (
	header = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"
	indent = "    "
)

// WriteTo serializes the tree rooted at e, preceded by an XML declaration.
// Output is deterministic: 4-space indentation, attributes and children in
// insertion order, empty elements collapsed to the self-closing form.
func (e *Element) WriteTo(w io.Writer) error {
	var b bytes.Buffer
	b.WriteString(header)
	writeElement(&b, e, 0)
	b.WriteByte('\n')
	_, err := w.Write(b.Bytes())
	return err
}

// Bytes returns the serialized document.
func (e *Element) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString(header)
	writeElement(&b, e, 0)
	b.WriteByte('\n')
	return b.Bytes()
}

func writeElement(b *bytes.Buffer, e *Element, depth int) {
	pad := strings.Repeat(indent, depth)
	b.WriteString(pad)
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString("=\"")
		b.WriteString(escapeAttr(a.Value))
		b.WriteByte('"')
	}
	switch {
	case len(e.Children) == 0 && e.Text == "":
		b.WriteString("/>")
	case len(e.Children) == 0:
		b.WriteByte('>')
		b.WriteString(escapeText(e.Text))
		b.WriteString("</")
		b.WriteString(e.Tag)
		b.WriteByte('>')
	default:
		b.WriteByte('>')
		if e.Text != "" {
			b.WriteString(escapeText(e.Text))
		}
		for _, c := range e.Children {
			b.WriteByte('\n')
			writeElement(b, c, depth+1)
		}
		b.WriteByte('\n')
		b.WriteString(pad)
		b.WriteString("</")
		b.WriteString(e.Tag)
		b.WriteByte('>')
	}
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
