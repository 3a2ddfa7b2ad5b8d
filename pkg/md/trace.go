package md

import (
	"fmt"
	"strings"
)

// Trace returns a textual dump of doc, one node per line. Children are
// indented by two spaces.
func Trace(doc Document) string {
	var t tracer
	t.blocks(doc, "")
	return t.String()
}

type tracer struct{ strings.Builder }

func (t *tracer) line(indent, s string) {
	if t.Len() > 0 {
		t.WriteByte('\n')
	}
	t.WriteString(indent + s)
}

func (t *tracer) blocks(doc Document, indent string) {
	for i := range doc {
		b := &doc[i]
		t.line(indent, b.Type.String())
		if b.Level != 0 {
			fmt.Fprintf(t, " Level=%d", b.Level)
		}
		if b.Ordered {
			t.WriteString(" Ordered")
		}
		if b.Text != "" {
			fmt.Fprintf(t, " Text=%q", b.Text)
		}
		inner := indent + "  "
		t.spans(b.Content, inner)
		t.blocks(b.Children, inner)
		for j := range b.Items {
			t.line(inner, "Item")
			t.spans(b.Items[j].Content, inner+"  ")
			t.blocks(b.Items[j].Children, inner+"  ")
		}
		if b.Table != nil {
			t.row("Header", b.Table.Header, inner)
			for _, row := range b.Table.Rows {
				t.row("Row", row, inner)
			}
		}
	}
}

func (t *tracer) row(name string, cells []Cell, indent string) {
	t.line(indent, name)
	for i := range cells {
		c := &cells[i]
		t.line(indent+"  ", "Cell")
		if c.Colspan > 1 {
			fmt.Fprintf(t, " Colspan=%d", c.Colspan)
		}
		if c.Align != AlignNone {
			fmt.Fprintf(t, " Align=%s", c.Align)
		}
		t.spans(c.Content, indent+"    ")
	}
}

func (t *tracer) spans(spans []Span, indent string) {
	for i := range spans {
		s := &spans[i]
		t.line(indent, s.Type.String())
		if s.Text != "" {
			fmt.Fprintf(t, " Text=%q", s.Text)
		}
		if s.Dest != "" {
			fmt.Fprintf(t, " Dest=%q", s.Dest)
		}
		if s.Title != "" {
			fmt.Fprintf(t, " Title=%q", s.Title)
		}
		if s.Email {
			t.WriteString(" Email")
		}
		if s.Tag != nil {
			fmt.Fprintf(t, " Tag=%q", s.Tag.String())
		}
		t.spans(s.Children, indent+"  ")
	}
}
