package md

import (
	"fmt"
	"strings"
)

// Writes a table of contents linking to every header of doc, in document
// order. Headers inside quotes and list items are included. Nothing is written
// if doc has no headers.
func writeTOC(sb *strings.Builder, doc Document, idPrefix string) {
	headers := collectHeaders(nil, doc)
	if len(headers) == 0 {
		return
	}
	prefix := escapeHTML(idPrefix)
	sb.WriteString("<div class=\"toc\">\n<ul>\n")
	for i, h := range headers {
		var text strings.Builder
		plainText(&text, h.Content)
		fmt.Fprintf(sb, "<li>\n<a href=\"#%stoc_%d\">%s</a>\n</li>\n", prefix, i, text.String())
	}
	sb.WriteString("</ul>\n</div>\n")
}

func collectHeaders(headers []*Block, doc Document) []*Block {
	for i := range doc {
		b := &doc[i]
		switch b.Type {
		case BlockHeader:
			headers = append(headers, b)
		case BlockQuote, BlockSpoiler:
			headers = collectHeaders(headers, b.Children)
		case BlockList:
			for j := range b.Items {
				headers = collectHeaders(headers, b.Items[j].Children)
			}
		}
	}
	return headers
}

// Writes the text of spans without any markup.
func plainText(sb *strings.Builder, spans []Span) {
	for i := range spans {
		s := &spans[i]
		switch s.Type {
		case SpanText, SpanCode, SpanImage:
			sb.WriteString(escapeHTML(s.Text))
		case SpanEntity:
			sb.WriteString(s.Text)
		case SpanAutolink:
			sb.WriteString(escapeHTML(strings.TrimPrefix(s.Dest, "mailto:")))
		case SpanRawHTML, SpanLineBreak:
		default:
			plainText(sb, s.Children)
		}
	}
}
