package md

import (
	"fmt"
	"strings"
)

// Control bytes other than tabs and newlines are dropped from the output.
var (
	escapeHTML = newEscaper(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;").Replace
)

func newEscaper(oldnew ...string) *strings.Replacer {
	for c := byte(0); c < 0x20; c++ {
		if c != '\t' && c != '\n' && c != '\r' {
			oldnew = append(oldnew, string([]byte{c}), "")
		}
	}
	return strings.NewReplacer(oldnew...)
}

// Escapes a link destination for use in a double-quoted attribute. Unsafe
// bytes are percent-encoded.
func escapeHref(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '&':
			sb.WriteString("&amp;")
		case c == '\'':
			sb.WriteString("&#x27;")
		case c == '\t' || c == '\n' || c == '\r' || hrefUnsafe(c):
			fmt.Fprintf(&sb, "%%%02X", c)
		case c < 0x20:
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func hrefUnsafe(c byte) bool {
	switch c {
	case ' ', '"', '<', '>', '\\', '^', '`', '{', '|', '}', 0x7f:
		return true
	}
	return c >= 0x80
}

// RenderDocument serializes a Document as HTML.
func RenderDocument(doc Document, opts Options) string {
	var sb strings.Builder
	if opts.EnableTOC {
		writeTOC(&sb, doc, opts.TOCIDPrefix)
	}
	r := htmlRenderer{opts: opts}
	r.blocks(&sb, doc)
	return sb.String()
}

type htmlRenderer struct {
	opts Options
	// Index of the next header id.
	nextHeader int
}

func (r *htmlRenderer) blocks(sb *strings.Builder, doc Document) {
	for i := range doc {
		r.block(sb, &doc[i])
	}
}

func (r *htmlRenderer) block(sb *strings.Builder, b *Block) {
	// Blocks are separated by blank lines.
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	switch b.Type {
	case BlockParagraph:
		var content strings.Builder
		r.spans(&content, b.Content)
		text := trimLeftSpace(content.String())
		if text == "" {
			return
		}
		sb.WriteString("<p>" + text + "</p>\n")
	case BlockHeader:
		if r.opts.EnableTOC {
			fmt.Fprintf(sb, `<h%d id="%stoc_%d">`,
				b.Level, escapeHTML(r.opts.TOCIDPrefix), r.nextHeader)
			r.nextHeader++
		} else {
			fmt.Fprintf(sb, "<h%d>", b.Level)
		}
		r.spans(sb, b.Content)
		fmt.Fprintf(sb, "</h%d>\n", b.Level)
	case BlockQuote, BlockSpoiler:
		if b.Type == BlockSpoiler {
			sb.WriteString("<blockquote class=\"md-spoiler-text\">\n")
		} else {
			sb.WriteString("<blockquote>\n")
		}
		var inner strings.Builder
		r.blocks(&inner, b.Children)
		sb.WriteString(inner.String())
		sb.WriteString("</blockquote>\n")
	case BlockTable:
		sb.WriteString("<table><thead>\n")
		r.tableRow(sb, b.Table.Header, "th")
		sb.WriteString("</thead><tbody>\n")
		for _, row := range b.Table.Rows {
			r.tableRow(sb, row, "td")
		}
		sb.WriteString("</tbody></table>\n")
	case BlockList:
		tag := "ul"
		if b.Ordered {
			tag = "ol"
		}
		sb.WriteString("<" + tag + ">\n")
		for i := range b.Items {
			item := &b.Items[i]
			var inner strings.Builder
			r.spans(&inner, item.Content)
			r.blocks(&inner, item.Children)
			sb.WriteString("<li>" + strings.TrimRight(inner.String(), "\n") + "</li>\n")
		}
		sb.WriteString("</" + tag + ">\n")
	case BlockCode:
		sb.WriteString("<pre><code>" + escapeHTML(b.Text) + "</code></pre>\n")
	case BlockHRule:
		sb.WriteString("<hr/>\n")
	}
}

func (r *htmlRenderer) tableRow(sb *strings.Builder, cells []Cell, tag string) {
	sb.WriteString("<tr>\n")
	for i := range cells {
		cell := &cells[i]
		sb.WriteString("<" + tag)
		if cell.Colspan > 1 {
			fmt.Fprintf(sb, ` colspan="%d" `, cell.Colspan)
		}
		if cell.Align != AlignNone {
			fmt.Fprintf(sb, ` align="%s">`, cell.Align)
		} else {
			sb.WriteByte('>')
		}
		r.spans(sb, cell.Content)
		sb.WriteString("</" + tag + ">\n")
	}
	sb.WriteString("</tr>\n")
}

var spanTags = map[SpanType][2]string{
	SpanEmphasis:       {"<em>", "</em>"},
	SpanStrong:         {"<strong>", "</strong>"},
	SpanStrongEmphasis: {"<strong><em>", "</em></strong>"},
	SpanStrikethrough:  {"<del>", "</del>"},
	SpanSuperscript:    {"<sup>", "</sup>"},
	SpanSpoiler:        {`<span class="md-spoiler-text">`, "</span>"},
}

func (r *htmlRenderer) spans(sb *strings.Builder, spans []Span) {
	for i := range spans {
		r.span(sb, &spans[i])
	}
}

func (r *htmlRenderer) span(sb *strings.Builder, s *Span) {
	switch s.Type {
	case SpanText:
		sb.WriteString(escapeHTML(s.Text))
	case SpanEntity:
		sb.WriteString(s.Text)
	case SpanRawHTML:
		sb.WriteString(s.Tag.String())
	case SpanCode:
		sb.WriteString("<code>" + escapeHTML(s.Text) + "</code>")
	case SpanEmphasis, SpanStrong, SpanStrongEmphasis,
		SpanStrikethrough, SpanSuperscript, SpanSpoiler:
		tags := spanTags[s.Type]
		sb.WriteString(tags[0])
		r.spans(sb, s.Children)
		sb.WriteString(tags[1])
	case SpanLink:
		sb.WriteString(`<a href="` + escapeHref(s.Dest) + `"`)
		if s.Title != "" {
			sb.WriteString(` title="` + escapeHTML(s.Title) + `"`)
		}
		r.linkAttrs(sb)
		sb.WriteByte('>')
		r.spans(sb, s.Children)
		sb.WriteString("</a>")
	case SpanAutolink:
		sb.WriteString(`<a href="`)
		if s.Email {
			sb.WriteString("mailto:")
		}
		sb.WriteString(escapeHref(s.Dest) + `"`)
		r.linkAttrs(sb)
		sb.WriteString(">" + escapeHTML(strings.TrimPrefix(s.Dest, "mailto:")) + "</a>")
	case SpanImage:
		sb.WriteString(`<img src="` + escapeHref(s.Dest) + `" alt="` + escapeHTML(s.Text) + `"`)
		if s.Title != "" {
			sb.WriteString(` title="` + escapeHTML(s.Title) + `"`)
		}
		sb.WriteString("/>")
	case SpanLineBreak:
		sb.WriteString("<br/>\n")
	}
}

func (r *htmlRenderer) linkAttrs(sb *strings.Builder) {
	if r.opts.Nofollow {
		sb.WriteString(` rel="nofollow"`)
	}
	if r.opts.Target != "" {
		sb.WriteString(` target="` + escapeHTML(r.opts.Target) + `"`)
	}
}

// Reports whether spans render to nothing, as happens with text made of
// control bytes.
func blank(spans []Span) bool {
	var sb strings.Builder
	r := htmlRenderer{}
	r.spans(&sb, spans)
	return sb.Len() == 0
}

func trimLeftSpace(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return s[i:]
}
