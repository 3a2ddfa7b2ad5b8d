package md

import (
	"bytes"
	"strings"
)

// Bytes that may start an inline construct.
var activeChars = func() (t [256]bool) {
	for _, c := range []byte("*_~`\n[<\\&:@w/^>") {
		t[c] = true
	}
	return t
}()

const escapableChars = "\\`*_{}[]()#+-.!:|&<>/^~"

// Accumulates the spans of one inline run. Plain text is kept pending so that
// autolinks can take back the bytes they start with.
type inlineOut struct {
	spans   []Span
	pending []byte
}

func (o *inlineOut) text(b []byte) { o.pending = append(o.pending, b...) }

func (o *inlineOut) textByte(c byte) { o.pending = append(o.pending, c) }

func (o *inlineOut) flush() {
	if len(o.pending) > 0 {
		o.spans = append(o.spans, Span{Type: SpanText, Text: string(o.pending)})
		o.pending = o.pending[:0]
	}
}

func (o *inlineOut) add(s Span) {
	o.flush()
	o.spans = append(o.spans, s)
}

func (o *inlineOut) rewind(n int) {
	if n > len(o.pending) {
		n = len(o.pending)
	}
	o.pending = o.pending[:len(o.pending)-n]
}

func (o *inlineOut) trimTrailingSpaces() {
	o.pending = bytes.TrimRight(o.pending, " ")
}

func (o *inlineOut) dropTrailingBang() {
	if n := len(o.pending); n > 0 && o.pending[n-1] == '!' {
		o.pending = o.pending[:n-1]
	}
}

func (o *inlineOut) finish() []Span {
	o.flush()
	return o.spans
}

func (p *parser) parseInline(data []byte) []Span {
	if p.depth >= maxNesting {
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	var out inlineOut
	i, end, lastSpecial := 0, 0, 0
	for i < len(data) {
		for end < len(data) && !activeChars[data[end]] {
			end++
		}
		out.text(data[i:end])
		if end >= len(data) {
			break
		}
		i = end
		n := p.inlineSpecial(&out, data, i, i-lastSpecial)
		if n == 0 {
			// Not special after all; the byte is copied with the next run.
			end = i + 1
		} else {
			i += n
			end = i
			lastSpecial = i
		}
	}
	return out.finish()
}

// Handles the active byte at data[pos]. maxRewind is the number of plain text
// bytes immediately before pos. It returns the number of bytes consumed, or 0
// if the byte is to be treated as text.
func (p *parser) inlineSpecial(out *inlineOut, data []byte, pos, maxRewind int) int {
	switch data[pos] {
	case '*', '_', '~':
		return p.emphasis(out, data, pos)
	case '`':
		return codeSpan(out, data[pos:])
	case '\n':
		return lineBreak(out, data, pos)
	case '[':
		return p.link(out, data, pos)
	case '<':
		return p.angleTag(out, data[pos:])
	case '\\':
		return escape(out, data[pos:])
	case '&':
		return entity(out, data[pos:])
	case ':':
		return p.urlAutolink(out, data, pos, maxRewind)
	case '@':
		return p.emailAutolink(out, data, pos, maxRewind)
	case 'w':
		return p.wwwAutolink(out, data, pos, maxRewind)
	case '/':
		return p.redditAutolink(out, data, pos, maxRewind)
	case '^':
		return p.superscript(out, data[pos:])
	case '>':
		return p.spoiler(out, data[pos:])
	}
	return 0
}

func (p *parser) emphasis(out *inlineOut, data []byte, pos int) int {
	d := data[pos:]
	c := d[0]
	// No intra-word emphasis with underscores.
	if c == '_' && pos > 0 && !isSpace(data[pos-1]) && data[pos-1] != '>' {
		return 0
	}

	if len(d) > 2 && d[1] != c {
		// Strikethrough needs two tildes.
		if c == '~' || isSpace(d[1]) {
			return 0
		}
		if n := p.emph1(out, d[1:], c); n > 0 {
			return n + 1
		}
		return 0
	}
	if len(d) > 3 && d[1] == c && d[2] != c {
		if isSpace(d[2]) {
			return 0
		}
		if n := p.emph2(out, d[2:], c); n > 0 {
			return n + 2
		}
		return 0
	}
	if len(d) > 4 && d[1] == c && d[2] == c && d[3] != c {
		if c == '~' || isSpace(d[3]) {
			return 0
		}
		if n := p.emph3(out, d, c); n > 0 {
			return n + 3
		}
	}
	return 0
}

// Parses single emphasis in d, which follows the opening delimiter.
func (p *parser) emph1(out *inlineOut, d []byte, c byte) int {
	i := 0
	// Coming from emph3.
	if len(d) > 1 && d[0] == c && d[1] == c {
		i = 1
	}
	for i < len(d) {
		n := findEmphChar(d[i:], c)
		if n == 0 {
			return 0
		}
		i += n
		if i >= len(d) {
			return 0
		}
		if i+1 < len(d) && d[i+1] == c {
			i++
			continue
		}
		if d[i] == c && !isSpace(d[i-1]) {
			if c == '_' && i+1 < len(d) && isAlnum(d[i+1]) {
				continue
			}
			children := p.parseInline(d[:i])
			if blank(children) {
				return 0
			}
			out.add(Span{Type: SpanEmphasis, Children: children})
			return i + 1
		}
	}
	return 0
}

// Parses double emphasis or strikethrough in d, which follows the opening
// delimiter.
func (p *parser) emph2(out *inlineOut, d []byte, c byte) int {
	typ := SpanStrong
	if c == '~' {
		typ = SpanStrikethrough
	}
	i := 0
	for i < len(d) {
		n := findEmphChar(d[i:], c)
		if n == 0 {
			return 0
		}
		i += n
		if i+1 < len(d) && d[i] == c && d[i+1] == c && i > 0 && !isSpace(d[i-1]) {
			children := p.parseInline(d[:i])
			if blank(children) {
				return 0
			}
			out.add(Span{Type: typ, Children: children})
			return i + 2
		}
		i++
	}
	return 0
}

// Parses triple emphasis. Unlike emph1 and emph2, data starts at the opening
// delimiter, so that a shorter closer can hand over to them.
func (p *parser) emph3(out *inlineOut, data []byte, c byte) int {
	d := data[3:]
	i := 0
	for i < len(d) {
		n := findEmphChar(d[i:], c)
		if n == 0 {
			return 0
		}
		i += n
		if d[i] != c || isSpace(d[i-1]) {
			continue
		}
		switch {
		case i+2 < len(d) && d[i+1] == c && d[i+2] == c:
			children := p.parseInline(d[:i])
			if blank(children) {
				return 0
			}
			out.add(Span{Type: SpanStrongEmphasis, Children: children})
			return i + 3
		case i+1 < len(d) && d[i+1] == c:
			// "***a**": single emphasis around double emphasis.
			if n := p.emph1(out, data[1:], c); n > 0 {
				return n - 2
			}
			return 0
		default:
			// "***a*": double emphasis around single emphasis.
			if n := p.emph2(out, data[2:], c); n > 0 {
				return n - 1
			}
			return 0
		}
	}
	return 0
}

// Finds the next delimiter c in data, skipping escaped bytes, code spans and
// links. The search starts at data[1]. It returns 0 if there is none.
func findEmphChar(data []byte, c byte) int {
	i := 1
	for i < len(data) {
		for i < len(data) && data[i] != c && data[i] != '`' && data[i] != '[' {
			i++
		}
		if i == len(data) {
			return 0
		}
		if data[i-1] == '\\' {
			i++
			continue
		}
		if data[i] == c {
			return i
		}

		if data[i] == '`' {
			spanNb := 0
			for i < len(data) && data[i] == '`' {
				i++
				spanNb++
			}
			if i >= len(data) {
				return 0
			}
			// The first delimiter within the code span is only used if the
			// span is not closed.
			tmp, bt := 0, 0
			for i < len(data) && bt < spanNb {
				if tmp == 0 && data[i] == c {
					tmp = i
				}
				if data[i] == '`' {
					bt++
				} else {
					bt = 0
				}
				i++
			}
			if i >= len(data) {
				return tmp
			}
		} else {
			// data[i] == '['
			tmp := 0
			i++
			for i < len(data) && data[i] != ']' {
				if tmp == 0 && data[i] == c {
					tmp = i
				}
				i++
			}
			i++
			for i < len(data) && (data[i] == ' ' || data[i] == '\n') {
				i++
			}
			if i >= len(data) {
				return tmp
			}
			var cc byte
			switch data[i] {
			case '[':
				cc = ']'
			case '(':
				cc = ')'
			default:
				if tmp != 0 {
					return tmp
				}
				continue
			}
			i++
			for i < len(data) && data[i] != cc {
				if tmp == 0 && data[i] == c {
					tmp = i
				}
				i++
			}
			if i >= len(data) {
				return tmp
			}
			i++
		}
	}
	return 0
}

func codeSpan(out *inlineOut, d []byte) int {
	nb := 0
	for nb < len(d) && d[nb] == '`' {
		nb++
	}
	i, end := 0, nb
	for ; end < len(d) && i < nb; end++ {
		if d[end] == '`' {
			i++
		} else {
			i = 0
		}
	}
	if i < nb && end >= len(d) {
		return 0
	}
	begin, stop := nb, end-nb
	for begin < end && d[begin] == ' ' {
		begin++
	}
	for stop > nb && d[stop-1] == ' ' {
		stop--
	}
	var text string
	if begin < stop {
		text = string(d[begin:stop])
	}
	out.add(Span{Type: SpanCode, Text: text})
	return end
}

// A newline after two spaces is a hard line break.
func lineBreak(out *inlineOut, data []byte, pos int) int {
	if pos < 2 || data[pos-1] != ' ' || data[pos-2] != ' ' {
		return 0
	}
	out.trimTrailingSpaces()
	out.add(Span{Type: SpanLineBreak})
	return 1
}

func escape(out *inlineOut, d []byte) int {
	if len(d) == 1 {
		out.textByte('\\')
		return 1
	}
	if strings.IndexByte(escapableChars, d[1]) < 0 {
		return 0
	}
	out.textByte(d[1])
	return 2
}

func entity(out *inlineOut, d []byte) int {
	n, norm := checkEntity(d)
	if n == 0 {
		return 0
	}
	out.add(Span{Type: SpanEntity, Text: norm})
	return n
}

// Parses [text](dest "title"), [text][id], [text] and in the wiki mode, the
// same forms preceded by '!' as images.
func (p *parser) link(out *inlineOut, data []byte, pos int) int {
	isImage := pos > 0 && data[pos-1] == '!'
	if isImage && p.mode != Wiki {
		return 0
	}
	d := data[pos:]

	// The matching closing bracket.
	i, level, hasNewline := 1, 1, false
	for ; i < len(d); i++ {
		if d[i] == '\n' {
			hasNewline = true
		} else if d[i-1] == '\\' {
			continue
		} else if d[i] == '[' {
			level++
		} else if d[i] == ']' {
			level--
			if level <= 0 {
				break
			}
		}
	}
	if i >= len(d) {
		return 0
	}
	textEnd := i
	i++
	for i < len(d) && isSpace(d[i]) {
		i++
	}

	var dest, title []byte
	switch {
	case i < len(d) && d[i] == '(':
		i++
		for i < len(d) && isSpace(d[i]) {
			i++
		}
		destBeg := i
		i = scanLinkDest(d, destBeg, true)
		if i >= len(d) {
			// Nothing unbalanced; the first ')' closes the link.
			i = scanLinkDest(d, destBeg, false)
		}
		if i >= len(d) {
			return 0
		}
		destEnd := i

		titleBeg, titleEnd := 0, 0
		if d[i] == '\'' || d[i] == '"' {
			quote, inTitle := d[i], true
			i++
			titleBeg = i
			for i < len(d) {
				if d[i] == '\\' {
					i += 2
				} else if d[i] == quote {
					inTitle = false
					i++
				} else if d[i] == ')' && !inTitle {
					break
				} else {
					i++
				}
			}
			if i >= len(d) {
				return 0
			}
			titleEnd = i - 1
			for titleEnd > titleBeg && isSpace(d[titleEnd]) {
				titleEnd--
			}
			if d[titleEnd] != '\'' && d[titleEnd] != '"' {
				// No closing quote; everything is part of the destination.
				titleBeg, titleEnd = 0, 0
				destEnd = i
			}
		}

		for destEnd > destBeg && isSpace(d[destEnd-1]) {
			destEnd--
		}
		if d[destBeg] == '<' {
			destBeg++
		}
		if d[destEnd-1] == '>' {
			destEnd--
		}
		if destEnd > destBeg {
			dest = d[destBeg:destEnd]
		}
		if titleEnd > titleBeg {
			title = d[titleBeg:titleEnd]
		}
		i++

	case i < len(d) && d[i] == '[':
		i++
		idBeg := i
		for i < len(d) && d[i] != ']' {
			i++
		}
		if i >= len(d) {
			return 0
		}
		id := d[idBeg:i]
		if len(id) == 0 {
			id = linkID(d, textEnd, hasNewline)
		}
		ref, ok := p.refs[strings.ToLower(string(id))]
		if !ok {
			return 0
		}
		dest, title = ref.link, ref.title
		i++

	default:
		ref, ok := p.refs[strings.ToLower(string(linkID(d, textEnd, hasNewline)))]
		if !ok {
			return 0
		}
		dest, title = ref.link, ref.title
		// Whitespace after the brackets is not part of the link.
		i = textEnd + 1
	}

	var content []Span
	var alt string
	if textEnd > 1 {
		if isImage {
			alt = string(d[1:textEnd])
		} else {
			// No autolinks within links.
			saved := p.inLinkBody
			p.inLinkBody = true
			content = p.parseInline(d[1:textEnd])
			p.inLinkBody = saved
		}
	}

	if len(dest) == 0 {
		return 0
	}
	u := unescapeText(dest)
	if !isSafeLink(u) {
		return 0
	}
	if isImage {
		out.dropTrailingBang()
		out.add(Span{Type: SpanImage, Dest: string(u), Title: string(title), Text: alt})
	} else {
		out.add(Span{Type: SpanLink, Dest: string(u), Title: string(title), Children: content})
	}
	return i
}

// Returns the id of a reference link given by its text; newlines in the text
// are joined with spaces.
func linkID(d []byte, textEnd int, hasNewline bool) []byte {
	if !hasNewline {
		return d[1:textEnd]
	}
	id := make([]byte, 0, textEnd)
	for j := 1; j < textEnd; j++ {
		if d[j] != '\n' {
			id = append(id, d[j])
		} else if d[j-1] != ' ' {
			id = append(id, ' ')
		}
	}
	return id
}

// Removes backslash escapes. A trailing lone backslash is dropped.
func unescapeText(src []byte) []byte {
	var out []byte
	i := 0
	for i < len(src) {
		org := i
		for i < len(src) && src[i] != '\\' {
			i++
		}
		out = append(out, src[org:i]...)
		if i+1 >= len(src) {
			break
		}
		out = append(out, src[i+1])
		i += 2
	}
	return out
}

type autolinkKind uint8

const (
	notAutolink autolinkKind = iota
	normalAutolink
	emailAutolink
)

// Handles '<': an angle-bracket autolink, or a raw tag which survives in the
// wiki mode if it is whitelisted and is escaped otherwise.
func (p *parser) angleTag(out *inlineOut, d []byte) int {
	end, kind := tagLength(d)
	if end <= 2 {
		return 0
	}
	if kind != notAutolink {
		link := unescapeText(d[1 : end-1])
		if len(link) == 0 || (kind == normalAutolink && !isSafeLink(link)) {
			return 0
		}
		out.add(Span{Type: SpanAutolink, Dest: string(link), Email: kind == emailAutolink})
		return end
	}
	if p.mode == Wiki {
		if tag, ok := filterTag(d[:end]); ok {
			out.add(Span{Type: SpanRawHTML, Tag: tag})
			return end
		}
	}
	out.text(d[:end])
	return end
}

// Returns the length of the tag or angle-bracket autolink at the start of
// data, and which kind of autolink it is.
func tagLength(data []byte) (int, autolinkKind) {
	if len(data) < 3 || data[0] != '<' {
		return 0, notAutolink
	}
	i := 1
	if data[1] == '/' {
		i = 2
	}
	if !isAlnum(data[i]) {
		return 0, notAutolink
	}

	// Scheme or local part of an address.
	kind := notAutolink
	for i < len(data) && (isAlnum(data[i]) || data[i] == '.' || data[i] == '+' || data[i] == '-') {
		i++
	}
	if i > 1 && i < len(data) && data[i] == '@' {
		if j := mailAutolinkLength(data[i:]); j != 0 {
			return i + j, emailAutolink
		}
	}
	if i > 2 && i < len(data) && data[i] == ':' {
		kind = normalAutolink
		i++
	}

	if i >= len(data) {
		kind = notAutolink
	} else if kind != notAutolink {
		j := i
		for i < len(data) {
			if data[i] == '\\' {
				i += 2
			} else if c := data[i]; c == '>' || c == '\'' || c == '"' || c == ' ' || c == '\n' {
				break
			} else {
				i++
			}
		}
		if i >= len(data) {
			return 0, notAutolink
		}
		if i > j && data[i] == '>' {
			return i + 1, kind
		}
		kind = notAutolink
	}

	for i < len(data) && data[i] != '>' {
		i++
	}
	if i >= len(data) {
		return 0, notAutolink
	}
	return i + 1, notAutolink
}

// Returns the length of the rest of an address starting at its '@', including
// the closing '>', or 0.
func mailAutolinkLength(data []byte) int {
	ats := 0
	for i, c := range data {
		if isAlnum(c) {
			continue
		}
		switch c {
		case '@':
			ats++
		case '-', '.', '_':
		case '>':
			if ats == 1 {
				return i + 1
			}
			return 0
		default:
			return 0
		}
	}
	return 0
}

func (p *parser) urlAutolink(out *inlineOut, data []byte, pos, maxRewind int) int {
	if p.inLinkBody {
		return 0
	}
	link, rewind, n := autolinkURL(data, pos, maxRewind)
	if n == 0 {
		return 0
	}
	out.rewind(rewind)
	out.add(Span{Type: SpanAutolink, Dest: string(link)})
	return n
}

func (p *parser) emailAutolink(out *inlineOut, data []byte, pos, maxRewind int) int {
	if p.inLinkBody {
		return 0
	}
	link, rewind, n := autolinkEmail(data, pos, maxRewind)
	if n == 0 {
		return 0
	}
	out.rewind(rewind)
	out.add(Span{Type: SpanAutolink, Dest: string(link), Email: true})
	return n
}

func (p *parser) wwwAutolink(out *inlineOut, data []byte, pos, maxRewind int) int {
	if p.inLinkBody {
		return 0
	}
	link, n := autolinkWWW(data, pos, maxRewind)
	if n == 0 {
		return 0
	}
	out.add(Span{
		Type:     SpanLink,
		Dest:     "http://" + string(link),
		Children: []Span{{Type: SpanText, Text: string(link)}},
	})
	return n
}

func (p *parser) redditAutolink(out *inlineOut, data []byte, pos, maxRewind int) int {
	if p.inLinkBody {
		return 0
	}
	link, rewind, n := autolinkSubreddit(data, pos, maxRewind)
	if n == 0 {
		link, rewind, n = autolinkUsername(data, pos, maxRewind)
		if n == 0 {
			return 0
		}
	}
	dest := string(link)
	if rewind == 1 {
		// "r/foo" links to "/r/foo".
		dest = "/" + dest
	}
	out.rewind(rewind)
	out.add(Span{
		Type:     SpanLink,
		Dest:     dest,
		Children: []Span{{Type: SpanText, Text: string(link)}},
	})
	return n
}

// Parses ^word and ^(some words).
func (p *parser) superscript(out *inlineOut, d []byte) int {
	if len(d) < 2 {
		return 0
	}
	start, end := 1, 1
	if d[1] == '(' {
		start, end = 2, 2
		for end < len(d) && d[end] != ')' && d[end-1] != '\\' {
			end++
		}
		if end == len(d) {
			return 0
		}
	} else {
		for end < len(d) && !isSpace(d[end]) {
			end++
		}
	}
	if end == start {
		if start == 2 {
			return 3
		}
		return 0
	}
	if children := p.parseInline(d[start:end]); !blank(children) {
		out.add(Span{Type: SpanSuperscript, Children: children})
	}
	if start == 2 {
		return end + 1
	}
	return end
}

// Parses >!inline spoilers!<.
func (p *parser) spoiler(out *inlineOut, d []byte) int {
	if len(d) < 3 || d[1] != '!' || isSpace(d[2]) {
		return 0
	}
	for j := 3; j+1 < len(d); j++ {
		if d[j] == '\\' {
			j++
			continue
		}
		if d[j] == '!' && d[j+1] == '<' && !isSpace(d[j-1]) {
			out.add(Span{Type: SpanSpoiler, Children: p.parseInline(d[2:j])})
			return j + 2
		}
	}
	return 0
}

// Returns the index of the ')' or the quote ending the link destination that
// starts at d[i], or len(d) if there is none. With balanced, only a ')' that
// does not close an earlier '(' ends the destination.
func scanLinkDest(d []byte, i int, balanced bool) int {
	parens := 0
	for i < len(d) {
		switch {
		case d[i] == '\\':
			i += 2
			continue
		case d[i] == '(' && balanced:
			parens++
		case d[i] == ')':
			if parens == 0 {
				return i
			}
			parens--
		case isSpace(d[i-1]) && (d[i] == '\'' || d[i] == '"'):
			return i
		}
		i++
	}
	return len(d)
}
