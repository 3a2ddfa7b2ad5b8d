// Package md implements a renderer for Reddit-flavored Markdown.
//
// The dialect is the one understood by snudown: sundown's Markdown with
// tables, strikethrough, superscripts, spoilers and autolinking of URLs,
// e-mail addresses, subreddits and usernames. It diverges from
// CommonMark; the output is meant to match existing snudown output byte for
// byte.
//
// Rendering happens in two passes. [Parse] turns the source into a
// [Document], a tree of blocks and inline spans; [RenderDocument] serializes
// that tree as an XHTML fragment. [Render] and [RenderWiki] combine both.
//
// In the default mode, all raw HTML is escaped. In the wiki mode, a small set
// of table-related tags passes through after its attributes have been
// filtered against a whitelist.
//
// All state lives in values owned by a single call, so it is safe to render
// concurrently from multiple goroutines.
package md

import (
	"bytes"
	"strings"
)

// Mode selects how raw HTML in the source is treated.
type Mode uint8

// Possible values for Mode.
const (
	// Default escapes all raw HTML and does not render images.
	Default Mode = iota
	// Wiki passes whitelisted tags through and renders images.
	Wiki
)

var modeNames = []string{Default: "default", Wiki: "wiki"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Options controls per-call aspects of the HTML output. The zero value is the
// default.
type Options struct {
	// Adds rel="nofollow" to all generated links.
	Nofollow bool
	// If non-empty, adds target="..." to all generated links.
	Target string
	// Renders a table of contents before the document and gives headers ids.
	EnableTOC bool
	// Prefixed to all header ids.
	TOCIDPrefix string
}

// OptionsFromMap builds Options from loosely typed values, such as those
// decoded from JSON or YAML. Unknown keys are ignored, and values of the wrong
// type leave the corresponding option at its default.
func OptionsFromMap(m map[string]any) Options {
	var opts Options
	if v, ok := m["nofollow"].(bool); ok {
		opts.Nofollow = v
	}
	if v, ok := m["target"].(string); ok {
		opts.Target = v
	}
	if v, ok := m["enableToc"].(bool); ok {
		opts.EnableTOC = v
	}
	if v, ok := m["tocIdPrefix"].(string); ok {
		opts.TOCIDPrefix = v
	}
	return opts
}

// Render renders text in the default mode.
func Render(text string, opts Options) string {
	return RenderMode(text, Default, opts)
}

// RenderWiki renders text in the wiki mode.
func RenderWiki(text string, opts Options) string {
	return RenderMode(text, Wiki, opts)
}

// RenderMode renders text in the given mode. An empty text renders to an
// empty string.
func RenderMode(text string, mode Mode, opts Options) string {
	if text == "" {
		return ""
	}
	return RenderDocument(Parse(text, mode), opts)
}

// Parse parses text into a Document. The mode affects parsing because it
// decides which raw tags survive and whether images are recognized.
func Parse(text string, mode Mode) Document {
	p := &parser{mode: mode, refs: make(map[string]linkRef)}
	data := p.preprocess([]byte(text))
	if len(data) == 0 {
		return nil
	}
	return p.parseBlocks(data)
}

const (
	// Combined limit of nested block and inline constructs.
	maxNesting = 16
	// Tables declaring more columns are not tables.
	maxTableCols = 64
)

type parser struct {
	mode Mode
	// Keyed by the lowercase id.
	refs       map[string]linkRef
	depth      int
	inLinkBody bool
}

type linkRef struct {
	link, title []byte
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Collects reference definitions, expands tabs and normalizes newlines. The
// result always ends in '\n' unless it is empty.
func (p *parser) preprocess(doc []byte) []byte {
	text := make([]byte, 0, len(doc)+len(doc)/8)
	beg := 0
	if bytes.HasPrefix(doc, utf8BOM) {
		beg = len(utf8BOM)
	}
	for beg < len(doc) {
		if end, ok := p.isRef(doc, beg); ok {
			beg = end
			continue
		}
		end := beg
		for end < len(doc) && doc[end] != '\n' && doc[end] != '\r' {
			end++
		}
		if end > beg {
			text = expandTabs(text, doc[beg:end])
		}
		for end < len(doc) && (doc[end] == '\n' || doc[end] == '\r') {
			// One '\n' for each of "\n", "\r" and "\r\n".
			if doc[end] == '\n' || (end+1 < len(doc) && doc[end+1] != '\n') {
				text = append(text, '\n')
			}
			end++
		}
		beg = end
	}
	if len(text) > 0 && text[len(text)-1] != '\n' {
		text = append(text, '\n')
	}
	return text
}

// Expands tabs to 4-column stops. UTF-8 continuation bytes do not advance the
// column.
func expandTabs(out, line []byte) []byte {
	col := 0
	for i := 0; i < len(line); i++ {
		if line[i] != '\t' {
			if line[i]&0xc0 != 0x80 {
				col++
			}
			out = append(out, line[i])
			continue
		}
		for {
			out = append(out, ' ')
			col++
			if col%4 == 0 {
				break
			}
		}
	}
	return out
}

// Recognizes a reference definition starting at data[beg:], such as
//
//	[id]: http://example.com "title"
//
// and records it. It returns the index of the end of the definition's last
// line, which leaves the newline in place.
func (p *parser) isRef(data []byte, beg int) (int, bool) {
	end := len(data)
	if beg+3 >= end {
		return 0, false
	}
	i := 0
	for i < 3 && data[beg+i] == ' ' {
		i++
	}
	if i == 3 && data[beg+3] == ' ' {
		return 0, false
	}
	i += beg

	if data[i] != '[' {
		return 0, false
	}
	i++
	idOffset := i
	for i < end && data[i] != '\n' && data[i] != '\r' && data[i] != ']' {
		i++
	}
	if i >= end || data[i] != ']' {
		return 0, false
	}
	idEnd := i

	// Colon, spaces, an optional newline and more spaces.
	i++
	if i >= end || data[i] != ':' {
		return 0, false
	}
	i++
	for i < end && data[i] == ' ' {
		i++
	}
	if i < end && (data[i] == '\n' || data[i] == '\r') {
		i++
		if i < end && data[i] == '\r' && data[i-1] == '\n' {
			i++
		}
	}
	for i < end && data[i] == ' ' {
		i++
	}
	if i >= end {
		return 0, false
	}

	// The link, optionally within angle brackets.
	if data[i] == '<' {
		i++
	}
	linkOffset := i
	for i < end && data[i] != ' ' && data[i] != '\n' && data[i] != '\r' {
		i++
	}
	linkEnd := i
	if data[i-1] == '>' {
		linkEnd = i - 1
	}

	for i < end && data[i] == ' ' {
		i++
	}
	if i < end && data[i] != '\n' && data[i] != '\r' &&
		data[i] != '\'' && data[i] != '"' && data[i] != '(' {
		return 0, false
	}
	lineEnd := 0
	if i >= end || data[i] == '\r' || data[i] == '\n' {
		lineEnd = i
	}
	if i+1 < end && data[i] == '\n' && data[i+1] == '\r' {
		lineEnd = i + 1
	}
	if lineEnd != 0 {
		i = lineEnd + 1
		for i < end && data[i] == ' ' {
			i++
		}
	}

	// An optional title, alone on its line or after the link.
	titleOffset, titleEnd := 0, 0
	if i+1 < end && (data[i] == '\'' || data[i] == '"' || data[i] == '(') {
		i++
		titleOffset = i
		for i < end && data[i] != '\n' && data[i] != '\r' {
			i++
		}
		if i+1 < end && data[i] == '\n' && data[i+1] == '\r' {
			titleEnd = i + 1
		} else {
			titleEnd = i
		}
		i--
		for i > titleOffset && data[i] == ' ' {
			i--
		}
		if i > titleOffset && (data[i] == '\'' || data[i] == '"' || data[i] == ')') {
			lineEnd = titleEnd
			titleEnd = i
		}
	}

	if lineEnd == 0 || linkEnd == linkOffset {
		return 0, false
	}

	ref := linkRef{link: data[linkOffset:linkEnd]}
	if titleEnd > titleOffset {
		ref.title = data[titleOffset:titleEnd]
	}
	p.refs[strings.ToLower(string(data[idOffset:idEnd]))] = ref
	return lineEnd, true
}
