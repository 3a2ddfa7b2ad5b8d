package md

import "strings"

// Document is the result of parsing, a sequence of blocks.
type Document []Block

// Block is a block-level node. Which fields are meaningful depends on Type.
type Block struct {
	Type BlockType
	// Header level, from 1 to 6.
	Level int
	// Inline content of paragraphs and headers.
	Content []Span
	// Body of blockquotes and spoiler blocks.
	Children Document
	// Whether a list is ordered.
	Ordered bool
	Items   []ListItem
	Table   *Table
	// Verbatim text of a code block.
	Text string
}

// BlockType is the type of a Block.
type BlockType uint8

// Possible values of BlockType.
const (
	BlockParagraph BlockType = iota
	BlockHeader
	BlockQuote
	BlockSpoiler
	BlockTable
	BlockList
	BlockCode
	BlockHRule
)

var blockTypeNames = []string{
	BlockParagraph: "Paragraph",
	BlockHeader:    "Header",
	BlockQuote:     "Quote",
	BlockSpoiler:   "Spoiler",
	BlockTable:     "Table",
	BlockList:      "List",
	BlockCode:      "Code",
	BlockHRule:     "HRule",
}

func (t BlockType) String() string {
	if int(t) < len(blockTypeNames) {
		return blockTypeNames[t]
	}
	return "BlockType(?)"
}

// ListItem is an item of a list. Items of a tight list only have Content,
// possibly followed by a nested list in Children. Items of a loose list have
// all their content in Children.
type ListItem struct {
	Content  []Span
	Children Document
}

// Table is the content of a table block.
type Table struct {
	Header []Cell
	Rows   [][]Cell
}

// Cell is a table cell.
type Cell struct {
	Content []Span
	// Number of columns the cell covers; 0 and 1 both mean one column.
	Colspan int
	Align   Align
}

// Align is the alignment of a table column.
type Align uint8

// Possible values of Align.
const (
	AlignNone Align = iota
	AlignLeft
	AlignRight
	AlignCenter
)

var alignNames = []string{
	AlignNone: "", AlignLeft: "left", AlignRight: "right", AlignCenter: "center"}

func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return "?"
}

// Span is an inline node.
type Span struct {
	Type SpanType
	// Literal text of text, entity and code spans, and the alt text of
	// images.
	Text string
	// Destination of links, autolinks and images.
	Dest  string
	Title string
	// Whether an autolink is an e-mail address.
	Email bool
	// The sanitized tag of a raw HTML span.
	Tag      *Tag
	Children []Span
}

// SpanType is the type of a Span.
type SpanType uint8

// Possible values of SpanType.
const (
	SpanText SpanType = iota
	SpanEntity
	SpanRawHTML
	SpanCode
	SpanEmphasis
	SpanStrong
	SpanStrongEmphasis
	SpanStrikethrough
	SpanSuperscript
	SpanSpoiler
	SpanLink
	SpanAutolink
	SpanImage
	SpanLineBreak
)

var spanTypeNames = []string{
	SpanText:           "Text",
	SpanEntity:         "Entity",
	SpanRawHTML:        "RawHTML",
	SpanCode:           "Code",
	SpanEmphasis:       "Emphasis",
	SpanStrong:         "Strong",
	SpanStrongEmphasis: "StrongEmphasis",
	SpanStrikethrough:  "Strikethrough",
	SpanSuperscript:    "Superscript",
	SpanSpoiler:        "Spoiler",
	SpanLink:           "Link",
	SpanAutolink:       "Autolink",
	SpanImage:          "Image",
	SpanLineBreak:      "LineBreak",
}

func (t SpanType) String() string {
	if int(t) < len(spanTypeNames) {
		return spanTypeNames[t]
	}
	return "SpanType(?)"
}

// Tag is a raw HTML tag that survived filtering.
type Tag struct {
	Name    string
	Closing bool
	Attrs   []Attr
}

// Attr is an attribute of a Tag. Values are unescaped.
type Attr struct {
	Name, Value string
}

// String returns the HTML form of the tag.
func (t *Tag) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	if t.Closing {
		sb.WriteByte('/')
	}
	sb.WriteString(t.Name)
	for _, attr := range t.Attrs {
		sb.WriteString(" " + attr.Name + `="` + escapeHTML(attr.Value) + `"`)
	}
	sb.WriteByte('>')
	return sb.String()
}
