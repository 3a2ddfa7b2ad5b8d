package md

func (p *parser) parseBlocks(data []byte) Document {
	if p.depth >= maxNesting {
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()

	var doc Document
	beg := 0
	for beg < len(data) {
		d := data[beg:]
		if d[0] == '#' {
			beg += p.parseATXHeader(&doc, d)
		} else if n := isEmpty(d); n > 0 {
			beg += n
		} else if isHRule(d) {
			doc = append(doc, Block{Type: BlockHRule})
			beg += nextLine(d, 0)
		} else if n := p.parseTable(&doc, d); n > 0 {
			beg += n
		} else if prefixBlockSpoiler(d) > 0 {
			beg += p.parseQuote(&doc, d, BlockSpoiler, prefixBlockSpoiler)
		} else if prefixQuote(d) > 0 {
			beg += p.parseQuote(&doc, d, BlockQuote, prefixQuote)
		} else if prefixCode(d) > 0 {
			beg += p.parseCode(&doc, d)
		} else if prefixUnorderedItem(d) > 0 {
			beg += p.parseList(&doc, d, false)
		} else if prefixOrderedItem(d) > 0 {
			beg += p.parseList(&doc, d, true)
		} else {
			beg += p.parseParagraph(&doc, d)
		}
	}
	return doc
}

// Up to 3 spaces, then a line of at least three '*', '-' or '_' and
// optionally spaces.
func isHRule(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	i := 0
	for i < 3 && data[i] == ' ' {
		i++
	}
	if i+2 >= len(data) || (data[i] != '*' && data[i] != '-' && data[i] != '_') {
		return false
	}
	c, n := data[i], 0
	for ; i < len(data) && data[i] != '\n'; i++ {
		if data[i] == c {
			n++
		} else if data[i] != ' ' {
			return false
		}
	}
	return n >= 3
}

// Returns the level of the setext underline at the start of data, or 0.
func isHeaderLine(data []byte) int {
	if len(data) == 0 || (data[0] != '=' && data[0] != '-') {
		return 0
	}
	c := data[0]
	i := 1
	for i < len(data) && data[i] == c {
		i++
	}
	for i < len(data) && data[i] == ' ' {
		i++
	}
	if i < len(data) && data[i] != '\n' {
		return 0
	}
	if c == '=' {
		return 1
	}
	return 2
}

// Reports whether the line after the current one is a setext underline.
func isNextHeaderLine(data []byte) bool {
	i := 0
	for i < len(data) && data[i] != '\n' {
		i++
	}
	i++
	if i >= len(data) {
		return false
	}
	return isHeaderLine(data[i:]) != 0
}

func skipIndent(data []byte) int {
	i := 0
	for i < 3 && i < len(data) && data[i] == ' ' {
		i++
	}
	return i
}

// Returns the length of a quote prefix: up to 3 spaces, '>' and an optional
// space. A '>' followed by '!' starts a spoiler instead.
func prefixQuote(data []byte) int {
	i := skipIndent(data)
	if i < len(data) && data[i] == '>' {
		if i+1 < len(data) && data[i+1] == '!' {
			return 0
		}
		if i+1 < len(data) && data[i+1] == ' ' {
			return i + 2
		}
		return i + 1
	}
	return 0
}

// Returns the length of a spoiler block prefix: up to 3 spaces, ">!" and an
// optional space. A line that also closes an inline spoiler is not a spoiler
// block.
func prefixBlockSpoiler(data []byte) int {
	i := skipIndent(data)
	if i+1 >= len(data) || data[i] != '>' || data[i+1] != '!' {
		return 0
	}
	for j := i + 2; j+1 < len(data) && data[j] != '\n'; j++ {
		if data[j] == '!' && data[j+1] == '<' {
			return 0
		}
	}
	if i+2 < len(data) && data[i+2] == ' ' {
		return i + 3
	}
	return i + 2
}

func prefixCode(data []byte) int {
	if len(data) > 3 && data[0] == ' ' && data[1] == ' ' && data[2] == ' ' && data[3] == ' ' {
		return 4
	}
	return 0
}

func prefixUnorderedItem(data []byte) int {
	i := skipIndent(data)
	if i+1 >= len(data) || (data[i] != '*' && data[i] != '+' && data[i] != '-') || data[i+1] != ' ' {
		return 0
	}
	if isNextHeaderLine(data[i:]) {
		return 0
	}
	return i + 2
}

func prefixOrderedItem(data []byte) int {
	i := skipIndent(data)
	if i >= len(data) || !isDigit(data[i]) {
		return 0
	}
	for i < len(data) && isDigit(data[i]) {
		i++
	}
	if i+1 >= len(data) || data[i] != '.' || data[i+1] != ' ' {
		return 0
	}
	if isNextHeaderLine(data[i:]) {
		return 0
	}
	return i + 2
}

// Parses "# header". It returns the length of the line without its newline,
// which is then consumed as an empty line.
func (p *parser) parseATXHeader(doc *Document, data []byte) int {
	level := 0
	for level < len(data) && level < 6 && data[level] == '#' {
		level++
	}
	i := level
	for i < len(data) && data[i] == ' ' {
		i++
	}
	end := i
	for end < len(data) && data[end] != '\n' {
		end++
	}
	skip := end
	for end > 0 && data[end-1] == '#' {
		end--
	}
	for end > 0 && data[end-1] == ' ' {
		end--
	}
	if end > i {
		*doc = append(*doc, Block{Type: BlockHeader, Level: level, Content: p.parseInline(data[i:end])})
	}
	return skip
}

// Parses a blockquote or a spoiler block; the two only differ in their line
// prefix. Prefixed lines are stripped of the prefix; other lines continue the
// block lazily until an empty line that is not followed by a prefixed or
// empty line.
func (p *parser) parseQuote(doc *Document, data []byte, typ BlockType, prefix func([]byte) int) int {
	var work []byte
	beg, end := 0, 0
	for beg < len(data) {
		end = nextLine(data, beg)
		if pre := prefix(data[beg:end]); pre > 0 {
			beg += pre
		} else if isEmpty(data[beg:end]) > 0 &&
			(end >= len(data) || (prefix(data[end:]) == 0 && isEmpty(data[end:]) == 0)) {
			break
		}
		if beg < end {
			work = append(work, data[beg:end]...)
		}
		beg = end
	}
	*doc = append(*doc, Block{Type: typ, Children: p.parseBlocks(work)})
	return end
}

// Parses an indented code block.
func (p *parser) parseCode(doc *Document, data []byte) int {
	var work []byte
	beg := 0
	for beg < len(data) {
		end := nextLine(data, beg)
		if pre := prefixCode(data[beg:end]); pre > 0 {
			beg += pre
		} else if isEmpty(data[beg:end]) == 0 {
			// A non-empty line without indentation ends the block.
			break
		}
		if beg < end {
			if isEmpty(data[beg:end]) > 0 {
				work = append(work, '\n')
			} else {
				work = append(work, data[beg:end]...)
			}
		}
		beg = end
	}
	for len(work) > 0 && work[len(work)-1] == '\n' {
		work = work[:len(work)-1]
	}
	work = append(work, '\n')
	*doc = append(*doc, Block{Type: BlockCode, Text: string(work)})
	return beg
}

// Parses consecutive list items of the same type.
func (p *parser) parseList(doc *Document, data []byte, ordered bool) int {
	list := Block{Type: BlockList, Ordered: ordered}
	var state listState
	i := 0
	for i < len(data) {
		n := p.parseListItem(&list, data[i:], ordered, &state)
		i += n
		if n == 0 || state.end {
			break
		}
	}
	*doc = append(*doc, list)
	return i
}

type listState struct {
	// Once an item has blocks, so do all following items.
	block bool
	// The list has ended.
	end bool
}

func (p *parser) parseListItem(list *Block, data []byte, ordered bool, state *listState) int {
	orgpre := skipIndent(data)
	beg := prefixUnorderedItem(data)
	if beg == 0 {
		beg = prefixOrderedItem(data)
	}
	if beg == 0 {
		return 0
	}

	end := beg
	for end < len(data) && data[end-1] != '\n' {
		end++
	}
	work := append([]byte(nil), data[beg:end]...)
	beg = end

	sublist := 0
	inEmpty, hasInsideEmpty := false, false
	for beg < len(data) {
		end++
		for end < len(data) && data[end-1] != '\n' {
			end++
		}
		line := data[beg:end]

		if isEmpty(line) > 0 {
			inEmpty = true
			beg = end
			continue
		}

		i := 0
		for i < 4 && i < len(line) && line[i] == ' ' {
			i++
		}
		pre := i
		nextUnordered := prefixUnorderedItem(line[i:]) > 0
		nextOrdered := prefixOrderedItem(line[i:]) > 0

		// The following item must have the same list type.
		if inEmpty && ((ordered && nextUnordered) || (!ordered && nextOrdered)) {
			state.end = true
			break
		}

		if (nextUnordered && !isHRule(line[i:])) || nextOrdered {
			if inEmpty {
				hasInsideEmpty = true
			}
			// A sibling item.
			if pre == orgpre {
				break
			}
			if sublist == 0 {
				sublist = len(work)
			}
		} else if inEmpty && pre < 4 {
			// Only lines indented by four spaces continue an item after an
			// empty line.
			state.end = true
			break
		} else if inEmpty {
			work = append(work, '\n')
			hasInsideEmpty = true
		}

		inEmpty = false
		work = append(work, line[i:]...)
		beg = end
	}

	if hasInsideEmpty {
		state.block = true
	}
	var item ListItem
	hasSublist := sublist > 0 && sublist < len(work)
	switch {
	case state.block && hasSublist:
		item.Children = append(p.parseBlocks(work[:sublist]), p.parseBlocks(work[sublist:])...)
	case state.block:
		item.Children = p.parseBlocks(work)
	case hasSublist:
		item.Content = p.parseInline(work[:sublist])
		item.Children = p.parseBlocks(work[sublist:])
	default:
		item.Content = p.parseInline(work)
	}
	list.Items = append(list.Items, item)
	return beg
}

// Parses a paragraph, or a setext header if the paragraph ends with an
// underline.
func (p *parser) parseParagraph(doc *Document, data []byte) int {
	i, end, level := 0, 0, 0
	for i < len(data) {
		end = nextLine(data, i)
		rest := data[i:]
		if isEmpty(rest) > 0 {
			break
		}
		if level = isHeaderLine(rest); level != 0 {
			break
		}
		if rest[0] == '#' || isHRule(rest) || prefixQuote(rest) > 0 || prefixBlockSpoiler(rest) > 0 {
			end = i
			break
		}
		i = end
	}

	size := i
	for size > 0 && data[size-1] == '\n' {
		size--
	}

	if level == 0 {
		*doc = append(*doc, Block{Type: BlockParagraph, Content: p.parseInline(data[:size])})
		return end
	}

	header := data[:size]
	if size > 0 {
		// Only the last line before the underline is the header.
		last := size - 1
		for last > 0 && data[last] != '\n' {
			last--
		}
		beg := last + 1
		for last > 0 && data[last-1] == '\n' {
			last--
		}
		if last > 0 {
			*doc = append(*doc, Block{Type: BlockParagraph, Content: p.parseInline(data[:last])})
			header = data[beg:size]
		}
	}
	*doc = append(*doc, Block{Type: BlockHeader, Level: level, Content: p.parseInline(header)})
	return end
}

// Parses a table: a header row, a separator row that gives the number of
// columns and their alignment, and body rows. Each row needs at least one
// pipe.
func (p *parser) parseTable(doc *Document, data []byte) int {
	i, columns, aligns := parseTableHeader(data)
	if i == 0 {
		return 0
	}
	table := &Table{Header: p.parseTableRow(data[:headerEnd(data)], columns, aligns)}
	for i < len(data) {
		pipes, rowStart := 0, i
		for i < len(data) && data[i] != '\n' {
			if data[i] == '|' {
				pipes++
			}
			i++
		}
		if pipes == 0 || i == len(data) {
			i = rowStart
			break
		}
		table.Rows = append(table.Rows, p.parseTableRow(data[rowStart:i], columns, aligns))
		i++
	}
	*doc = append(*doc, Block{Type: BlockTable, Table: table})
	return i
}

// Returns the end of the first line with trailing whitespace removed.
func headerEnd(data []byte) int {
	i := 0
	for i < len(data) && data[i] != '\n' {
		i++
	}
	for i > 0 && isSpace(data[i-1]) {
		i--
	}
	return i
}

// Parses the header and separator lines of a table. It returns the length of
// both lines, or 0 if they do not form a table.
func parseTableHeader(data []byte) (int, int, []Align) {
	i, pipes := 0, 0
	for i < len(data) && data[i] != '\n' {
		if data[i] == '|' {
			pipes++
		}
		i++
	}
	if i == len(data) || pipes == 0 {
		return 0, 0, nil
	}
	end := headerEnd(data)
	if data[0] == '|' {
		pipes--
	}
	if end > 0 && data[end-1] == '|' {
		pipes--
	}
	columns := pipes + 1
	if columns < 1 || columns > maxTableCols {
		return 0, 0, nil
	}
	aligns := make([]Align, columns)

	i++
	if i < len(data) && data[i] == '|' {
		i++
	}
	underEnd := i
	for underEnd < len(data) && data[underEnd] != '\n' {
		underEnd++
	}
	col := 0
	for ; col < columns && i < underEnd; col++ {
		dashes := 0
		for i < underEnd && data[i] == ' ' {
			i++
		}
		if i < underEnd && data[i] == ':' {
			i++
			aligns[col] = AlignLeft
			dashes++
		}
		for i < underEnd && data[i] == '-' {
			i++
			dashes++
		}
		if i < underEnd && data[i] == ':' {
			i++
			if aligns[col] == AlignLeft {
				aligns[col] = AlignCenter
			} else {
				aligns[col] = AlignRight
			}
			dashes++
		}
		for i < underEnd && data[i] == ' ' {
			i++
		}
		if i < underEnd && data[i] != '|' {
			break
		}
		if dashes < 1 {
			break
		}
		i++
	}
	if col < columns {
		return 0, 0, nil
	}
	return underEnd + 1, columns, aligns
}

// Parses one table row without its newline. Missing cells at the end are
// replaced by one empty cell spanning them.
func (p *parser) parseTableRow(data []byte, columns int, aligns []Align) []Cell {
	cells := make([]Cell, 0, columns)
	i := 0
	if i < len(data) && data[i] == '|' {
		i++
	}
	col := 0
	for ; col < columns && i < len(data); col++ {
		for i < len(data) && isSpace(data[i]) {
			i++
		}
		start := i
		for i < len(data) && data[i] != '|' {
			i++
		}
		end := i
		for end > start && isSpace(data[end-1]) {
			end--
		}
		cells = append(cells, Cell{Content: p.parseInline(data[start:end]), Align: aligns[col]})
		i++
	}
	if col < columns {
		cells = append(cells, Cell{Colspan: columns - col, Align: aligns[col]})
	}
	return cells
}
