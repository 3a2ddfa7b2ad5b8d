package md

import (
	"slices"
	"strings"

	"golang.org/x/net/html/atom"
)

var tableAttrs = []string{"colspan", "rowspan", "cellspacing", "cellpadding", "scope"}

// Tags allowed in the wiki mode, and the attributes each of them may carry.
var tagWhitelist = map[atom.Atom][]string{
	atom.Table:   tableAttrs,
	atom.Tr:      tableAttrs,
	atom.Th:      tableAttrs,
	atom.Td:      tableAttrs,
	atom.Thead:   tableAttrs,
	atom.Tbody:   tableAttrs,
	atom.Tfoot:   tableAttrs,
	atom.Caption: tableAttrs,
}

// Parses a raw tag, including the angle brackets, and keeps only whitelisted
// attributes. It returns false if the tag itself is not whitelisted.
//
// Attribute values must be quoted; single-quoted values are re-emitted with
// double quotes. Attributes without a usable value are dropped, and an
// unterminated quote drops the rest of the tag. Duplicate attributes are all
// kept.
func filterTag(raw []byte) (*Tag, bool) {
	if len(raw) < 3 || raw[0] != '<' || raw[len(raw)-1] != '>' {
		return nil, false
	}
	inner := raw[1 : len(raw)-1]
	i := 0
	closing := false
	if i < len(inner) && inner[i] == '/' {
		closing = true
		i++
	}
	nameStart := i
	for i < len(inner) && isAlnum(inner[i]) {
		i++
	}
	if i == nameStart || (i < len(inner) && !isSpace(inner[i]) && inner[i] != '/') {
		return nil, false
	}
	name := strings.ToLower(string(inner[nameStart:i]))
	allowed, ok := tagWhitelist[atom.Lookup([]byte(name))]
	if !ok {
		return nil, false
	}
	tag := &Tag{Name: name, Closing: closing}
	if closing {
		return tag, true
	}

	n := len(inner)
	for i < n {
		for i < n && isSpace(inner[i]) {
			i++
		}
		attrStart := i
		for i < n && !isSpace(inner[i]) && inner[i] != '=' {
			i++
		}
		attrName := strings.ToLower(string(inner[attrStart:i]))
		if i >= n || inner[i] != '=' {
			continue
		}
		i++
		// Skip anything up to the opening quote, unless it is whitespace.
		for i < n && inner[i] != '"' && inner[i] != '\'' && !isSpace(inner[i]) {
			i++
		}
		if i >= n || isSpace(inner[i]) {
			continue
		}
		quote := inner[i]
		i++
		valueStart := i
		for i < n && inner[i] != quote {
			i++
		}
		if i >= n {
			break
		}
		value := string(inner[valueStart:i])
		// Skip garbage after the closing quote.
		for i < n && !isSpace(inner[i]) {
			i++
		}
		if value != "" && slices.Contains(allowed, attrName) {
			tag.Attrs = append(tag.Attrs, Attr{attrName, value})
		}
	}
	return tag, true
}
