package md

import "strconv"

// Longest numeral accepted in a numeric character reference.
const maxNumeralLen = 7

// Checks the character reference at the start of data, which starts with '&'.
// It returns the length of the reference and its normalized form, or 0 if the
// reference is malformed or not allowed.
func checkEntity(data []byte) (int, string) {
	end := 1
	if end < len(data) && data[end] == '#' {
		end++
	}
	for end < len(data) && isAlnum(data[end]) {
		end++
	}
	if end == 1 || end >= len(data) || data[end] != ';' {
		return 0, ""
	}
	body := data[1:end]
	end++

	if body[0] == '#' {
		numeral, base, prefix := body[1:], 10, "&#"
		if len(numeral) > 0 && (numeral[0] == 'x' || numeral[0] == 'X') {
			numeral, base, prefix = numeral[1:], 16, "&#x"
		}
		if !validCodepoint(numeral, base) {
			return 0, ""
		}
		return end, prefix + string(numeral) + ";"
	}
	if _, ok := entityNames[string(body)]; !ok {
		return 0, ""
	}
	return end, string(data[:end])
}

func validCodepoint(numeral []byte, base int) bool {
	if len(numeral) == 0 || len(numeral) > maxNumeralLen {
		return false
	}
	for _, c := range numeral {
		if (base == 10 && !isDigit(c)) || (base == 16 && !isHexDigit(c)) {
			return false
		}
	}
	cp, err := strconv.ParseUint(string(numeral), base, 32)
	if err != nil {
		return false
	}
	switch {
	case cp <= 8, cp == 11, cp == 12, 14 <= cp && cp <= 31:
		return false
	case 0xD800 <= cp && cp <= 0xDFFF:
		return false
	case cp == 0xFFFE, cp == 0xFFFF:
		return false
	}
	return cp <= 0x10FFFF
}
