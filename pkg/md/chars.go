package md

// Byte classes of the C locale. Bytes >= 0x80 belong to none of them.

func isSpace(c byte) bool {
	return c == ' ' || (c >= '\t' && c <= '\r')
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func isHexDigit(c byte) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isPunct(c byte) bool {
	return c > ' ' && c < 0x7f && !isAlnum(c)
}

// Returns the length of the empty line at the start of data, including the
// newline, or 0 if the line is not empty.
func isEmpty(data []byte) int {
	i := 0
	for ; i < len(data) && data[i] != '\n'; i++ {
		if data[i] != ' ' {
			return 0
		}
	}
	return i + 1
}

// Returns the index just past the end of the line starting at beg.
func nextLine(data []byte, beg int) int {
	end := beg + 1
	for end < len(data) && data[end-1] != '\n' {
		end++
	}
	return end
}

func hasPrefixFold(data []byte, prefix string) bool {
	if len(data) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if lowerASCII(data[i]) != lowerASCII(prefix[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
