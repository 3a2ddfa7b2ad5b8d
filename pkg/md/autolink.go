package md

// Autolink detectors. Each of them is called with the inline data, the
// position of its trigger byte and maxRewind, the number of bytes before the
// trigger that are plain text and may be taken back into the link. They
// return the link text, how many bytes before pos it starts and how many bytes
// from pos it consumes, or a zero length if there is no link.

var safeLinkPrefixes = []string{
	"/", "http://", "https://", "ftp://", "mailto:", "git://", "steam://",
	"irc://", "news://", "mumble://", "ssh://", "ircs://", "ts3server://", "#",
}

// Reports whether a link destination uses an allowed scheme or is relative.
func isSafeLink(link []byte) bool {
	for _, prefix := range safeLinkPrefixes {
		n := len(prefix)
		if len(link) > n && hasPrefixFold(link, prefix) {
			c := link[n]
			if isAlnum(c) || c == '#' || c == '/' || c == '?' {
				return true
			}
		}
	}
	return false
}

// Returns the length of the domain at the start of data. Without allowShort,
// the domain needs at least one dot.
func checkDomain(data []byte, allowShort bool) int {
	if len(data) == 0 || !isAlnum(data[0]) {
		return 0
	}
	i, dots := 1, 0
	for ; i < len(data)-1; i++ {
		if data[i] == '.' {
			dots++
		} else if !isAlnum(data[i]) && data[i] != '-' {
			break
		}
	}
	if !allowShort && dots == 0 {
		return 0
	}
	return i
}

// Trims trailing bytes that are unlikely to belong to a link from
// data[:end]: anything from the first '<', trailing sentence punctuation, a
// trailing entity and an unbalanced closing quote or bracket.
func autolinkDelim(data []byte, end int) int {
	for i := 0; i < end; i++ {
		if data[i] == '<' {
			end = i
			break
		}
	}

	for end > 0 {
		c := data[end-1]
		if c == 0 {
			break
		}
		if c == '?' || c == '!' || c == '.' || c == ',' {
			end--
		} else if c == ';' {
			newEnd := end - 2
			for newEnd > 0 && isAlpha(data[newEnd]) {
				newEnd--
			}
			if newEnd >= 0 && newEnd < end-2 && data[newEnd] == '&' {
				end = newEnd
			} else {
				end--
			}
		} else {
			break
		}
	}
	if end == 0 {
		return 0
	}

	closer := data[end-1]
	var opener byte
	switch closer {
	case '"':
		opener = '"'
	case '\'':
		opener = '\''
	case ')':
		opener = '('
	case ']':
		opener = '['
	case '}':
		opener = '{'
	}
	if opener != 0 {
		opening, closing := 0, 0
		for i := 0; i < end; i++ {
			if data[i] == opener {
				opening++
			} else if data[i] == closer {
				closing++
			}
		}
		if opening != closing {
			end--
		}
	}
	return end
}

// Detects scheme://... around the ':' at pos.
func autolinkURL(data []byte, pos, maxRewind int) (link []byte, rewind, n int) {
	d := data[pos:]
	if len(d) < 4 || d[1] != '/' || d[2] != '/' {
		return nil, 0, 0
	}
	for rewind < maxRewind && isAlpha(data[pos-rewind-1]) {
		rewind++
	}
	if !isSafeLink(data[pos-rewind:]) {
		return nil, 0, 0
	}
	end := len("://")
	domainLen := checkDomain(d[end:], true)
	if domainLen == 0 {
		return nil, 0, 0
	}
	end += domainLen
	for end < len(d) && !isSpace(d[end]) {
		end++
	}
	end = autolinkDelim(d, end)
	if end == 0 {
		return nil, 0, 0
	}
	return data[pos-rewind : pos+end], rewind, end
}

// Detects www.example.com at pos.
func autolinkWWW(data []byte, pos, maxRewind int) (link []byte, n int) {
	if maxRewind > 0 && !isPunct(data[pos-1]) && !isSpace(data[pos-1]) {
		return nil, 0
	}
	d := data[pos:]
	if len(d) < 4 || string(d[:4]) != "www." {
		return nil, 0
	}
	end := checkDomain(d, false)
	if end == 0 {
		return nil, 0
	}
	for end < len(d) && !isSpace(d[end]) {
		end++
	}
	end = autolinkDelim(d, end)
	if end == 0 {
		return nil, 0
	}
	return d[:end], end
}

// Detects an e-mail address around the '@' at pos.
func autolinkEmail(data []byte, pos, maxRewind int) (link []byte, rewind, n int) {
	for ; rewind < maxRewind; rewind++ {
		c := data[pos-rewind-1]
		if !isAlnum(c) && c != '.' && c != '+' && c != '-' && c != '_' {
			break
		}
	}
	if rewind == 0 {
		return nil, 0, 0
	}
	d := data[pos:]
	end, ats, dots := 0, 0, 0
loop:
	for ; end < len(d); end++ {
		c := d[end]
		switch {
		case isAlnum(c):
		case c == '@':
			ats++
		case c == '.' && end < len(d)-1:
			dots++
		case c == '-', c == '_':
		default:
			break loop
		}
	}
	if end < 2 || ats != 1 || dots == 0 || !isAlpha(d[end-1]) {
		return nil, 0, 0
	}
	end = autolinkDelim(d, end)
	if end == 0 {
		return nil, 0, 0
	}
	return data[pos-rewind : pos+end], rewind, end
}

// Checks what precedes the '/' at pos for a subreddit (c == 'r') or user
// (c == 'u') link. It returns 2 for "/r/", 1 for a bare "r/" at a word
// boundary and 0 if there is no link.
func redditPrefix(data []byte, pos, maxRewind int, c byte) int {
	if len(data)-pos < 2 || maxRewind < 1 || data[pos-1] != c {
		return 0
	}
	if maxRewind > 1 {
		switch boundary := data[pos-2]; {
		case boundary == '/':
			// "x/r/" is a path, not a subreddit.
			if maxRewind > 2 && !isPunct(data[pos-3]) && !isSpace(data[pos-3]) {
				return 0
			}
			return 2
		case isPunct(boundary) || isSpace(boundary):
			return 1
		default:
			return 0
		}
	}
	if pos > 1 {
		// An inline element ends right before c.
		if data[pos-2] == '/' {
			return 0
		}
		return 1
	}
	return 1
}

const (
	maxSubredditLen = 24
	// The only subreddit with a dot in its name.
	redditDotCom = "reddit.com"
)

// Detects /r/name, r/name, multireddits joined with '+' and an optional path
// around the '/' at pos.
func autolinkSubreddit(data []byte, pos, maxRewind int) (link []byte, rewind, n int) {
	rewind = redditPrefix(data, pos, maxRewind, 'r')
	if rewind == 0 {
		return nil, 0, 0
	}
	d := data[pos:]
	end := len("/")
	allMinus := hasPrefixFold(d[end:], "all-")
	for {
		start := end
		maxLen := maxSubredditLen
		if hasPrefixFold(d[end:], redditDotCom) {
			end += len(redditDotCom)
			maxLen = len(redditDotCom)
		} else {
			if len(d) > end+2 && hasPrefixFold(d[end:], "t:") {
				end += 2
			}
			if end >= len(d) || !isAlnum(d[end]) {
				return nil, 0, 0
			}
			end++
		}
		for end < len(d) && (isAlnum(d[end]) || d[end] == '_' || (allMinus && d[end] == '-')) {
			end++
		}
		if end-start < 2 || end-start > maxLen {
			return nil, 0, 0
		}
		if len(d) > end+1 && (d[end] == '+' || (allMinus && d[end] == '-')) {
			end++
			continue
		}
		break
	}
	if end < len(d) && d[end] == '/' {
		for end < len(d) && (isAlnum(d[end]) || d[end] == '_' || d[end] == '/') {
			end++
		}
	}
	return data[pos-rewind : pos+end], rewind, end
}

// Detects /u/name and u/name around the '/' at pos.
func autolinkUsername(data []byte, pos, maxRewind int) (link []byte, rewind, n int) {
	d := data[pos:]
	if len(d) < 3 {
		return nil, 0, 0
	}
	rewind = redditPrefix(data, pos, maxRewind, 'u')
	if rewind == 0 {
		return nil, 0, 0
	}
	end := len("/")
	if c := d[end]; !isAlnum(c) && c != '_' && c != '-' {
		return nil, 0, 0
	}
	end++
	for end < len(d) && (isAlnum(d[end]) || d[end] == '_' || d[end] == '/' || d[end] == '-') {
		end++
	}
	return data[pos-rewind : pos+end], rewind, end
}
