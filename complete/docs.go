package complete

import (
	"strings"
	"unicode"
)

// PlainDocs reduces markdown documentation to its first sentence as plain
// text. Links keep their text, and emphasis and code markers are dropped.
func PlainDocs(docs string) string {
	var b strings.Builder
	s := strings.TrimSpace(docs)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			b.WriteString(s[i+1 : i+end])
			i += end
			if i+1 < len(s) && s[i+1] == '(' {
				if closing := strings.IndexByte(s[i+1:], ')'); closing >= 0 {
					i += closing + 1
				}
			}
		case '`', '*':
		case '_':
			if wordChar(s, i-1) && wordChar(s, i+1) {
				b.WriteByte(c)
			}
		case '\n', '\r', '\t':
			b.WriteByte(' ')
		case '.':
			b.WriteByte(c)
			if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n' {
				return strings.TrimSpace(b.String())
			}
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

func wordChar(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	r := rune(s[i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
