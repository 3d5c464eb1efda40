package literal

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// unquote strips the surrounding quote characters of a string or template
// literal and resolves its escape sequences.
func unquote(raw string) string {
	if len(raw) >= 2 {
		switch raw[0] {
		case '\'', '"', '`':
			if raw[len(raw)-1] == raw[0] {
				raw = raw[1 : len(raw)-1]
			}
		}
	}
	return unescape(raw)
}

// unescape resolves JavaScript escape sequences. Unknown escapes keep the
// escaped character, as the language does outside strict templates.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case 'x':
			if i+2 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
					b.WriteRune(rune(n))
					i += 2
					continue
				}
			}
			b.WriteByte(e)
		case 'u':
			r, width := decodeUnicodeEscape(s[i+1:])
			if width == 0 {
				b.WriteByte(e)
				continue
			}
			// surrogate pair written as two \u escapes
			if r >= 0xD800 && r < 0xDC00 && strings.HasPrefix(s[i+1+width:], `\u`) {
				lo, w2 := decodeUnicodeEscape(s[i+1+width+2:])
				if w2 > 0 && lo >= 0xDC00 && lo < 0xE000 {
					r = (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000
					width += 2 + w2
				}
			}
			if !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
			i += width
		default:
			b.WriteByte(e)
		}
	}
	return b.String()
}

// decodeUnicodeEscape reads the part after `\u`: either four hex digits or a
// braced code point. It returns the rune and the number of bytes consumed.
func decodeUnicodeEscape(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0
		}
		n, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0
		}
		return rune(n), end + 1
	}
	if len(s) < 4 {
		return 0, 0
	}
	n, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(n), 4
}
