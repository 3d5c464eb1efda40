package scanner

import "strings"

// Span is a half-open byte range into a source text.
type Span struct {
	Start int
	End   int
}

// Text returns the spanned part of src.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// FindArgumentSpan locates the first call to name in src and returns the span
// of its argument at index (zero based), trimmed of surrounding whitespace.
// Strings, template literals (including nested ${} interpolations) and
// comments are skipped while matching delimiters. The boolean is false when
// the call or the argument does not exist; that is not an error.
func FindArgumentSpan(src, name string, index int) (Span, bool) {
	if name == "" || index < 0 {
		return Span{}, false
	}
	open := findCall(src, name)
	if open < 0 {
		return Span{}, false
	}

	var args []Span
	depth := 1
	argStart := open + 1
	i := open + 1
scan:
	for i < len(src) {
		switch c := src[i]; c {
		case '\'', '"':
			i = skipString(src, i)
			continue
		case '`':
			i = skipTemplate(src, i)
			continue
		case '/':
			if next := skipComment(src, i); next > i {
				i = next
				continue
			}
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
			if depth == 0 {
				args = append(args, Span{argStart, i})
				break scan
			}
		case ',':
			if depth == 1 {
				args = append(args, Span{argStart, i})
				argStart = i + 1
			}
		}
		i++
	}
	if depth != 0 || index >= len(args) {
		return Span{}, false
	}

	span := trimSpan(src, args[index])
	if span.Start == span.End {
		return Span{}, false
	}
	return span, true
}

// findCall returns the index of the opening parenthesis of the first
// `name(` not preceded by an identifier character, or -1.
func findCall(src, name string) int {
	from := 0
	for {
		idx := strings.Index(src[from:], name)
		if idx < 0 {
			return -1
		}
		idx += from
		from = idx + len(name)
		if idx > 0 && isIdentByte(src[idx-1]) {
			continue
		}
		j := from
		for j < len(src) && isSpace(src[j]) {
			j++
		}
		if j < len(src) && src[j] == '(' {
			return j
		}
	}
}

// skipString returns the index just past the string literal starting at i.
func skipString(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(src)
}

// skipTemplate returns the index just past the template literal starting at i.
func skipTemplate(src string, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '`':
			return j + 1
		case '$':
			if j+1 < len(src) && src[j+1] == '{' {
				j = skipInterpolation(src, j+2) - 1
			}
		}
	}
	return len(src)
}

// skipInterpolation returns the index just past the `}` closing a ${ span whose
// body starts at i. The body is code, so strings, comments and nested
// templates are skipped with their own rules.
func skipInterpolation(src string, i int) int {
	depth := 1
	for j := i; j < len(src); {
		switch src[j] {
		case '\'', '"':
			j = skipString(src, j)
			continue
		case '`':
			j = skipTemplate(src, j)
			continue
		case '/':
			if next := skipComment(src, j); next > j {
				j = next
				continue
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j + 1
			}
		}
		j++
	}
	return len(src)
}

// skipComment returns the index past a comment starting at i, or i when
// there is no comment there. Line comments stop before the newline.
func skipComment(src string, i int) int {
	if i+1 >= len(src) || src[i] != '/' {
		return i
	}
	switch src[i+1] {
	case '/':
		if nl := strings.IndexByte(src[i:], '\n'); nl >= 0 {
			return i + nl
		}
		return len(src)
	case '*':
		if end := strings.Index(src[i+2:], "*/"); end >= 0 {
			return i + 2 + end + 2
		}
		return len(src)
	}
	return i
}

// stripComments blanks out comments while keeping strings intact.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); {
		switch src[i] {
		case '\'', '"':
			end := skipString(src, i)
			b.WriteString(src[i:end])
			i = end
			continue
		case '`':
			end := skipTemplate(src, i)
			b.WriteString(src[i:end])
			i = end
			continue
		case '/':
			if end := skipComment(src, i); end > i {
				b.WriteByte(' ')
				i = end
				continue
			}
		}
		b.WriteByte(src[i])
		i++
	}
	return b.String()
}

func trimSpan(src string, s Span) Span {
	for s.Start < s.End && isSpace(src[s.Start]) {
		s.Start++
	}
	for s.End > s.Start && isSpace(src[s.End-1]) {
		s.End--
	}
	return s
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
