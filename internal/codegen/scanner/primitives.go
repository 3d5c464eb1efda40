package scanner

import (
	"regexp"
	"strconv"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

var primitiveRe = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*:\s*(?:'([^']*)'|"([^"]*)"|(-?\d+(?:\.\d+)?)|(true|false)\b)`)

// ExtractPrimitives pulls `key: primitive` pairs out of object literal text.
// It is the last resort when the text does not evaluate as a literal, so
// only single or double quoted strings, decimal numbers and booleans count.
func ExtractPrimitives(text string) literal.Value {
	out := literal.Object()
	for _, m := range primitiveRe.FindAllStringSubmatchIndex(text, -1) {
		key := text[m[2]:m[3]]
		switch {
		case m[4] >= 0:
			out.Set(key, literal.String(text[m[4]:m[5]]))
		case m[6] >= 0:
			out.Set(key, literal.String(text[m[6]:m[7]]))
		case m[8] >= 0:
			n, err := strconv.ParseFloat(text[m[8]:m[9]], 64)
			if err != nil {
				continue
			}
			out.Set(key, literal.Number(n))
		case m[10] >= 0:
			out.Set(key, literal.Bool(text[m[10]:m[11]] == "true"))
		}
	}
	return out
}
