// Package urlparams carries preview state through the query string so a
// preview page can be shared or reloaded with the same prop values.
package urlparams

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

// Encode serializes the members of state into a query string prefixed with
// "?". Null and undefined members are skipped, primitives use their natural
// text form and arrays or objects are written as JSON. An empty string is
// returned when nothing is encodable.
func Encode(state literal.Value) string {
	var b strings.Builder
	for _, m := range state.Members() {
		if m.Value.IsNullish() {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(m.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(m.Value.Text()))
	}
	if b.Len() == 0 {
		return ""
	}
	return "?" + b.String()
}

// Decode applies query onto state. Only keys already present in state are
// touched and the incoming text is coerced to the kind of the current value.
// Malformed numbers leave the old value in place.
func Decode(query string, state *literal.Value) {
	if state == nil || state.Kind() != literal.KindObject {
		return
	}
	// ParseQuery keeps every well-formed pair even when it reports an error.
	values, _ := url.ParseQuery(strings.TrimPrefix(query, "?"))
	for _, key := range state.Keys() {
		incoming, ok := values[key]
		if !ok || len(incoming) == 0 {
			continue
		}
		raw := incoming[len(incoming)-1]
		current, _ := state.Get(key)
		switch current.Kind() {
		case literal.KindNumber:
			if n, ok := parseNumber(raw); ok {
				state.Set(key, literal.Number(n))
			}
		case literal.KindBool:
			state.Set(key, literal.Bool(raw == "true"))
		default:
			state.Set(key, literal.String(raw))
		}
	}
}

// ShareableURL returns base stripped of its query and fragment with the
// encoded state appended.
func ShareableURL(base string, state literal.Value) string {
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	return base + Encode(state)
}

// parseNumber follows Number(text) for finite input: surrounding whitespace
// is ignored, an empty string is zero and 0x/0o/0b prefixes are accepted.
func parseNumber(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, true
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	for _, r := range s {
		// reject the inf/nan spellings ParseFloat accepts and underscores
		if r == '_' || r == 'i' || r == 'I' || r == 'n' || r == 'N' {
			return 0, false
		}
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
