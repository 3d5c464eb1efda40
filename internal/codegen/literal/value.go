// Package literal holds the schema-less structured value used for prop
// defaults, example payloads and request bodies, and the evaluator that turns
// literal TypeScript expressions into such values without executing them.
package literal

import (
	"math"
	"strconv"
	"strings"
)

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is one key/value entry of an object value.
type Member struct {
	Key   string
	Value Value
}

// Value is a tagged union of undefined, null, bool, number, string, ordered
// array and ordered object. The zero Value is undefined.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	s       string
	items   []Value
	members []Member
}

func Undefined() Value           { return Value{} }
func Null() Value                { return Value{kind: KindNull} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Number(n float64) Value     { return Value{kind: KindNumber, n: n} }
func String(s string) Value      { return Value{kind: KindString, s: s} }
func Array(items ...Value) Value { return Value{kind: KindArray, items: items} }

// Object builds an object value. Duplicate keys collapse onto the first
// position with the last value.
func Object(members ...Member) Value {
	v := Value{kind: KindObject, members: make([]Member, 0, len(members))}
	for _, m := range members {
		v.Set(m.Key, m.Value)
	}
	return v
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsNullish() bool   { return v.kind == KindNull || v.kind == KindUndefined }
func (v Value) Bool() bool        { return v.b }
func (v Value) Number() float64   { return v.n }
func (v Value) Str() string       { return v.s }
func (v Value) Items() []Value    { return v.items }
func (v Value) Members() []Member { return v.members }
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	case KindString:
		return len(v.s)
	default:
		return 0
	}
}

// Get returns the member value for key on an object value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether the object value carries key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the object keys in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

// Set replaces the value of an existing key in place or appends a new member.
// Calling Set on a non-object value turns it into an empty object first.
func (v *Value) Set(key string, val Value) {
	if v.kind != KindObject {
		*v = Value{kind: KindObject}
	}
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Merge returns a copy of v with every member of other set on top of it.
func (v Value) Merge(other Value) Value {
	out := Value{kind: KindObject}
	for _, m := range v.members {
		out.Set(m.Key, m.Value)
	}
	for _, m := range other.members {
		out.Set(m.Key, m.Value)
	}
	return out
}

// Truthy follows JavaScript truthiness.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && v.n == v.n
	case KindString:
		return v.s != ""
	case KindArray, KindObject:
		return true
	default:
		return false
	}
}

// Text renders primitives the way String(value) does in JavaScript.
// Arrays and objects render as JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return FormatNumber(v.n)
	case KindString:
		return v.s
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// Any converts v into plain Go values (map[string]any, []any, float64, ...)
// for consumers that cannot work with ordered objects, such as template engines.
func (v Value) Any() any {
	switch v.kind {
	case KindNull, KindUndefined:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Any()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.members))
		for _, m := range v.members {
			if m.Value.IsUndefined() {
				continue
			}
			out[m.Key] = m.Value.Any()
		}
		return out
	}
	return nil
}

// Equal reports deep equality. Object member order is ignored.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return v.n == other.n
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.items) != len(other.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(other.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.members) != len(other.members) {
			return false
		}
		for _, m := range v.members {
			ov, ok := other.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// FormatNumber prints a float the way JavaScript's Number#toString does for
// the common cases (integers without a fraction, shortest round-trip digits).
func FormatNumber(n float64) string {
	if n == 0 {
		return "0"
	}
	if n != n {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	// JavaScript switches to exponent notation outside [1e-6, 1e21).
	if abs := math.Abs(n); abs >= 1e21 || abs < 1e-6 {
		out := strconv.FormatFloat(n, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(out, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
