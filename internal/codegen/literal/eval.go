package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrUnsupportedLiteral marks an expression that needs runtime context to
	// evaluate (identifiers, calls, member access, operators, interpolation).
	ErrUnsupportedLiteral = errors.New("unsupported literal")

	// ErrMalformedSource is returned when expression text does not parse.
	ErrMalformedSource = errors.New("malformed source")
)

func unsupported(node *sitter.Node, src []byte) error {
	text := node.Content(src)
	if len(text) > 40 {
		text = text[:40] + "..."
	}
	return fmt.Errorf("%w: %s %q", ErrUnsupportedLiteral, node.Type(), text)
}

// Evaluate turns a literal expression node into a Value. src must be the
// source the node's tree was parsed from.
func Evaluate(node *sitter.Node, src []byte) (Value, error) {
	if node == nil {
		return Value{}, fmt.Errorf("%w: nil node", ErrUnsupportedLiteral)
	}

	switch node.Type() {
	case "object":
		obj := Object()
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			switch child.Type() {
			case "pair":
				key, ok := propertyKey(child.ChildByFieldName("key"), src)
				if !ok {
					continue
				}
				val, err := Evaluate(child.ChildByFieldName("value"), src)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			case "comment", "spread_element", "method_definition":
				continue
			default:
				return Value{}, unsupported(child, src)
			}
		}
		return obj, nil

	case "array":
		// Every comma closes one element slot; an empty slot is a hole and
		// becomes null. A trailing comma adds no slot.
		items := []Value{}
		empty := true
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			switch child.Type() {
			case "[", "]", "comment":
				continue
			case ",":
				if empty {
					items = append(items, Null())
				}
				empty = true
				continue
			}
			val, err := Evaluate(child, src)
			if err != nil {
				return Value{}, err
			}
			items = append(items, val)
			empty = false
		}
		return Array(items...), nil

	case "string":
		return String(unquote(node.Content(src))), nil

	case "number":
		n, err := parseNumber(node.Content(src))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedLiteral, err)
		}
		return Number(n), nil

	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "null":
		return Null(), nil
	case "undefined":
		return Undefined(), nil

	case "template_string":
		return evaluateTemplate(node, src)

	case "arrow_function":
		body := node.ChildByFieldName("body")
		if body == nil {
			return Undefined(), nil
		}
		if body.Type() != "statement_block" {
			return Evaluate(body, src)
		}
		var ret *sitter.Node
		returns := 0
		for i := 0; i < int(body.NamedChildCount()); i++ {
			if stmt := body.NamedChild(i); stmt.Type() == "return_statement" {
				ret = stmt
				returns++
			}
		}
		if returns != 1 {
			return Undefined(), nil
		}
		arg := firstExpression(ret)
		if arg == nil {
			return Undefined(), nil
		}
		return Evaluate(arg, src)

	case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
		return Evaluate(firstExpression(node), src)

	case "type_assertion":
		// <T>expr keeps the expression as the last named child
		return Evaluate(node.NamedChild(int(node.NamedChildCount())-1), src)

	case "unary_expression":
		op := node.ChildByFieldName("operator")
		arg := node.ChildByFieldName("argument")
		if op == nil || arg == nil || arg.Type() != "number" {
			return Value{}, unsupported(node, src)
		}
		n, err := parseNumber(arg.Content(src))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedLiteral, err)
		}
		switch op.Content(src) {
		case "-":
			return Number(-n), nil
		case "+":
			return Number(n), nil
		}
		return Value{}, unsupported(node, src)

	case "identifier":
		if node.Content(src) == "undefined" {
			return Undefined(), nil
		}
		return Value{}, unsupported(node, src)

	default:
		return Value{}, unsupported(node, src)
	}
}

// evaluateTemplate cooks a template literal. Empty `${}` spans contribute
// nothing; any embedded expression makes the value dynamic.
func evaluateTemplate(node *sitter.Node, src []byte) (Value, error) {
	start, end := node.StartByte()+1, node.EndByte()-1
	if end < start {
		return String(""), nil
	}
	var raw []byte
	pos := start
	for i := 0; i < int(node.NamedChildCount()); i++ {
		sub := node.NamedChild(i)
		if sub.Type() != "template_substitution" {
			continue
		}
		for j := 0; j < int(sub.NamedChildCount()); j++ {
			if expr := sub.NamedChild(j); !expr.IsMissing() && expr.Type() != "comment" {
				return Value{}, fmt.Errorf("%w: template literal with embedded expressions", ErrUnsupportedLiteral)
			}
		}
		raw = append(raw, src[pos:sub.StartByte()]...)
		pos = sub.EndByte()
	}
	raw = append(raw, src[pos:end]...)
	return String(unescape(string(raw))), nil
}

// propertyKey resolves identifier and string keys. Other key forms
// (numbers, computed names) are skipped.
func propertyKey(key *sitter.Node, src []byte) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case "property_identifier", "identifier":
		return key.Content(src), true
	case "string":
		return unquote(key.Content(src)), true
	default:
		return "", false
	}
}

// firstExpression returns the first named child that is not a comment or a type.
func firstExpression(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "comment", "type_annotation", "type_arguments":
			continue
		}
		return child
	}
	return nil
}

func parseNumber(text string) (float64, error) {
	text = strings.ReplaceAll(text, "_", "")
	text = strings.TrimSuffix(text, "n")
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "0x"), strings.HasPrefix(lower, "0o"), strings.HasPrefix(lower, "0b"):
		n, err := strconv.ParseUint(lower, 0, 64)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
	return strconv.ParseFloat(text, 64)
}
