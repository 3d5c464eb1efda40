package scanner

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/nge-dev/nge/internal/codegen/meta"
)

// declaredProp is a prop name with the raw text of its declared type.
type declaredProp struct {
	Name     string
	TypeText string
}

var (
	leadingIdentRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*`)
	memberRe       = regexp.MustCompile(`(?s)^(?:readonly\s+)?([A-Za-z_$][\w$]*|'[^']*'|"[^"]*")\s*(\?)?\s*(?::\s*(.*))?$`)
)

// ClassifyType maps a TypeScript type expression onto the prop type lattice:
// string, number and boolean map to themselves, arrays and any other named
// or literal object type map to object, and anything else is unknown.
func ClassifyType(typeText string) meta.PropType {
	t := strings.TrimSpace(typeText)
	if t == "" {
		return meta.PropUnknown
	}
	if strings.HasSuffix(t, "[]") || strings.HasPrefix(t, "Array<") || strings.HasPrefix(t, "ReadonlyArray<") {
		return meta.PropObject
	}
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		return meta.PropObject
	}
	ident := leadingIdentRe.FindString(t)
	if ident == "" {
		return meta.PropUnknown
	}
	switch strings.ToLower(ident) {
	case "string":
		return meta.PropString
	case "number":
		return meta.PropNumber
	case "boolean":
		return meta.PropBoolean
	default:
		return meta.PropObject
	}
}

// typeMembersFromTree reads the type argument of defineProps<...>() from the
// syntax tree. Named types are resolved against interface and type alias
// declarations in the same script.
func typeMembersFromTree(root *sitter.Node, src []byte) ([]declaredProp, bool) {
	call := findCallNamed(root, src, "defineProps")
	if call == nil {
		return nil, false
	}
	typeArgs := call.ChildByFieldName("type_arguments")
	if typeArgs == nil || typeArgs.NamedChildCount() == 0 {
		return nil, false
	}
	body := resolveTypeBody(root, src, typeArgs.NamedChild(0))
	if body == nil {
		return nil, false
	}

	var props []declaredProp
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "property_signature" {
			continue
		}
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(src)
		if nameNode.Type() == "string" {
			name = strings.Trim(name, `'"`)
		}
		typeText := ""
		if ann := member.ChildByFieldName("type"); ann != nil {
			typeText = strings.TrimPrefix(strings.TrimSpace(ann.Content(src)), ":")
		}
		props = append(props, declaredProp{Name: name, TypeText: strings.TrimSpace(typeText)})
	}
	return props, true
}

func resolveTypeBody(root *sitter.Node, src []byte, typeNode *sitter.Node) *sitter.Node {
	switch typeNode.Type() {
	case "object_type":
		return typeNode
	case "type_identifier":
		name := typeNode.Content(src)
		var body *sitter.Node
		walk(root, func(n *sitter.Node) bool {
			switch n.Type() {
			case "interface_declaration", "type_alias_declaration":
				id := n.ChildByFieldName("name")
				if id == nil || id.Content(src) != name {
					return true
				}
				field := "body"
				if n.Type() == "type_alias_declaration" {
					field = "value"
				}
				if b := n.ChildByFieldName(field); b != nil && (b.Type() == "object_type" || b.Type() == "interface_body") {
					body = b
				}
				return false
			}
			return true
		})
		return body
	}
	return nil
}

var (
	definePropsTypeRe = regexp.MustCompile(`\bdefineProps\s*<`)
	namedTypeRe       = `(?:\binterface\s+%s\b[^{]*|\btype\s+%s\s*=\s*)\{`
)

// typeMembersFromText is the text-only counterpart of typeMembersFromTree.
func typeMembersFromText(script string) ([]declaredProp, bool) {
	loc := definePropsTypeRe.FindStringIndex(script)
	if loc == nil {
		return nil, false
	}
	arg, ok := angleBlock(script, loc[1]-1)
	if !ok {
		return nil, false
	}
	arg = strings.TrimSpace(arg)

	var body string
	switch {
	case strings.HasPrefix(arg, "{"):
		body, ok = braceBlock(script, strings.Index(script[loc[1]:], "{")+loc[1])
	case leadingIdentRe.MatchString(arg) && leadingIdentRe.FindString(arg) == arg:
		re := regexp.MustCompile(strings.ReplaceAll(namedTypeRe, "%s", regexp.QuoteMeta(arg)))
		decl := re.FindStringIndex(script)
		if decl == nil {
			return nil, false
		}
		body, ok = braceBlock(script, decl[1]-1)
	default:
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return splitMembers(body), true
}

// splitMembers splits the inside of an object type into its top-level
// members and parses each one.
func splitMembers(body string) []declaredProp {
	body = stripComments(body)
	var props []declaredProp
	depth := 0
	start := 0
	flush := func(end int) {
		if m := memberRe.FindStringSubmatch(strings.TrimSpace(body[start:end])); m != nil {
			props = append(props, declaredProp{Name: strings.Trim(m[1], `'"`), TypeText: strings.TrimSpace(m[3])})
		}
		start = end + 1
	}
	for i := 0; i < len(body); {
		switch c := body[i]; c {
		case '\'', '"':
			i = skipString(body, i)
			continue
		case '`':
			i = skipTemplate(body, i)
			continue
		case '{', '(', '[', '<':
			depth++
		case '}', ')', ']':
			depth--
		case '>':
			if i > 0 && body[i-1] == '=' {
				break
			}
			depth--
		case ';', ',', '\n':
			if depth == 0 {
				flush(i)
			}
		}
		i++
	}
	flush(len(body))
	return props
}

// braceBlock returns the text between the brace at open and its match.
func braceBlock(src string, open int) (string, bool) {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return "", false
	}
	depth := 0
	for i := open; i < len(src); {
		switch src[i] {
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return src[open+1 : i], true
			}
		}
		i++
	}
	return "", false
}

// angleBlock returns the text between the `<` at open and its matching `>`,
// ignoring the `>` of arrow function types.
func angleBlock(src string, open int) (string, bool) {
	depth := 0
	for i := open; i < len(src); {
		switch src[i] {
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
		case '<', '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case '>':
			if src[i-1] == '=' {
				break
			}
			depth--
			if depth == 0 {
				return src[open+1 : i], true
			}
		}
		i++
	}
	return "", false
}
