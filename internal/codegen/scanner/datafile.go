package scanner

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/literal"
)

// storeWrappers are calls whose first argument is the data itself,
// e.g. `export const welcomeData = reactive<WelcomeData>({ ... })`.
var storeWrappers = map[string]bool{
	"reactive":        true,
	"ref":             true,
	"readonly":        true,
	"shallowReactive": true,
	"shallowRef":      true,
}

// ExamplePayload reads the example payload exported by a template's data file:
// the `<name>Data` export, or `testData` when that is missing. ok is false
// when the file does not exist, exports neither binding, or the value is
// not a static literal.
func (e *Extractor) ExamplePayload(ctx context.Context, path, name string) (literal.Value, bool) {
	source, err := afero.ReadFile(e.fs, path)
	if err != nil {
		return literal.Value{}, false
	}
	v, err := ParseDataFile(ctx, source, name)
	if err != nil {
		e.logger.Warn("Failed to read example payload", "path", path, "error", err)
		return literal.Value{}, false
	}
	if v.IsUndefined() {
		return literal.Value{}, false
	}
	return v, true
}

// ParseDataFile evaluates the exported example data of a data file.
// It returns undefined without error when no matching export exists.
func ParseDataFile(ctx context.Context, source []byte, name string) (literal.Value, error) {
	tree, err := parseTypeScript(ctx, source)
	if err != nil {
		return literal.Value{}, err
	}
	defer tree.Close()

	exports := exportedConsts(tree.RootNode(), source)
	node, ok := exports[name+"Data"]
	if !ok {
		node, ok = exports["testData"]
	}
	if !ok {
		return literal.Undefined(), nil
	}

	for node.Type() == "call_expression" {
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Type() != "identifier" || !storeWrappers[fn.Content(source)] {
			return literal.Value{}, fmt.Errorf("%w: %s", literal.ErrUnsupportedLiteral, node.Content(source))
		}
		arg := callArgument(node, 0)
		if arg == nil {
			return literal.Undefined(), nil
		}
		node = arg
	}
	return literal.Evaluate(node, source)
}

// exportedConsts maps each `export const name = value` binding to its value node.
func exportedConsts(root *sitter.Node, src []byte) map[string]*sitter.Node {
	out := map[string]*sitter.Node{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "export_statement" {
			continue
		}
		decl := stmt.ChildByFieldName("declaration")
		if decl == nil || (decl.Type() != "lexical_declaration" && decl.Type() != "variable_declaration") {
			continue
		}
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			d := decl.NamedChild(j)
			if d.Type() != "variable_declarator" {
				continue
			}
			id := d.ChildByFieldName("name")
			val := d.ChildByFieldName("value")
			if id == nil || val == nil || id.Type() != "identifier" {
				continue
			}
			out[id.Content(src)] = val
		}
	}
	return out
}
