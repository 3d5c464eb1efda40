package literal

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// EvaluateSource parses expression text as TypeScript and evaluates it.
// The text is wrapped in parentheses so object literals are not read as blocks.
func EvaluateSource(ctx context.Context, text string) (Value, error) {
	src := []byte("(\n" + text + "\n)")

	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if hasSyntaxError(root) {
		return Value{}, fmt.Errorf("%w: syntax error", ErrMalformedSource)
	}
	if root.NamedChildCount() != 1 {
		return Value{}, fmt.Errorf("%w: expected a single expression", ErrMalformedSource)
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" {
		return Value{}, fmt.Errorf("%w: expected an expression, got %s", ErrMalformedSource, stmt.Type())
	}
	return Evaluate(firstExpression(stmt), src)
}

// hasSyntaxError reports error or missing nodes, tolerating the missing
// expression tree-sitter inserts for an empty `${}` substitution.
func hasSyntaxError(node *sitter.Node) bool {
	if !node.HasError() {
		return false
	}
	if node.Type() == "ERROR" {
		return true
	}
	if node.IsMissing() {
		parent := node.Parent()
		return parent == nil || parent.Type() != "template_substitution"
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if hasSyntaxError(node.Child(i)) {
			return true
		}
	}
	return false
}
