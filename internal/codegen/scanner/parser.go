package scanner

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Component is the parsed view of a .vue file's <script setup> block.
type Component struct {
	HasScriptBlock bool
	ScriptContent  string
	// Tree is nil when the parser produced no syntax tree.
	Tree *sitter.Tree
}

// Root returns the root node of the script tree, or nil.
func (c *Component) Root() *sitter.Node {
	if c == nil || c.Tree == nil {
		return nil
	}
	return c.Tree.RootNode()
}

// Close releases the syntax tree.
func (c *Component) Close() {
	if c != nil && c.Tree != nil {
		c.Tree.Close()
		c.Tree = nil
	}
}

// ComponentParser turns component source into a Component.
type ComponentParser interface {
	Parse(ctx context.Context, source []byte) (*Component, error)
}

// TreeSitterParser parses <script setup> blocks with the tree-sitter
// TypeScript grammar (TSX for lang="tsx").
type TreeSitterParser struct{}

func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{}
}

func (p *TreeSitterParser) Parse(ctx context.Context, source []byte) (*Component, error) {
	sfc := ParseSFC(string(source))
	if sfc.ScriptSetup == nil {
		return &Component{}, nil
	}

	comp := &Component{
		HasScriptBlock: true,
		ScriptContent:  sfc.ScriptSetup.Content,
	}
	lang := typescript.GetLanguage()
	if sfc.ScriptSetup.Lang() == "tsx" {
		lang = tsx.GetLanguage()
	}
	tree, err := parseWith(ctx, lang, []byte(comp.ScriptContent))
	if err != nil {
		return comp, err
	}
	comp.Tree = tree
	return comp, nil
}

// textParser is used when no structured parser is configured.
type textParser struct{}

func (textParser) Parse(_ context.Context, source []byte) (*Component, error) {
	sfc := ParseSFC(string(source))
	if sfc.ScriptSetup == nil {
		return &Component{}, nil
	}
	return &Component{HasScriptBlock: true, ScriptContent: sfc.ScriptSetup.Content}, nil
}

func parseTypeScript(ctx context.Context, src []byte) (*sitter.Tree, error) {
	return parseWith(ctx, typescript.GetLanguage(), src)
}

func parseWith(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return tree, nil
}

// walk visits node and its descendants depth first until fn returns false.
func walk(node *sitter.Node, fn func(*sitter.Node) bool) bool {
	if node == nil {
		return true
	}
	if !fn(node) {
		return false
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if !walk(node.NamedChild(i), fn) {
			return false
		}
	}
	return true
}

// findCallNamed returns the first call_expression whose callee is the identifier name.
func findCallNamed(root *sitter.Node, src []byte, name string) *sitter.Node {
	var found *sitter.Node
	walk(root, func(n *sitter.Node) bool {
		if n.Type() != "call_expression" {
			return true
		}
		if fn := n.ChildByFieldName("function"); fn != nil && fn.Type() == "identifier" && fn.Content(src) == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// callArgument returns the argument at index of a call_expression.
func callArgument(call *sitter.Node, index int) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	n := 0
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		if arg.Type() == "comment" {
			continue
		}
		if n == index {
			return arg
		}
		n++
	}
	return nil
}
