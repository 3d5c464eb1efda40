package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"

	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
)

var ErrNoScriptSetup = errors.New("no <script setup> block")

// Extractor reads the prop schema of template components.
type Extractor struct {
	fs     afero.Fs
	parser ComponentParser
	logger *slog.Logger
}

// NewExtractor creates an Extractor reading from fs. A nil parser limits
// extraction to text scanning.
func NewExtractor(fs afero.Fs, parser ComponentParser, logger *slog.Logger) *Extractor {
	if parser == nil {
		parser = textParser{}
	}
	return &Extractor{fs: fs, parser: parser, logger: logger}
}

// Extract returns the prop schema of the component at path. Failures are
// logged and yield an empty schema so one broken template never stops a pass.
func (e *Extractor) Extract(ctx context.Context, path string) meta.PropertySchema {
	source, err := afero.ReadFile(e.fs, path)
	if err != nil {
		e.logger.Warn("Failed to read template", "path", path, "error", err)
		return emptySchema()
	}
	schema, err := e.ExtractSource(ctx, source)
	if err != nil {
		if errors.Is(err, ErrNoScriptSetup) {
			e.logger.Debug("Template has no script setup block", "path", path)
		} else {
			e.logger.Warn("Failed to extract props", "path", path, "error", err)
		}
		return emptySchema()
	}
	e.logger.Debug("Extracted props", "path", path, "props", len(schema.Props), "defaults", schema.Defaults.Len())
	return schema
}

// ExtractSource is Extract on in-memory component source. It reports why
// extraction failed instead of logging.
func (e *Extractor) ExtractSource(ctx context.Context, source []byte) (meta.PropertySchema, error) {
	comp, err := e.parser.Parse(ctx, source)
	if err != nil {
		return emptySchema(), fmt.Errorf("%w: %w", literal.ErrMalformedSource, err)
	}
	defer comp.Close()
	if !comp.HasScriptBlock {
		return emptySchema(), ErrNoScriptSetup
	}

	script := comp.ScriptContent
	src := []byte(script)
	root := comp.Root()

	var declared []declaredProp
	var runtime runtimeProps
	defaults, haveDefaults := literal.Value{}, false

	if root != nil {
		declared, _ = typeMembersFromTree(root, src)
		runtime = runtimePropsFromTree(root, src)
		defaults, haveDefaults = e.defaultsFromTree(root, src)
	} else {
		declared, _ = typeMembersFromText(script)
	}
	if !haveDefaults {
		defaults = e.defaultsFromText(ctx, script)
	}

	return mergeSchema(declared, runtime, defaults), nil
}

func (e *Extractor) defaultsFromTree(root *sitter.Node, src []byte) (literal.Value, bool) {
	call := findCallNamed(root, src, "withDefaults")
	if call == nil {
		return literal.Value{}, false
	}
	arg := callArgument(call, 1)
	if arg == nil {
		return literal.Value{}, false
	}
	v, err := literal.Evaluate(arg, src)
	if err != nil {
		e.logger.Debug("Structured defaults evaluation failed, falling back to text scan", "error", err)
		return literal.Value{}, false
	}
	if v.Kind() != literal.KindObject {
		return literal.Value{}, false
	}
	return v, true
}

func (e *Extractor) defaultsFromText(ctx context.Context, script string) literal.Value {
	span, ok := FindArgumentSpan(script, "withDefaults", 1)
	if !ok {
		return literal.Object()
	}
	text := span.Text(script)
	v, err := literal.EvaluateSource(ctx, text)
	if err == nil && v.Kind() == literal.KindObject {
		return v
	}
	e.logger.Debug("Defaults are not a plain literal, extracting primitives", "error", err)
	return ExtractPrimitives(text)
}

// runtimeProps are props declared with the runtime object or array syntax,
// defineProps({ title: String }) or defineProps(['title']).
type runtimeProps struct {
	props    []meta.PropertyDescriptor
	defaults literal.Value
}

func runtimePropsFromTree(root *sitter.Node, src []byte) runtimeProps {
	out := runtimeProps{defaults: literal.Object()}
	call := findCallNamed(root, src, "defineProps")
	if call == nil {
		return out
	}
	arg := callArgument(call, 0)
	if arg == nil {
		return out
	}

	switch arg.Type() {
	case "array":
		for i := 0; i < int(arg.NamedChildCount()); i++ {
			if v, err := literal.Evaluate(arg.NamedChild(i), src); err == nil && v.Kind() == literal.KindString {
				out.props = append(out.props, meta.PropertyDescriptor{Name: v.Str(), Type: meta.PropUnknown})
			}
		}
	case "object":
		for i := 0; i < int(arg.NamedChildCount()); i++ {
			pair := arg.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			name, ok := propertyName(pair.ChildByFieldName("key"), src)
			if !ok {
				continue
			}
			desc := meta.PropertyDescriptor{Name: name, Type: meta.PropUnknown}
			value := pair.ChildByFieldName("value")
			if value == nil {
				continue
			}
			switch value.Type() {
			case "identifier", "array":
				desc.Type = constructorType(value, src)
			case "object":
				for j := 0; j < int(value.NamedChildCount()); j++ {
					opt := value.NamedChild(j)
					if opt.Type() != "pair" {
						continue
					}
					key, _ := propertyName(opt.ChildByFieldName("key"), src)
					switch key {
					case "type":
						desc.Type = constructorType(opt.ChildByFieldName("value"), src)
					case "default":
						if v, err := literal.Evaluate(opt.ChildByFieldName("value"), src); err == nil && !v.IsUndefined() {
							out.defaults.Set(name, v)
						}
					}
				}
			}
			out.props = append(out.props, desc)
		}
	}
	return out
}

// constructorType maps String/Number/Boolean/Array/Object constructors.
// For a list of constructors the first one decides.
func constructorType(node *sitter.Node, src []byte) meta.PropType {
	if node == nil {
		return meta.PropUnknown
	}
	if node.Type() == "array" {
		if node.NamedChildCount() == 0 {
			return meta.PropUnknown
		}
		return constructorType(node.NamedChild(0), src)
	}
	if node.Type() != "identifier" {
		return meta.PropUnknown
	}
	switch node.Content(src) {
	case "String":
		return meta.PropString
	case "Number":
		return meta.PropNumber
	case "Boolean":
		return meta.PropBoolean
	case "Array", "Object", "Date", "Function":
		return meta.PropObject
	default:
		return meta.PropUnknown
	}
}

func propertyName(key *sitter.Node, src []byte) (string, bool) {
	if key == nil {
		return "", false
	}
	switch key.Type() {
	case "property_identifier":
		return key.Content(src), true
	case "string":
		v, err := literal.Evaluate(key, src)
		if err != nil {
			return "", false
		}
		return v.Str(), true
	}
	return "", false
}

// mergeSchema gives every declared prop a descriptor, fills defaults by name
// and appends props that only appear in the defaults.
func mergeSchema(declared []declaredProp, runtime runtimeProps, defaults literal.Value) meta.PropertySchema {
	schema := meta.PropertySchema{Defaults: literal.Object()}
	for _, d := range declared {
		schema.Add(meta.PropertyDescriptor{Name: d.Name, Type: ClassifyType(d.TypeText)})
	}
	for _, p := range runtime.props {
		if existing, ok := schema.Lookup(p.Name); ok && p.Type == meta.PropUnknown {
			p.Type = existing.Type
		}
		schema.Add(p)
	}

	all := runtime.defaults
	if all.Kind() != literal.KindObject {
		all = literal.Object()
	}
	all = all.Merge(defaults)
	for _, m := range all.Members() {
		if m.Value.IsUndefined() {
			continue
		}
		schema.Defaults.Set(m.Key, m.Value)
		val := m.Value
		desc, ok := schema.Lookup(m.Key)
		if !ok {
			desc = meta.PropertyDescriptor{Name: m.Key, Type: meta.PropTypeOf(val)}
		}
		desc.Default = &val
		schema.Add(desc)
	}
	return schema
}

func emptySchema() meta.PropertySchema {
	return meta.PropertySchema{Defaults: literal.Object()}
}
