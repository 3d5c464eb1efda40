package meta

import "github.com/nge-dev/nge/internal/codegen/literal"

// PropType is the coarse type lattice used to drive preview form fields.
type PropType string

const (
	PropString  PropType = "string"
	PropNumber  PropType = "number"
	PropBoolean PropType = "boolean"
	PropObject  PropType = "object"
	PropUnknown PropType = "unknown"
)

// PropTypeOf infers a prop type from a default value.
func PropTypeOf(v literal.Value) PropType {
	switch v.Kind() {
	case literal.KindString:
		return PropString
	case literal.KindNumber:
		return PropNumber
	case literal.KindBool:
		return PropBoolean
	case literal.KindArray, literal.KindObject:
		return PropObject
	default:
		return PropUnknown
	}
}

// PropertyDescriptor is a single declared template prop.
type PropertyDescriptor struct {
	Name    string         `json:"name"`
	Type    PropType       `json:"type"`
	Default *literal.Value `json:"default,omitempty"`
}

// PropertySchema holds the props of one template in declaration order and
// the evaluated defaults keyed by prop name.
type PropertySchema struct {
	Props    []PropertyDescriptor `json:"props"`
	Defaults literal.Value        `json:"defaults"`
}

// Add appends a descriptor, replacing an earlier one with the same name in place.
func (s *PropertySchema) Add(d PropertyDescriptor) {
	for i := range s.Props {
		if s.Props[i].Name == d.Name {
			s.Props[i] = d
			return
		}
	}
	s.Props = append(s.Props, d)
}

// Lookup returns the descriptor for name.
func (s PropertySchema) Lookup(name string) (PropertyDescriptor, bool) {
	for _, p := range s.Props {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDescriptor{}, false
}

// Empty reports whether the schema declares no props and no defaults.
func (s PropertySchema) Empty() bool {
	return len(s.Props) == 0 && s.Defaults.Len() == 0
}

// DefaultsObject returns a copy of the defaults as an object value, never
// undefined. Setting keys on the copy leaves the schema untouched.
func (s PropertySchema) DefaultsObject() literal.Value {
	if s.Defaults.Kind() != literal.KindObject {
		return literal.Object()
	}
	return literal.Object().Merge(s.Defaults)
}

// TemplateUnit is one discovered template: a .vue component with its .mjml companion.
type TemplateUnit struct {
	Name          string         `json:"name"`
	RelativePath  string         `json:"relativePath"`
	SourceFile    string         `json:"sourceFile"`
	CompanionFile string         `json:"companionFile"`
	DataFile      string         `json:"dataFile,omitempty"`
	Schema        PropertySchema `json:"schema"`
	// ExamplePayload is the JSON body shown in API docs, 2-space indented.
	ExamplePayload string `json:"-"`
}

type ArtifactKind string

const (
	ArtifactRouteHandler   ArtifactKind = "route-handler"
	ArtifactPreviewWrapper ArtifactKind = "preview-wrapper"
	ArtifactServerUtils    ArtifactKind = "server-utils"
)

// GeneratedArtifact is a file produced by one generation pass.
type GeneratedArtifact struct {
	Kind       ArtifactKind
	OutputPath string
	Source     string
}

// RouteRegistration describes one generated POST endpoint.
type RouteRegistration struct {
	RoutePath   string `json:"routePath"`
	Method      string `json:"method"`
	HandlerFile string `json:"handlerFile"`
}

// PageRegistration describes one generated preview page.
type PageRegistration struct {
	Name string `json:"name"`
	Path string `json:"path"`
	File string `json:"file"`
}

// Manifest is written next to the generated files so the host can register them.
type Manifest struct {
	Routes []RouteRegistration `json:"routes"`
	Pages  []PageRegistration  `json:"pages"`
	// Support lists generated files that are neither routes nor pages.
	Support []string `json:"support,omitempty"`
}
