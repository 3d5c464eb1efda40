// Package openapi builds the OpenAPI document describing the generated
// email endpoints. The dev server serves it and the generator writes it
// next to the manifest.
package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/nge-dev/nge/internal/codegen/common"
	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
)

// Info is the document's info block.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Paths      map[string]PathItem `json:"paths"`
	Components Components          `json:"components"`
}

type PathItem struct {
	Post *Operation `json:"post,omitempty"`
}

type Operation struct {
	OperationID string                `json:"operationId"`
	Summary     string                `json:"summary"`
	Tags        []string              `json:"tags"`
	RequestBody RequestBody           `json:"requestBody"`
	Responses   map[string]Response   `json:"responses"`
	Security    []map[string][]string `json:"security,omitempty"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema  *Schema         `json:"schema,omitempty"`
	Example json.RawMessage `json:"example,omitempty"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

type Schema struct {
	Ref                  string             `json:"$ref,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Default              json.RawMessage    `json:"default,omitempty"`
}

type Components struct {
	Schemas         map[string]*Schema        `json:"schemas"`
	SecuritySchemes map[string]SecurityScheme `json:"securitySchemes,omitempty"`
}

type SecurityScheme struct {
	Type   string `json:"type"`
	Scheme string `json:"scheme,omitempty"`
	In     string `json:"in,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Options tunes the document.
type Options struct {
	Info Info
	// Secured declares the bearer and X-API-Key schemes on every operation.
	Secured bool
}

const (
	sendResultSchema = "SendResult"
	errorSchema      = "Error"
)

// Build returns the document for the given templates, one POST operation each.
func Build(units []meta.TemplateUnit, opts Options) (*Document, error) {
	if opts.Info.Title == "" {
		opts.Info.Title = "nge email endpoints"
	}
	if opts.Info.Version == "" {
		opts.Info.Version, _ = common.GetVersion()
	}

	doc := &Document{
		OpenAPI: "3.1.0",
		Info:    opts.Info,
		Paths:   make(map[string]PathItem, len(units)),
		Components: Components{
			Schemas: map[string]*Schema{
				sendResultSchema: {
					Type: "object",
					Properties: map[string]*Schema{
						"success": {Type: "boolean"},
						"message": {Type: "string"},
						"html":    {Type: "string"},
					},
					Required: []string{"success", "message", "html"},
				},
				errorSchema: {
					Type: "object",
					Properties: map[string]*Schema{
						"statusCode":    {Type: "integer"},
						"statusMessage": {Type: "string"},
					},
					Required: []string{"statusCode", "statusMessage"},
				},
			},
		},
	}
	if opts.Secured {
		doc.Components.SecuritySchemes = map[string]SecurityScheme{
			"bearer": {Type: "http", Scheme: "bearer"},
			"apiKey": {Type: "apiKey", In: "header", Name: "X-API-Key"},
		}
	}

	for _, unit := range units {
		op, err := operation(unit, opts.Secured)
		if err != nil {
			return nil, fmt.Errorf("openapi operation for %s: %w", unit.RelativePath, err)
		}
		doc.Paths[common.RoutePath(unit.RelativePath)] = PathItem{Post: op}
	}
	return doc, nil
}

// Marshal renders the document as 2-space indented JSON with a trailing newline.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func operation(unit meta.TemplateUnit, secured bool) (*Operation, error) {
	example := json.RawMessage("{}")
	if unit.ExamplePayload != "" {
		if !json.Valid([]byte(unit.ExamplePayload)) {
			return nil, fmt.Errorf("example payload is not valid JSON")
		}
		example = json.RawMessage(unit.ExamplePayload)
	}

	op := &Operation{
		OperationID: common.ToCamelCase("send-" + common.PageName(unit.RelativePath)),
		Summary:     "Render and send the " + unit.Name + " email",
		Tags:        []string{"nge"},
		RequestBody: RequestBody{
			Required: true,
			Content: map[string]MediaType{
				"application/json": {Schema: bodySchema(unit.Schema), Example: example},
			},
		},
		Responses: map[string]Response{
			"200": {Description: "Email rendered successfully", Content: jsonContent(sendResultSchema)},
			"400": {Description: "Body is not a JSON object", Content: jsonContent(errorSchema)},
			"500": {Description: "Render or send failure", Content: jsonContent(errorSchema)},
		},
	}
	if secured {
		op.Responses["401"] = Response{Description: "Missing or invalid credential", Content: jsonContent(errorSchema)}
		op.Responses["429"] = Response{Description: "Too many requests", Content: jsonContent(errorSchema)}
		op.Security = []map[string][]string{{"bearer": {}}, {"apiKey": {}}}
	}
	return op, nil
}

func bodySchema(schema meta.PropertySchema) *Schema {
	allow := true
	s := &Schema{Type: "object", Properties: map[string]*Schema{}, AdditionalProperties: &allow}
	for _, p := range schema.Props {
		prop := &Schema{}
		switch p.Type {
		case meta.PropString, meta.PropNumber, meta.PropBoolean:
			prop.Type = string(p.Type)
		case meta.PropObject:
			prop.Type = "object"
			if p.Default != nil && p.Default.Kind() == literal.KindArray {
				prop.Type = "array"
			}
		}
		if p.Default != nil && !p.Default.IsUndefined() {
			if raw, err := p.Default.MarshalJSON(); err == nil {
				prop.Default = raw
			}
		}
		s.Properties[p.Name] = prop
	}
	return s
}

func jsonContent(schemaName string) map[string]MediaType {
	return map[string]MediaType{
		"application/json": {Schema: &Schema{Ref: "#/components/schemas/" + schemaName}},
	}
}
