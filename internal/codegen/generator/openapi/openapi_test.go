package openapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nge-dev/nge/internal/codegen/generator/openapi"
	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
)

func TestBuild(t *testing.T) {
	sections := literal.Array(literal.Object(literal.Member{Key: "heading", Value: literal.String("A")}))
	units := []meta.TemplateUnit{
		{
			Name:         "welcome",
			RelativePath: "v1/welcome",
			Schema: meta.PropertySchema{
				Props: []meta.PropertyDescriptor{
					{Name: "title", Type: meta.PropString},
					{Name: "sections", Type: meta.PropObject, Default: &sections},
				},
			},
			ExamplePayload: "{\n  \"title\": \"Hi\"\n}",
		},
		{Name: "plain", RelativePath: "plain"},
	}

	doc, err := openapi.Build(units, openapi.Options{Info: openapi.Info{Title: "t", Version: "1.0.0"}, Secured: true})
	require.NoError(t, err)

	require.Contains(t, doc.Paths, "/api/emails/v1/welcome")
	require.Contains(t, doc.Paths, "/api/emails/plain")

	op := doc.Paths["/api/emails/v1/welcome"].Post
	require.NotNil(t, op)
	assert.Equal(t, "sendEmailV1Welcome", op.OperationID)
	assert.Contains(t, op.Responses, "401")
	assert.Contains(t, op.Responses, "429")

	body := op.RequestBody.Content["application/json"]
	assert.JSONEq(t, `{"title":"Hi"}`, string(body.Example))
	assert.Equal(t, "array", body.Schema.Properties["sections"].Type)
	assert.JSONEq(t, `[{"heading":"A"}]`, string(body.Schema.Properties["sections"].Default))

	plain := doc.Paths["/api/emails/plain"].Post.RequestBody.Content["application/json"]
	assert.Equal(t, "{}", string(plain.Example))

	data, err := openapi.Marshal(doc)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3.1.0", decoded["openapi"])

	again, err := openapi.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestBuildRejectsInvalidExample(t *testing.T) {
	_, err := openapi.Build([]meta.TemplateUnit{{Name: "x", RelativePath: "x", ExamplePayload: "{nope"}}, openapi.Options{})
	assert.Error(t, err)
}
