package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/nge-dev/nge/internal/codegen/common"
	"github.com/nge-dev/nge/internal/codegen/literal"
	"github.com/nge-dev/nge/internal/codegen/meta"
	"github.com/nge-dev/nge/internal/server/views"
	"github.com/nge-dev/nge/internal/urlparams"
)

// SendResult is the success body of the send route.
type SendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	HTML    string `json:"html"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	rel := strings.Trim(chi.URLParam(r, "*"), "/")

	body, apiErr := s.readBody(w, r)
	if apiErr != nil {
		writeError(w, apiErr)
		return
	}

	unit, ok := s.lookup(rel)
	if !ok {
		writeError(w, ErrNotFound("Email template not found: "+rel))
		return
	}

	data := unit.Schema.DefaultsObject().Merge(body)
	html, err := s.renderer.Render(r.Context(), unit.CompanionFile, data)
	if err != nil {
		s.logger.Error("Render failed", "template", rel, "error", err)
		writeError(w, ErrInternal(err.Error()))
		return
	}
	if err := s.dispatcher.Dispatch(r.Context(), html, body); err != nil {
		s.logger.Error("Send failed", "template", rel, "error", err)
		writeError(w, ErrInternal(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, SendResult{
		Success: true,
		Message: "Email rendered successfully",
		HTML:    html,
	})
}

// readBody decodes the request body as a JSON object. An empty body is an
// empty object.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (literal.Value, *ApiError) {
	reader := io.Reader(r.Body)
	if s.cfg.MaxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return literal.Value{}, ErrBadRequest("Request body too large")
		}
		return literal.Value{}, ErrBadRequest("Failed to read request body")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return literal.Object(), nil
	}
	body, err := literal.ParseJSON(raw)
	if err != nil || body.Kind() != literal.KindObject {
		return literal.Value{}, ErrBadRequest("Request body must be a JSON object")
	}
	return body, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	units, _ := s.snapshot()
	entries := make([]views.IndexEntry, 0, len(units))
	for _, u := range units {
		entries = append(entries, views.IndexEntry{
			RelativePath: u.RelativePath,
			PreviewPath:  common.PreviewPath(u.RelativePath),
			RoutePath:    common.RoutePath(u.RelativePath),
			Props:        len(u.Schema.Props),
		})
	}
	templ.Handler(views.Index(entries)).ServeHTTP(w, r)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rel := strings.Trim(chi.URLParam(r, "*"), "/")
	unit, ok := s.lookup(rel)
	if !ok {
		templ.Handler(views.NotFound(rel), templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
		return
	}

	state := previewState(unit.Schema)
	urlparams.Decode(r.URL.RawQuery, &state)

	data := views.PreviewData{
		RelativePath: unit.RelativePath,
		RoutePath:    common.RoutePath(unit.RelativePath),
		ShareURL:     urlparams.ShareableURL(r.URL.Path, state),
		Example:      unit.ExamplePayload,
	}
	for _, p := range unit.Schema.Props {
		v, _ := state.Get(p.Name)
		value := ""
		if !v.IsNullish() {
			value = v.Text()
		}
		data.Props = append(data.Props, views.PropRow{Name: p.Name, Type: string(p.Type), Value: value})
	}

	status := http.StatusOK
	html, err := s.renderer.Render(r.Context(), unit.CompanionFile, state)
	if err != nil {
		data.RenderError = err.Error()
		status = http.StatusInternalServerError
	} else {
		data.HTML = html
	}
	templ.Handler(views.Preview(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

// previewState starts from the defaults and adds every declared prop without
// one as an empty string, so URL params can set it.
func previewState(schema meta.PropertySchema) literal.Value {
	state := schema.DefaultsObject()
	for _, p := range schema.Props {
		if !state.Has(p.Name) {
			state.Set(p.Name, literal.String(""))
		}
	}
	return state
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	_, doc := s.snapshot()
	if doc == nil {
		writeError(w, ErrNotFound("OpenAPI document not loaded"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, `{"statusCode":500,"statusMessage":"Failed to encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := WrapError(err)
	writeJSON(w, apiErr.StatusCode, apiErr)
}
