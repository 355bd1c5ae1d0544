package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowconv/internal/validation"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	validator, err := validation.NewWorkflowValidator()
	require.NoError(t, err)

	srv := New(Deps{
		Validator: validator,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:   "test",
	})
	return srv.Handler()
}

func postConvert(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/workflow/convert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConvert_UIWorkflow(t *testing.T) {
	h := newTestServer(t)

	rec := postConvert(t, h, `{
		"nodes": [
			{"id": 1, "type": "LoadImage", "inputs": [], "widgets_values": ["img.png"]},
			{"id": 2, "type": "Save", "inputs": [{"name": "image", "link": 1}], "widgets_values": []}
		],
		"links": [[1, 1, 0, 2, 0, "IMAGE"]]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{
		"1": {"class_type": "LoadImage", "inputs": {}},
		"2": {"class_type": "Save", "inputs": {"image": ["1", 0]}}
	}`, rec.Body.String())
}

func TestConvert_APIFormatEchoedBack(t *testing.T) {
	h := newTestServer(t)

	input := `{"9": {"class_type": "SaveImage", "inputs": {"filename_prefix": "日本語"}}}`
	rec := postConvert(t, h, input)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, input, rec.Body.String())
	// Non-ASCII is preserved, not escaped.
	assert.Contains(t, rec.Body.String(), "日本語")
}

func TestConvert_MalformedBody(t *testing.T) {
	h := newTestServer(t)

	rec := postConvert(t, h, `{"foo": "bar"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "nodes")
}

func TestConvert_InvalidJSON(t *testing.T) {
	h := newTestServer(t)

	rec := postConvert(t, h, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "Invalid JSON")
}

func TestConvert_BodyTooLarge(t *testing.T) {
	validator, err := validation.NewWorkflowValidator()
	require.NoError(t, err)

	srv := New(Deps{
		Validator:    validator,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxBodyBytes: 64,
	})
	h := srv.Handler()

	var big bytes.Buffer
	big.WriteString(`{"nodes": [], "links": [], "extra": {"pad": "`)
	big.WriteString(strings.Repeat("x", 256))
	big.WriteString(`"}}`)

	rec := postConvert(t, h, big.String())
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestConvert_StructuralInconsistencyIsClientError(t *testing.T) {
	h := newTestServer(t)

	// Subgraph instance with a missing body.
	rec := postConvert(t, h, `{
		"nodes": [{"id": 5, "type": "3f2a8c44-9d1e-4b7a-8f3d-2c5e9a1b6d70"}],
		"links": []
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "MISSING_SUBGRAPH")
}

func TestConvertInfo(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/workflow/convert", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "flowconv", info["name"])
	assert.Equal(t, "test", info["version"])
	assert.NotEmpty(t, info["usage"])
	assert.NotEmpty(t, info["repository"])
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
