package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowconv/internal/validation"
)

func newTestConverterServer(t *testing.T) *ConverterServer {
	t.Helper()
	validator, err := validation.NewWorkflowValidator()
	require.NoError(t, err)

	return NewConverterServer(ConverterServerDeps{
		Validator: validator,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Version:   "test",
	})
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	return text.Text
}

func uiWorkflowArg() map[string]any {
	return map[string]any{
		"nodes": []any{
			map[string]any{"id": float64(1), "type": "LoadImage", "inputs": []any{}, "widgets_values": []any{"img.png"}},
			map[string]any{"id": float64(2), "type": "Save", "inputs": []any{
				map[string]any{"name": "image", "link": float64(1)},
			}},
		},
		"links": []any{
			[]any{float64(1), float64(1), float64(0), float64(2), float64(0), "IMAGE"},
		},
	}
}

func TestConvertTool(t *testing.T) {
	s := newTestConverterServer(t)

	req := buildRequest("flowconv.convert", map[string]any{"workflow": uiWorkflowArg()})
	result, err := s.handleConvert(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	assert.JSONEq(t, `{
		"1": {"class_type": "LoadImage", "inputs": {}},
		"2": {"class_type": "Save", "inputs": {"image": ["1", 0]}}
	}`, resultText(t, result))
}

func TestConvertTool_APIFormatPassthrough(t *testing.T) {
	s := newTestConverterServer(t)

	api := map[string]any{
		"1": map[string]any{"class_type": "LoadImage", "inputs": map[string]any{}},
	}
	req := buildRequest("flowconv.convert", map[string]any{"workflow": api})
	result, err := s.handleConvert(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, api, got)
}

func TestConvertTool_MissingWorkflow(t *testing.T) {
	s := newTestConverterServer(t)

	result, err := s.handleConvert(context.Background(), buildRequest("flowconv.convert", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestConvertTool_InvalidWorkflow(t *testing.T) {
	s := newTestConverterServer(t)

	req := buildRequest("flowconv.convert", map[string]any{
		"workflow": map[string]any{"foo": "bar"},
	})
	result, err := s.handleConvert(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid workflow")
}

func TestInspectTool_UIFormat(t *testing.T) {
	s := newTestConverterServer(t)

	req := buildRequest("flowconv.inspect", map[string]any{"workflow": uiWorkflowArg()})
	result, err := s.handleInspect(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &info))
	assert.Equal(t, "ui", info["format"])
	assert.Equal(t, float64(2), info["nodes"])
	assert.Equal(t, float64(1), info["links"])
}

func TestInspectTool_APIFormat(t *testing.T) {
	s := newTestConverterServer(t)

	req := buildRequest("flowconv.inspect", map[string]any{
		"workflow": map[string]any{
			"1": map[string]any{"class_type": "LoadImage", "inputs": map[string]any{}},
		},
	})
	result, err := s.handleInspect(context.Background(), req)
	require.NoError(t, err)

	var info map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &info))
	assert.Equal(t, "api", info["format"])
	assert.Equal(t, float64(1), info["api_nodes"])
}

func TestServerRegistersTools(t *testing.T) {
	s := newTestConverterServer(t)
	require.NotNil(t, s.MCPServer())
	assert.Len(t, s.tools(), 2)
}
