package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/flowconv/internal/convert"
	"github.com/rendis/flowconv/pkg/schema"
)

// handleConvert converts a workflow document to API format.
func (s *ConverterServer) handleConvert(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := mcp.ParseStringMap(req, "workflow", nil)
	if doc == nil {
		return mcp.NewToolResultError("workflow is required and must be an object"), nil
	}

	if convert.IsAPIFormat(doc) {
		return prettyResult(doc)
	}

	wf, err := s.validator.ValidateAndDecode(doc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid workflow: %v", err)), nil
	}

	api, convErr := convert.ToAPI(wf)
	if convErr != nil {
		var cErr *schema.ConvertError
		if errors.As(convErr, &cErr) && cErr.ClientFault() {
			return mcp.NewToolResultError(fmt.Sprintf("conversion failed: %v", cErr)), nil
		}
		s.logger.ErrorContext(ctx, "conversion failed", "error", convErr)
		return mcp.NewToolResultError("internal error during conversion"), nil
	}

	s.logger.InfoContext(ctx, "converted workflow",
		"nodes", len(wf.Nodes), "links", len(wf.Links), "api_nodes", api.Len())

	return prettyResult(api)
}

// handleInspect reports a document's detected format and basic size stats.
func (s *ConverterServer) handleInspect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := mcp.ParseStringMap(req, "workflow", nil)
	if doc == nil {
		return mcp.NewToolResultError("workflow is required and must be an object"), nil
	}

	info := map[string]any{"format": "unknown"}

	if convert.IsAPIFormat(doc) {
		info["format"] = "api"
		info["api_nodes"] = len(doc)
		return prettyResult(info)
	}

	nodes, hasNodes := doc["nodes"].([]any)
	links, hasLinks := doc["links"].([]any)
	if hasNodes && hasLinks {
		info["format"] = "ui"
		info["nodes"] = len(nodes)
		info["links"] = len(links)
		if defs, ok := doc["definitions"].(map[string]any); ok {
			if subs, ok := defs["subgraphs"].([]any); ok {
				info["subgraph_definitions"] = len(subs)
			}
		}
	}
	return prettyResult(info)
}

// prettyResult marshals a value as indented JSON with HTML escaping off.
func prettyResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
