package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rendis/flowconv/internal/convert"
	"github.com/rendis/flowconv/pkg/schema"
)

// handleConvert converts an editor-format workflow to API format. A body
// already in API format is echoed back reformatted.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(ctx, "panic during conversion",
				"panic", rec, "stack", string(debug.Stack()))
			writeInternalError(w)
		}
	}()

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var doc any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", s.maxBodyBytes))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	// Already in API format: return as-is with nice formatting.
	if convert.IsAPIFormat(doc) {
		writePrettyJSON(w, http.StatusOK, doc)
		return
	}

	wf, err := s.validator.ValidateAndDecode(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	api, err := convert.ToAPI(wf)
	if err != nil {
		s.writeConvertError(w, r, err)
		return
	}

	s.logger.InfoContext(ctx, "converted workflow",
		"nodes", len(wf.Nodes),
		"links", len(wf.Links),
		"api_nodes", api.Len(),
		"version", s.version)

	writePrettyJSON(w, http.StatusOK, api)
}

// writeConvertError maps conversion failures to responses: document faults
// become client errors, anything else an opaque internal error with detail
// logged server-side only.
func (s *Server) writeConvertError(w http.ResponseWriter, r *http.Request, err error) {
	var cErr *schema.ConvertError
	if errors.As(err, &cErr) && cErr.ClientFault() {
		writeError(w, http.StatusBadRequest, cErr.Error())
		return
	}

	s.logger.ErrorContext(r.Context(), "conversion failed", "error", err)
	writeInternalError(w)
}

// handleInfo returns static metadata about the converter.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writePrettyJSON(w, http.StatusOK, map[string]string{
		"name":        "flowconv",
		"version":     s.version,
		"description": "Converts editor workflow format to API format for execution, with nested subgraph support",
		"usage":       "POST a workflow JSON to this endpoint to convert it to API format",
		"author":      "rendis",
		"repository":  "https://github.com/rendis/flowconv",
	})
}

// handleHealthz is a liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
