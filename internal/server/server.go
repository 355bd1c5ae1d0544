// Package server is the HTTP boundary around the converter: it owns request
// lifetime, size limits and error mapping, and never leaks internal detail
// to callers.
package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/rendis/flowconv/internal/logging"
	"github.com/rendis/flowconv/internal/validation"
)

// DefaultMaxBodyBytes is the request body limit for conversion requests.
const DefaultMaxBodyBytes = 1 << 20 // 1 MiB

// Deps holds the dependencies for the converter server.
type Deps struct {
	Validator    *validation.WorkflowValidator
	Logger       *slog.Logger
	Version      string
	MaxBodyBytes int64
}

// Server serves the workflow conversion endpoints. Handlers share only
// immutable dependencies, so concurrent requests need no coordination.
type Server struct {
	validator    *validation.WorkflowValidator
	logger       *slog.Logger
	version      string
	maxBodyBytes int64
}

// New creates a Server. A nil validator is a programming error and panics
// on first request; Logger defaults to a text handler on stderr.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if deps.MaxBodyBytes <= 0 {
		deps.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Server{
		validator:    deps.Validator,
		logger:       deps.Logger,
		version:      deps.Version,
		maxBodyBytes: deps.MaxBodyBytes,
	}
}

// Handler returns the HTTP handler for the converter routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /workflow/convert", s.handleConvert)
	mux.HandleFunc("GET /workflow/convert", s.handleInfo)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return s.withRequestID(mux)
}

// withRequestID assigns each request a correlation ID picked up by the
// logging handler.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), uuid.NewString())
		ctx = logging.WithTransport(ctx, "http")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
