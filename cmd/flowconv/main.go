package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rendis/flowconv/internal/logging"
	"github.com/rendis/flowconv/internal/server"
	"github.com/rendis/flowconv/internal/validation"
	"github.com/rendis/flowconv/pkg/mcp"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	mcpMode := flag.Bool("mcp", false, "serve MCP on stdio instead of HTTP")
	addr := flag.String("addr", "", "listen address (overrides config)")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	cfg := loadConfig()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if *mcpMode {
		cfg.MCP = true
	}

	logger := newLogger(cfg.LogLevel)

	validator, err := validation.NewWorkflowValidator()
	if err != nil {
		logger.Error("failed to build validator", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MCP {
		srv := mcp.NewConverterServer(mcp.ConverterServerDeps{
			Validator: validator,
			Logger:    logger,
			Version:   version,
		})
		logger.Info("serving MCP on stdio", "version", version)
		if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	srv := server.New(server.Deps{
		Validator:    validator,
		Logger:       logger,
		Version:      version,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Info("workflow converter endpoint registered",
		"addr", cfg.ListenAddr, "path", "/workflow/convert", "version", version)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}
