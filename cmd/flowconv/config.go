package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all flowconv server configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	ListenAddr   string `json:"listen_addr"`
	LogLevel     string `json:"log_level"`
	MaxBodyBytes int64  `json:"max_body_bytes"`
	MCP          bool   `json:"mcp"`
}

func defaultConfig() Config {
	return Config{
		ListenAddr:   ":8188",
		LogLevel:     "info",
		MaxBodyBytes: 1 << 20,
	}
}

func flowconvDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowconv"
	}
	return filepath.Join(home, ".flowconv")
}

func settingsPath() string {
	return filepath.Join(flowconvDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("FLOWCONV_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("FLOWCONV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("FLOWCONV_MAX_BODY_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	if v := os.Getenv("FLOWCONV_MCP"); v != "" {
		cfg.MCP = v == "true" || v == "1"
	}

	return cfg
}
