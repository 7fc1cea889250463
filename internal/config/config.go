package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings shared by the server and its clients.
type Config struct {
	APIBind  string
	DBPath   string
	LogDir   string
	LogLevel string
}

const (
	defaultConfigPath = "~/.config/jotter/config.toml"
	defaultDBPath     = "~/.local/share/jotter/jotter.db"
	defaultLogDir     = "~/.local/share/jotter/logs"
	defaultAPIBind    = "127.0.0.1:5000"
	defaultLogLevel   = "info"

	envAPIBind = "JOTTER_API_BIND"
	envDBPath  = "JOTTER_DB_PATH"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the config, falling back to defaults when missing.
// Non-blank JOTTER_API_BIND and JOTTER_DB_PATH override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw struct {
		APIBind  string `toml:"api_bind"`
		DBPath   string `toml:"db_path"`
		LogDir   string `toml:"log_dir"`
		LogLevel string `toml:"log_level"`
	}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	// Set-but-blank variables do not override the file.
	if v := strings.TrimSpace(os.Getenv(envAPIBind)); v != "" {
		raw.APIBind = v
	}
	if v := strings.TrimSpace(os.Getenv(envDBPath)); v != "" {
		raw.DBPath = v
	}

	cfg := Config{
		APIBind:  orDefault(raw.APIBind, defaultAPIBind),
		DBPath:   mustExpand(orDefault(raw.DBPath, defaultDBPath)),
		LogDir:   mustExpand(orDefault(raw.LogDir, defaultLogDir)),
		LogLevel: strings.ToLower(orDefault(raw.LogLevel, defaultLogLevel)),
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ClientLogPath returns the file the TUI logs to.
func (c Config) ClientLogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/jotter.log")
	}
	return filepath.Join(c.LogDir, "jotter.log")
}

// Level returns the configured slog level, defaulting to info.
func (c Config) Level() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log_level %q: %w", s, err)
	}
	return level, nil
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
