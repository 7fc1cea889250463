package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME at a temp dir and blanks the env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envAPIBind, "")
	t.Setenv(envDBPath, "")
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	wantDB := filepath.Join(home, ".local/share/jotter/jotter.db")
	if cfg.DBPath != wantDB {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, wantDB)
	}
	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
	if cfg.Level() != slog.LevelInfo {
		t.Fatalf("Level = %v, want info", cfg.Level())
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(writeConfig(t, `
api_bind = "  10.0.0.5:9999  "
db_path = "  ~/notes.db  "
log_dir = "  ~/.jotter/logs  "
log_level = "DEBUG"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, "10.0.0.5:9999")
	}
	if cfg.DBPath != filepath.Join(home, "notes.db") {
		t.Fatalf("DBPath = %q, want under HOME", cfg.DBPath)
	}
	if !strings.HasPrefix(cfg.LogDir, home) {
		t.Fatalf("LogDir = %q, want it under HOME %q", cfg.LogDir, home)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Fatalf("Level = %v, want debug", cfg.Level())
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(writeConfig(t, `
api_bind = "   "
log_dir = ""
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	wantLogDir, err := expandPath(defaultLogDir)
	if err != nil {
		t.Fatalf("expandPath(defaultLogDir) returned error: %v", err)
	}
	if cfg.LogDir != wantLogDir {
		t.Fatalf("LogDir = %q, want %q", cfg.LogDir, wantLogDir)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	home := isolate(t)
	t.Setenv(envAPIBind, "0.0.0.0:8080")
	t.Setenv(envDBPath, "~/env.db")

	cfg, err := Load(writeConfig(t, `
api_bind = "10.0.0.5:9999"
db_path = "/srv/file.db"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "0.0.0.0:8080" {
		t.Fatalf("APIBind = %q, want env value", cfg.APIBind)
	}
	if cfg.DBPath != filepath.Join(home, "env.db") {
		t.Fatalf("DBPath = %q, want env value expanded", cfg.DBPath)
	}
}

func TestLoad_BlankEnvironmentKeepsFile(t *testing.T) {
	isolate(t)
	t.Setenv(envAPIBind, "   ")

	cfg, err := Load(writeConfig(t, `
api_bind = "10.0.0.5:9999"
db_path = "/srv/file.db"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want file value", cfg.APIBind)
	}
	if cfg.DBPath != "/srv/file.db" {
		t.Fatalf("DBPath = %q, want file value", cfg.DBPath)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, `api_bind = [`))
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_UnknownLogLevelFails(t *testing.T) {
	isolate(t)
	_, err := Load(writeConfig(t, `log_level = "chatty"`))
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("Load error = %v, want log_level error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestClientLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.ClientLogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("ClientLogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/jotter.log")) {
		t.Fatalf("ClientLogPath = %q, want it to end with /jotter.log", got)
	}
}
