package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/jotter/internal/api"
	"github.com/five82/jotter/internal/client"
	"github.com/five82/jotter/internal/config"
	"github.com/five82/jotter/internal/prefs"
	"github.com/five82/jotter/internal/service"
	"github.com/five82/jotter/internal/state"
	"github.com/five82/jotter/internal/store"
	"github.com/five82/jotter/internal/ui"
)

// ServeOptions configure the HTTP server.
type ServeOptions struct {
	Config config.Config
	Memory bool // keep items in memory instead of SQLite
	Logger *slog.Logger
}

// UIOptions configure the terminal UI.
type UIOptions struct {
	Config    config.Config
	PrefsPath string        // empty uses default ~/.config/jotter/prefs.toml
	PollEvery time.Duration // zero disables background reloads
	Verbose   bool
}

// Serve runs the item API until ctx is cancelled.
func Serve(ctx context.Context, opts ServeOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(os.Stderr, opts.Config.Level())
	}

	s, err := OpenStore(opts.Config, opts.Memory)
	if err != nil {
		return err
	}
	defer s.Close()

	return api.Serve(ctx, opts.Config.APIBind, NewHandler(s, logger), logger)
}

// NewHandler builds the HTTP stack over s.
func NewHandler(s store.Store, logger *slog.Logger) http.Handler {
	svc := service.New(s, logger.With("component", "service"))
	return api.NewRouter(api.NewHandler(svc, logger.With("component", "api")))
}

// OpenStore opens the SQLite database at cfg.DBPath, creating its directory,
// or an in-memory store when memory is set.
func OpenStore(cfg config.Config, memory bool) (store.Store, error) {
	if memory {
		return store.NewMemory(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	return s, nil
}

// NewManager returns a state manager talking to the configured server.
func NewManager(cfg config.Config, logger *slog.Logger, confirm state.Confirmer) (*state.Manager, error) {
	c, err := client.New(cfg.APIBind)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}
	return state.NewManager(c,
		state.WithConfirmer(confirm),
		state.WithLogger(logger),
	), nil
}

// RunUI boots the TUI until the user quits or ctx is cancelled. Logs go to
// the client log file so they do not corrupt the screen.
func RunUI(ctx context.Context, opts UIOptions) error {
	level := opts.Config.Level()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logPath := opts.Config.ClientLogPath()
	logFile, err := OpenLogFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := NewLogger(logFile, level)

	bridge := ui.NewConfirmBridge()
	mgr, err := NewManager(opts.Config, logger, bridge.Confirm)
	if err != nil {
		return err
	}

	if opts.PollEvery > 0 {
		StartPoller(ctx, mgr, opts.PollEvery, logger)
	}

	logger.Info("ui starting", "api_bind", opts.Config.APIBind)
	return ui.Run(ui.Options{
		Context:   ctx,
		Manager:   mgr,
		Confirm:   bridge,
		LogPath:   logPath,
		Prefs:     prefs.Load(opts.PrefsPath),
		PrefsPath: prefsPathOrDefault(opts.PrefsPath),
		Logger:    logger,
	})
}

func prefsPathOrDefault(path string) string {
	if path == "" {
		return prefs.DefaultPath()
	}
	return path
}
