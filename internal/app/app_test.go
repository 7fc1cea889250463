package app

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/jotter/internal/client"
	"github.com/five82/jotter/internal/config"
	"github.com/five82/jotter/internal/state"
)

func discardLogger() *slog.Logger {
	return NewLogger(io.Discard, slog.LevelInfo)
}

func TestOpenStore_CreatesDataDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "jotter.db")
	s, err := OpenStore(config.Config{DBPath: dbPath}, false)
	if err != nil {
		t.Fatalf("OpenStore returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestOpenLogFile_CreatesDirAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "jotter.log")
	for i := 0; i < 2; i++ {
		f, err := OpenLogFile(path)
		if err != nil {
			t.Fatalf("OpenLogFile returned error: %v", err)
		}
		NewLogger(f, slog.LevelInfo).Info("hello")
		_ = f.Close()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("log lines = %d, want 2", lines)
	}
}

func TestManagerAgainstServedHandler(t *testing.T) {
	s, err := OpenStore(config.Config{DBPath: filepath.Join(t.TempDir(), "jotter.db")}, false)
	if err != nil {
		t.Fatalf("OpenStore returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	server := httptest.NewServer(NewHandler(s, discardLogger()))
	t.Cleanup(server.Close)

	mgr, err := NewManager(config.Config{APIBind: server.URL}, discardLogger(), func(string) bool { return true })
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	ctx := context.Background()

	mgr.SetForm(state.Form{Title: "Buy milk", Description: "2%"})
	created, err := mgr.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(mgr.Snapshot().Items) != 1 {
		t.Fatalf("items = %#v, want 1", mgr.Snapshot().Items)
	}

	if _, err := mgr.Remove(ctx, created.ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if len(mgr.Snapshot().Items) != 0 {
		t.Fatalf("items = %#v, want none", mgr.Snapshot().Items)
	}
}

func TestManager_UnreachableServerKeepsCache(t *testing.T) {
	server := httptest.NewServer(nil)
	addr := server.URL
	server.Close()

	mgr, err := NewManager(config.Config{APIBind: addr}, discardLogger(), nil)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}
	err = mgr.Load(context.Background())
	if !client.IsTransport(err) {
		t.Fatalf("Load error = %v, want transport error", err)
	}
	if snap := mgr.Snapshot(); snap.ConsecutiveFailures != 1 || snap.Items != nil {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ServeOptions{
			Config: config.Config{APIBind: "127.0.0.1:0"},
			Memory: true,
			Logger: discardLogger(),
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not stop after cancel")
	}
}
