// Package app is the composition root for jotter.
//
// # Overview
//
// This package wires configuration, storage, the HTTP surface, the client
// state manager and the UI together. Nothing here holds business logic; each
// function builds a stack from the domain packages and hands back something
// the CLI can run.
//
// # Server
//
//	Serve()
//	  ├─> OpenStore()        SQLite at db_path, or Memory with --memory
//	  ├─> service.New()      validation and normalization
//	  ├─> api.NewRouter()    gin routes, CORS, request logging
//	  └─> api.Serve()        blocks until ctx is cancelled, then drains
//
// The server logs to stderr through log/slog at the configured level.
//
// # Terminal UI
//
//	RunUI()
//	  ├─> OpenLogFile()      <log_dir>/jotter.log
//	  ├─> NewManager()       HTTP client + ConfirmBridge
//	  ├─> StartPoller()      optional background reloads
//	  └─> ui.Run()           blocks until quit
//
// The UI writes logs to a file because the alternate screen owns the
// terminal. The diagnostics view tails the same file.
//
// # Background reloads
//
// Every mutation already reloads the list. StartPoller additionally reloads
// at a fixed interval so changes made by other clients show up. While the
// server is unreachable the interval doubles per consecutive failure up to
// maxBackoff, and resets after the first successful load.
package app
