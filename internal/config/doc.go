// Package config loads jotter's TOML configuration.
//
// # Resolution
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/jotter/config.toml
//  3. A missing file is not an error; every field falls back to its default
//  4. JOTTER_API_BIND and JOTTER_DB_PATH override the file when non-blank
//
// # Fields
//
//	api_bind  = "127.0.0.1:5000"                   # server listen address, client target
//	db_path   = "~/.local/share/jotter/jotter.db"  # SQLite database
//	log_dir   = "~/.local/share/jotter/logs"       # TUI log file lives here
//	log_level = "info"                             # debug, info, warn, error
//
// Tilde paths are expanded and relative paths made absolute. An unknown
// log_level is reported by Load rather than silently ignored.
package config
