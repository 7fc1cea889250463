// Package logtail reads the tail of jotter's client log for the TUI
// diagnostics view.
//
// Read keeps a ring buffer of maxLines while scanning the file once, so
// memory is O(maxLines) regardless of file size. Each returned Line carries
// the slog level parsed from its level= attribute so the view can color it.
package logtail
