// Package ui provides the jotter terminal interface built on Bubble Tea.
//
// # Layout
//
//	┌ header: logo, item count, working/offline, last load time ┐
//	│ list (newest first)         │ detail of selected item     │
//	├ form (only while adding or editing) ──────────────────────┤
//	└ footer: flash message, key hints ─────────────────────────┘
//
// Help (?), the diagnostics log (l) and the delete confirmation replace the
// whole screen while open.
//
// # Data flow
//
// The Model never talks to the server. Every action goes through a
// state.Manager inside a tea.Cmd, and the result comes back as an
// actionDoneMsg that carries nothing but the outcome; the Model then re-reads
// the manager's Snapshot. While an action is in flight the Model is busy and
// ignores further actions, so the manager's action lock is never contended
// from the Update loop.
//
// # Confirmation
//
// Deletes are confirmed by the manager calling ConfirmBridge.Confirm from the
// removeCmd goroutine. The bridge sends a confirmRequestMsg into the program
// and blocks on a reply channel; the Model shows a confirmModal which answers
// the channel on y or n. When the program exits, pending questions are
// answered "no".
//
// # Preferences
//
// T cycles the theme and p toggles the detail pane. Both are written to the
// prefs file immediately.
package ui
