// Package state holds the client-side view of the item collection.
//
// # Overview
//
// A Manager owns three things the UI renders: the cached item list, the
// pending form, and the edit mode. Every mutation goes through an ItemsAPI
// (the HTTP client, or the service directly when running in-process) and is
// followed by a full List. The cache is never patched locally, so it is
// always exactly what the server returned last.
//
// # Edit mode
//
// EditMode is a closed set of two variants:
//
//	Idle{Draft}              submit creates a new item from Draft
//	Editing{Target, Buffer}  submit replaces Target's fields with Buffer
//
// BeginEdit enters Editing, Cancel returns to Idle with an empty form, and a
// successful Submit returns to Idle and reloads. A failed Submit leaves the
// mode and buffer untouched so the user can correct and retry.
//
// # Load failures
//
// Load keeps the previous items when the List call fails and records the
// error in LastError along with ConsecutiveFailures:
//
//	ok      → Items replaced, LastError = nil, ConsecutiveFailures = 0
//	failure → Items unchanged, LastError = err, ConsecutiveFailures++
//
// # Delete confirmation
//
// Remove asks the injected Confirmer first. The TUI answers from a modal,
// the CLI from stdin or a --yes flag, and tests from a stub. The question is
// asked before the action lock is taken, so a Confirmer may block on the same
// event loop that issues other actions.
//
// # Concurrency
//
// Load, Submit and Remove run one at a time. BeginEdit, Cancel and the form
// setters only touch local state and return immediately even while a request
// is in flight. When one of them changes the mode during a Submit, the
// successful Submit leaves that newer mode alone. Snapshot takes a read lock
// and returns a deep copy, so a renderer may call it during a Load and
// observe IsLoading.
package state
