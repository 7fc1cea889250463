package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/five82/jotter/internal/item"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Successful execution
	ExitFailure = 1 // Request failed (validation, not found, server unreachable)
	ExitUsage   = 2 // Bad arguments or flags
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitUsage)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the envelope for json and yaml output.
type Response struct {
	Status string `json:"status" yaml:"status"`
	Data   any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// RemoveResult reports the outcome of rm.
type RemoveResult struct {
	ID      string `json:"id" yaml:"id"`
	Deleted bool   `json:"deleted" yaml:"deleted"`
}

// OutputFormatter writes command results as text, json or yaml.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Items writes a list of items.
func (f *OutputFormatter) Items(items []item.Item) error {
	if items == nil {
		items = []item.Item{}
	}
	if f.Format != "text" {
		return f.encode(items)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(f.Writer, "No items.")
		return err
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Title, it.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

// Item writes a single item.
func (f *OutputFormatter) Item(it item.Item) error {
	if f.Format != "text" {
		return f.encode(it)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", it.ID)
	fmt.Fprintf(tw, "Title\t%s\n", it.Title)
	fmt.Fprintf(tw, "Description\t%s\n", it.Description)
	fmt.Fprintf(tw, "Created\t%s\n", it.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(tw, "Updated\t%s\n", it.UpdatedAt.Local().Format(time.DateTime))
	return tw.Flush()
}

// Removed writes the outcome of a delete.
func (f *OutputFormatter) Removed(r RemoveResult) error {
	if f.Format != "text" {
		return f.encode(r)
	}
	msg := "Deleted " + r.ID
	if !r.Deleted {
		msg = "Kept " + r.ID
	}
	_, err := fmt.Fprintln(f.Writer, msg)
	return err
}

func (f *OutputFormatter) encode(data any) error {
	resp := Response{Status: "ok", Data: data}
	switch f.Format {
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
}
