package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/jotter/internal/app"
	"github.com/five82/jotter/internal/item"
	"github.com/five82/jotter/internal/state"
)

// newManager builds a state manager for a one-shot command.
func (o *RootOptions) newManager(cmd *cobra.Command, confirm state.Confirmer) (*state.Manager, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewManager(cfg, o.logger(cmd.ErrOrStderr(), slog.LevelError), confirm)
}

// NewListCommand creates the ls command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List items, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := rootOpts.newManager(cmd, nil)
			if err != nil {
				return err
			}
			if err := mgr.Load(cmd.Context()); err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Items(mgr.Snapshot().Items)
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <description>",
		Short: "Create an item",
		Long: `Create an item. Both fields are trimmed and must not be blank.

Example:
  jotter add "Buy milk" "2%"`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := rootOpts.newManager(cmd, nil)
			if err != nil {
				return err
			}
			mgr.SetForm(state.Form{Title: args[0], Description: args[1]})
			created, err := mgr.Submit(cmd.Context())
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Item(created)
		},
	}
}

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	Title       string
	Description string
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's title or description",
		Long: `Change an item's title or description. Fields without a flag keep
their current value.

Example:
  jotter edit 0192f0c4-... --description skim`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "new title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "new description")

	return cmd
}

func runEdit(cmd *cobra.Command, opts *EditOptions, id string) error {
	titleSet := cmd.Flags().Changed("title")
	descSet := cmd.Flags().Changed("description")
	if !titleSet && !descSet {
		return NewExitError(ExitUsage, "edit needs --title or --description")
	}

	mgr, err := opts.newManager(cmd, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := mgr.Load(ctx); err != nil {
		return err
	}
	target, ok := findItem(mgr.Snapshot().Items, id)
	if !ok {
		return &item.NotFoundError{ID: id}
	}

	mgr.BeginEdit(target)
	if titleSet {
		mgr.SetTitle(opts.Title)
	}
	if descSet {
		mgr.SetDescription(opts.Description)
	}
	updated, err := mgr.Submit(ctx)
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Item(updated)
}

func findItem(items []item.Item, id string) (item.Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return item.Item{}, false
}

// RemoveOptions holds flags for the rm command.
type RemoveOptions struct {
	*RootOptions
	Yes bool
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item",
		Long: `Delete an item after confirming on stdin. Use --yes to skip the prompt.

Example:
  jotter rm 0192f0c4-... --yes`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := stdinConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
			if opts.Yes {
				confirm = func(string) bool { return true }
			}
			return runRemove(cmd, opts, args[0], confirm)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "delete without asking")

	return cmd
}

func runRemove(cmd *cobra.Command, opts *RemoveOptions, id string, confirm state.Confirmer) error {
	mgr, err := opts.newManager(cmd, confirm)
	if err != nil {
		return err
	}
	deleted, err := mgr.Remove(cmd.Context(), id)
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Removed(RemoveResult{ID: id, Deleted: deleted})
}

// stdinConfirmer asks on out and reads a y/yes answer from in. Anything
// else, including EOF, declines.
func stdinConfirmer(in io.Reader, out io.Writer) state.Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
