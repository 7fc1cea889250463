package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/jotter/internal/app"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Memory bool
	Bind   string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the item HTTP API",
		Long: `Run the item HTTP API until interrupted.

Items are stored in the SQLite database at db_path unless --memory is given.

Example:
  jotter serve --bind 127.0.0.1:5000`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if opts.Bind != "" {
				cfg.APIBind = opts.Bind
			}
			return app.Serve(cmd.Context(), app.ServeOptions{
				Config: cfg,
				Memory: opts.Memory,
				Logger: opts.logger(cmd.ErrOrStderr(), cfg.Level()),
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Memory, "memory", false, "keep items in memory only")
	cmd.Flags().StringVar(&opts.Bind, "bind", "", "listen address (overrides api_bind)")

	return cmd
}

// UIOptions holds flags for the ui command.
type UIOptions struct {
	*RootOptions
	PrefsPath string
	Poll      time.Duration
}

// NewUICommand creates the ui command.
func NewUICommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UIOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal interface",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return app.RunUI(cmd.Context(), app.UIOptions{
				Config:    cfg,
				PrefsPath: opts.PrefsPath,
				PollEvery: opts.Poll,
				Verbose:   opts.Verbose,
			})
		},
	}

	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/jotter/prefs.toml)")
	cmd.Flags().DurationVar(&opts.Poll, "poll", 0, "reload interval, e.g. 5s (0 disables)")

	return cmd
}
