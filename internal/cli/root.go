package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/trajcon/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs. Commands built directly
	// (as in tests) see the zero value and fall back to config.Defaults.
	Config config.Config

	// Logger writes structured diagnostics to stderr.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the trajcon CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trajcon",
		Short: "trajcon - region-gated trajectory constraints",
		Long: `Declare trajectory constraints in CUE, gate them to rectangular regions
of the field, and query, record and replay their limits.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ./trajcon.yaml if present)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// initialize loads configuration, applies it beneath explicit flags and
// sets up logging.
func (o *RootOptions) initialize(cmd *cobra.Command) error {
	// Subcommands silence cobra's error printing, so report here.
	fail := func(err error) error {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return fail(WrapExitError(ExitCommandError, "failed to load config", err))
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Output.Format
	}
	if !isValidFormat(o.Format) {
		return fail(NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats)))
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return fail(WrapExitError(ExitCommandError, "failed to load config", err))
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// logger returns the configured logger, or a discarding one.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

// databasePath resolves a --db flag value against configuration.
func (o *RootOptions) databasePath(flag string) string {
	if flag != "" {
		return flag
	}
	if o.Config.Database.Path != "" {
		return o.Config.Database.Path
	}
	return config.Defaults().Database.Path
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
