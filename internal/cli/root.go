// Package cli implements the gpat command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/gpat"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format    string // "json" | "text"
	LogLevel  string // slog level name, "off", or "" for GPAT_LOG
	CacheSize int    // object cache size in KiB, 0 for the default
}

// SyncOptions holds flags shared by the commands that open a repository.
type SyncOptions struct {
	Branch              string
	DryRun              bool
	SSHKey              string
	InsecureSkipHostKey bool
	TokenHosts          []string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the gpat CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	syncOpts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "gpat SRC DST",
		Short: "Sync a linear git history with a directory of timestamped patches",
		Long: `Keep a git repository and a patch archive in sync.

An archive is a directory holding one <timestamp>.patch file per commit.
The direction is inferred from the names: a SRC ending in .git or a DST
ending in .gpat exports the repository into the archive, a DST ending in
.git or a SRC ending in .gpat imports the archive into the repository.
Only the shorter side is extended; existing data is never rewritten.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.CacheSize < 0 {
				return fmt.Errorf("invalid cache size %d: must not be negative", opts.CacheSize)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := InferDirection(args[0], args[1])
			if err != nil {
				return err
			}

			s, err := newSession(cmd, opts, syncOpts)
			if err != nil {
				return err
			}

			if direction == gpat.DirectionExport {
				return s.export(cmd.Context(), args[0], args[1])
			}
			return s.importArchive(cmd.Context(), args[0], args[1], false)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "",
		"log level (debug|info|warn|error|off), defaults to $"+EnvLogLevel+" or warn")
	cmd.PersistentFlags().IntVar(&opts.CacheSize, "cache-size", 0, "object cache size in KiB (0 for the default)")
	addSyncFlags(cmd, syncOpts)

	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewReconstructCommand(opts))

	return cmd
}

// Execute runs the command line with args and returns the process exit code.
// Failed runs are reported by the commands themselves; anything else that
// fails is a usage error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(stderr, "error: %v\nRun '%s --help' for usage.\n", err, cmd.Name())
	return ExitCommandError
}

// addSyncFlags registers the flags of commands that run the engine.
func addSyncFlags(cmd *cobra.Command, opts *SyncOptions) {
	cmd.Flags().StringVar(&opts.Branch, "branch", "",
		"branch an import extends and moves (defaults to HEAD's branch, then master)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "verify and count without writing anything")
	addRemoteFlags(cmd, opts)
}

// addRemoteFlags registers the credential flags for remote repositories.
func addRemoteFlags(cmd *cobra.Command, opts *SyncOptions) {
	cmd.Flags().StringVar(&opts.SSHKey, "ssh-key", "", "private key for ssh remotes (defaults to $GPAT_SSH_KEY, then the agent)")
	cmd.Flags().BoolVar(&opts.InsecureSkipHostKey, "insecure-skip-host-key", false, "do not verify ssh host keys")
	cmd.Flags().StringSliceVar(&opts.TokenHosts, "token-host", nil,
		"hosts $GPAT_GIT_TOKEN may be sent to, e.g. github.com or *.example.com (defaults to any)")
}
