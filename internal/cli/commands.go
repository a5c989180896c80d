package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/gpat"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/archive"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/gpat/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/internal/auth"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	syncOpts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "export <repository> <archive>",
		Short: "Write commits missing from the archive as patches",
		Long: `Verify every patch the archive already holds against the repository,
then write one patch per remaining commit.

The repository may be a local path or a remote URL (https://, ssh://,
git@host:path, file://); remotes are cloned into memory first.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rootOpts, syncOpts)
			if err != nil {
				return err
			}
			return s.export(cmd.Context(), args[0], args[1])
		},
	}

	addSyncFlags(cmd, syncOpts)
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	syncOpts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "import <archive> <repository>",
		Short: "Commit patches missing from the repository",
		Long: `Match the repository's commits against the archive by timestamp, then
apply and commit every remaining patch. A missing repository is created
bare. Only the branch is moved; the worktree is never touched.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rootOpts, syncOpts)
			if err != nil {
				return err
			}
			return s.importArchive(cmd.Context(), args[0], args[1], false)
		},
	}

	addSyncFlags(cmd, syncOpts)
	return cmd
}

// NewReconstructCommand creates the reconstruct command.
func NewReconstructCommand(rootOpts *RootOptions) *cobra.Command {
	syncOpts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "reconstruct <archive> <repository>",
		Short: "Rebuild a repository from an archive",
		Long: `Import the whole archive into a repository that has no commits yet,
creating it bare when missing. Fails if the repository already has history.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rootOpts, syncOpts)
			if err != nil {
				return err
			}
			return s.importArchive(cmd.Context(), args[0], args[1], true)
		},
	}

	addSyncFlags(cmd, syncOpts)
	return cmd
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	syncOpts := &SyncOptions{}

	cmd := &cobra.Command{
		Use:   "check <repository> <archive>",
		Short: "Verify a repository and an archive hold the same history",
		Long: `Compare timestamps and recomputed patch bytes at every position and
require both sides to have the same length. Nothing is written.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd, rootOpts, syncOpts)
			if err != nil {
				return err
			}
			return s.check(cmd.Context(), args[0], args[1])
		},
	}

	addRemoteFlags(cmd, syncOpts)
	return cmd
}

// session is the state of one command invocation.
type session struct {
	root   *RootOptions
	sync   *SyncOptions
	fs     fs.Filesystem
	logger *slog.Logger
	out    *OutputFormatter
}

func newSession(cmd *cobra.Command, root *RootOptions, syncOpts *SyncOptions) (*session, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), resolveLogLevel(root.LogLevel))
	if err != nil {
		return nil, err
	}

	return &session{
		root:   root,
		sync:   syncOpts,
		fs:     fsb.NewBaseOSFS(),
		logger: logger,
		out: &OutputFormatter{
			Format:    root.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
		},
	}, nil
}

func (s *session) engine(store gpat.ObjectStore, a gpat.Archive) *gpat.Engine {
	return gpat.New(store, a,
		gpat.WithLogger(s.logger),
		gpat.WithBranch(s.sync.Branch),
		gpat.WithDryRun(s.sync.DryRun))
}

func (s *session) export(ctx context.Context, repoLoc, archiveLoc string) error {
	repo, err := s.openSource(ctx, repoLoc)
	if err != nil {
		return s.finish(nil, err)
	}

	a, err := s.openArchive(ctx, archiveLoc, !s.sync.DryRun)
	if err != nil {
		return s.finish(nil, err)
	}

	return s.finish(s.engine(repo, a).Export(ctx))
}

func (s *session) importArchive(ctx context.Context, archiveLoc, repoLoc string, reconstruct bool) error {
	a, err := s.openArchive(ctx, archiveLoc, false)
	if err != nil {
		return s.finish(nil, err)
	}

	repo, err := s.openTarget(ctx, repoLoc)
	if err != nil {
		return s.finish(nil, err)
	}

	engine := s.engine(repo, a)
	if reconstruct {
		return s.finish(engine.Reconstruct(ctx))
	}
	return s.finish(engine.Import(ctx))
}

func (s *session) check(ctx context.Context, repoLoc, archiveLoc string) error {
	repo, err := s.openSource(ctx, repoLoc)
	if err != nil {
		return s.finish(nil, err)
	}

	a, err := s.openArchive(ctx, archiveLoc, false)
	if err != nil {
		return s.finish(nil, err)
	}

	return s.finish(s.engine(repo, a).Check(ctx))
}

// openSource opens an existing repository, cloning remote locations into
// memory.
func (s *session) openSource(ctx context.Context, location string) (*git.Repo, error) {
	if auth.IsRemote(location) {
		creds := auth.Credentials{
			TokenHosts:          s.sync.TokenHosts,
			SSHKeyPath:          s.sync.SSHKey,
			InsecureSkipHostKey: s.sync.InsecureSkipHostKey,
		}.FromEnv()

		s.logger.InfoContext(ctx, "cloning remote source",
			"url", location,
			"transport", auth.Classify(location).String())

		opts := &git.Options{FS: fsb.NewInMemoryFS(), StorerCacheSize: s.root.CacheSize}
		if provider := creds.Provider(); provider != nil {
			opts.Auth = provider
		}
		return git.Clone(ctx, location, opts)
	}

	path, err := filepath.Abs(location)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid repository path")
	}
	return git.Open(ctx, &git.Options{FS: s.fs, Workdir: path, StorerCacheSize: s.root.CacheSize})
}

// openTarget opens the import destination, creating a bare repository when
// it is missing. Dry runs never create anything: a missing destination is
// stood in for by an empty in-memory repository.
func (s *session) openTarget(ctx context.Context, location string) (*git.Repo, error) {
	path, err := filepath.Abs(location)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid repository path")
	}
	opts := &git.Options{FS: s.fs, Workdir: path, StorerCacheSize: s.root.CacheSize}

	if s.sync.DryRun {
		empty, err := s.isEmptyDir(path)
		if err != nil {
			return nil, err
		}
		if empty {
			return git.Init(ctx, &git.Options{FS: fsb.NewInMemoryFS(), Bare: true})
		}
		return git.Open(ctx, opts)
	}

	repo, created, err := git.OpenOrInit(ctx, opts)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.InfoContext(ctx, "initialized bare repository", "path", path)
	}
	return repo, nil
}

// isEmptyDir reports whether path is missing or an empty directory.
func (s *session) isEmptyDir(path string) (bool, error) {
	exists, err := s.fs.Exists(path)
	if err != nil || !exists {
		return !exists, errors.Wrap(err, errors.CodeIO, "failed to stat "+path)
	}

	entries, err := s.fs.ReadDir(path)
	if err != nil {
		return false, errors.Wrap(err, errors.CodeIO, "failed to list "+path)
	}
	return len(entries) == 0, nil
}

// openArchive binds the archive at location, creating its directory only
// when create is set.
func (s *session) openArchive(ctx context.Context, location string, create bool) (*archive.Archive, error) {
	path, err := filepath.Abs(location)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid archive path")
	}

	if create {
		return archive.Open(ctx, s.fs, path)
	}
	return archive.New(s.fs, path), nil
}

// finish reports the outcome of a run.
func (s *session) finish(report *gpat.Report, err error) error {
	if err != nil {
		s.logger.Debug("run failed", "error", err)
		if outErr := s.out.Error(err); outErr != nil {
			s.logger.Error("failed to write output", "error", outErr)
		}
		return &ExitError{Code: ExitFailure, Err: err}
	}

	if err := s.out.Success(report); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}
	return nil
}
