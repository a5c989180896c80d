// Package git provides the object store adapter used by the sync engine.
// It exposes the handful of repository operations a patch archive needs while
// operating exclusively through the project's native filesystem abstraction.
package git

import (
	"context"
	"fmt"
	"time"

	gobilly "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = fsbridge.DefaultCacheSize

	// DefaultWorkdir is the default repository directory.
	DefaultWorkdir = "."

	// DefaultCloneTimeout bounds a remote clone when the context has no deadline.
	DefaultCloneTimeout = 10 * time.Minute
)

// Options configures repository discovery/creation and performance.
type Options struct {
	// FS is the REQUIRED native filesystem root (OS or in-memory).
	// All repository state lives within this filesystem.
	FS fs.Filesystem

	// Workdir is the path within FS of the repository.
	// Defaults to "." (the root of FS).
	Workdir string

	// Bare selects a bare layout (objects directly in Workdir).
	// Open treats false as "detect": a working layout is tried first, then bare.
	Bare bool

	// StorerCacheSize sets the LRU objects cache size in KiB.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int

	// Identity is the signature used for commits created by the adapter.
	// Defaults to SyntheticIdentity.
	Identity Identity

	// Auth is an optional provider that resolves per-URL AuthMethod for Clone.
	// If nil, anonymous access is used.
	Auth AuthProvider
}

// Validate checks that the Options are properly configured.
// It returns an error if required fields are missing or invalid.
func (o *Options) Validate() error {
	if o == nil {
		return WrapError(ErrInvalidOptions, "options are required")
	}

	if o.FS == nil {
		return WrapError(ErrInvalidOptions, "FS is required")
	}

	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidOptions, "StorerCacheSize cannot be negative")
	}

	return nil
}

// applyDefaults sets default values for any unset fields in Options.
func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}

	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}

	if o.Identity.Name == "" && o.Identity.Email == "" {
		o.Identity = SyntheticIdentity
	}
}

// AuthProvider resolves authentication methods for remote sources.
type AuthProvider interface {
	// Method returns the appropriate transport.AuthMethod for the given remote URL.
	// Returns nil if no authentication is needed/available for this URL.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// Repo is an opened repository. It wraps a go-git Repository and its object
// storage; the worktree of a non-bare repository is never touched.
type Repo struct {
	repo    *git.Repository
	storer  storage.Storer
	fs      fs.Filesystem
	options Options
}

// layout is a resolved storage location for one repository.
type layout struct {
	storage  storage.Storer
	worktree gobilly.Filesystem
}

// resolveLayout scopes opts.FS to the repository and builds object storage for
// the requested layout.
func resolveLayout(opts *Options, bare bool) (*layout, error) {
	scoped, err := fsbridge.Scope(opts.FS, opts.Workdir)
	if err != nil {
		return nil, WrapErrorf(err, "failed to scope workdir %q", opts.Workdir)
	}

	if bare {
		return &layout{storage: fsbridge.NewStorage(scoped, opts.StorerCacheSize)}, nil
	}

	dotGit, err := scoped.Chroot(git.GitDirName)
	if err != nil {
		return nil, WrapErrorf(err, "failed to access %s directory", git.GitDirName)
	}

	return &layout{
		storage:  fsbridge.NewStorage(dotGit, opts.StorerCacheSize),
		worktree: scoped,
	}, nil
}

func newRepo(repo *git.Repository, l *layout, opts *Options) *Repo {
	return &Repo{
		repo:    repo,
		storer:  l.storage,
		fs:      opts.FS,
		options: *opts,
	}
}

// Init creates a new repository at opts.Workdir. New repositories created for
// import are bare; a working layout is created when opts.Bare is false.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opts.applyDefaults()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := opts.FS.MkdirAll(opts.Workdir, 0o755); err != nil {
		return nil, ioError(err, fmt.Sprintf("failed to create %s", opts.Workdir))
	}

	l, err := resolveLayout(opts, opts.Bare)
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(l.storage, l.worktree)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}

	return newRepo(repo, l, opts), nil
}

// Open opens an existing repository at opts.Workdir. With opts.Bare set only
// the bare layout is accepted; otherwise a working layout is tried first and
// a bare one second. A missing or empty directory yields ErrRepositoryMissing.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opts.applyDefaults()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	empty, err := dirEmpty(opts.FS, opts.Workdir)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, WrapErrorf(ErrRepositoryMissing, "%s is missing or empty", opts.Workdir)
	}

	layouts := []bool{false, true}
	if opts.Bare {
		layouts = []bool{true}
	}

	var lastErr error
	for _, bare := range layouts {
		l, err := resolveLayout(opts, bare)
		if err != nil {
			return nil, err
		}

		repo, err := git.Open(l.storage, l.worktree)
		if err == nil {
			o := *opts
			o.Bare = bare
			return newRepo(repo, l, &o), nil
		}
		lastErr = err
	}

	if errors.Is(lastErr, git.ErrRepositoryNotExists) {
		return nil, WrapErrorf(ErrRepositoryMissing, "no repository at %s", opts.Workdir)
	}
	return nil, WrapErrorf(lastErr, "failed to open repository at %s", opts.Workdir)
}

// OpenOrInit opens the repository at opts.Workdir, or initialises a bare one
// when the directory is missing or empty. The boolean reports creation.
func OpenOrInit(ctx context.Context, opts *Options) (*Repo, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	opts.applyDefaults()

	empty, err := dirEmpty(opts.FS, opts.Workdir)
	if err != nil {
		return nil, false, err
	}

	if !empty {
		r, err := Open(ctx, opts)
		return r, false, err
	}

	o := *opts
	o.Bare = true
	r, err := Init(ctx, &o)
	return r, err == nil, err
}

// Clone fetches remoteURL into a bare repository on opts.FS, usually an
// in-memory filesystem, and returns it. Only the history reachable from the
// remote HEAD is fetched.
func Clone(ctx context.Context, remoteURL string, opts *Options) (*Repo, error) {
	if remoteURL == "" {
		return nil, WrapError(ErrInvalidOptions, "remote URL cannot be empty")
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opts.applyDefaults()
	opts.Bare = true

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCloneTimeout)
		defer cancel()
	}

	l, err := resolveLayout(opts, true)
	if err != nil {
		return nil, err
	}

	cloneOpts := &git.CloneOptions{
		URL:          remoteURL,
		SingleBranch: true,
		Tags:         git.NoTags,
	}

	if opts.Auth != nil {
		method, authErr := opts.Auth.Method(remoteURL)
		if authErr != nil {
			return nil, WrapError(authErr, "failed to get authentication method")
		}
		cloneOpts.Auth = method
	}

	repo, err := git.CloneContext(ctx, l.storage, nil, cloneOpts)
	if err != nil {
		// An empty remote still leaves an initialised repository behind.
		if errors.Is(err, transport.ErrEmptyRemoteRepository) && repo != nil {
			return newRepo(repo, l, opts), nil
		}
		return nil, errors.Wrap(err, errors.CodeNetwork, fmt.Sprintf("failed to clone %s", remoteURL))
	}

	return newRepo(repo, l, opts), nil
}

// IsEmpty reports whether the repository has no commits reachable from HEAD.
func (r *Repo) IsEmpty(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return true, nil
	}
	if err != nil {
		return false, WrapError(err, "failed to resolve HEAD")
	}
	return false, nil
}

// Bare reports whether the repository uses the bare layout.
func (r *Repo) Bare() bool {
	return r.options.Bare
}

// Underlying returns the wrapped go-git repository for advanced use.
func (r *Repo) Underlying() *git.Repository {
	return r.repo
}

// dirEmpty reports whether dir is missing or has no entries.
func dirEmpty(fsys fs.Filesystem, dir string) (bool, error) {
	exists, err := fsys.Exists(dir)
	if err != nil {
		return false, ioError(err, fmt.Sprintf("failed to stat %s", dir))
	}
	if !exists {
		return true, nil
	}

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return false, ioError(err, fmt.Sprintf("failed to list %s", dir))
	}
	return len(entries) == 0, nil
}
