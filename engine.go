package gpat

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
)

// ObjectStore is the repository side of a run. *git.Repo implements it.
type ObjectStore interface {
	// History returns the commits reachable from HEAD, oldest first. A merge
	// anywhere in that set fails with git.ErrTopology.
	History(ctx context.Context) (*git.HistoryIter, error)

	// BranchHistory is History read from branch name. A branch that does
	// not exist yet yields HEAD's chain.
	BranchHistory(ctx context.Context, name string) (*git.HistoryIter, error)

	// ResolveBranch returns the branch SetBranch would move for name.
	ResolveBranch(ctx context.Context, name string) (string, error)

	// EncodeDiff returns the patch turning tree from into tree to.
	EncodeDiff(ctx context.Context, from, to plumbing.Hash) ([]byte, error)

	// DecodeDiff parses patch bytes.
	DecodeDiff(data []byte) (*git.Diff, error)

	// ApplyDiff applies a patch onto tree base and returns the new tree.
	ApplyDiff(ctx context.Context, base plumbing.Hash, d *git.Diff) (plumbing.Hash, error)

	// CreateCommit writes a commit of tree on parent at Unix time ts.
	CreateCommit(ctx context.Context, tree, parent plumbing.Hash, ts int64) (plumbing.Hash, error)

	// SetBranch points branch name at commit and returns the branch moved.
	SetBranch(ctx context.Context, name string, commit plumbing.Hash) (string, error)

	// IsEmpty reports whether HEAD resolves to no commit.
	IsEmpty(ctx context.Context) (bool, error)
}

// Archive is the patch side of a run. *archive.Archive implements it.
type Archive interface {
	// List returns the archived timestamps in ascending order.
	List(ctx context.Context) ([]int64, error)

	// Read returns the patch stored for ts.
	Read(ctx context.Context, ts int64) ([]byte, error)

	// Write stores a new patch for ts.
	Write(ctx context.Context, ts int64, data []byte) error
}

var _ ObjectStore = (*git.Repo)(nil)

// Engine synchronizes one object store with one archive. It is meant for a
// single invocation and is not safe for concurrent use.
type Engine struct {
	store   ObjectStore
	archive Archive
	logger  *slog.Logger
	branch  string
	dryRun  bool
}

// New returns an engine bound to store and archive.
func New(store ObjectStore, archive Archive, opts ...Option) *Engine {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		store:   store,
		archive: archive,
		logger:  logger,
		branch:  options.branch,
		dryRun:  options.dryRun,
	}
}

// run tracks one direction of work and the report it builds.
type run struct {
	direction Direction
	report    *Report
}

func (e *Engine) newRun(direction Direction) *run {
	return &run{
		direction: direction,
		report:    &Report{Direction: direction, DryRun: e.dryRun && direction != DirectionCheck},
	}
}

// fail wraps err with the point the run reached.
func (r *run) fail(phase Phase, position int, ts int64, commit plumbing.Hash, err error) error {
	return &SyncError{
		Direction: r.direction,
		Phase:     phase,
		Position:  position,
		Timestamp: ts,
		Commit:    commit,
		Err:       err,
	}
}

// load reads the whole chain and the archive listing. The chain is read
// from branch, or from HEAD when branch is empty, and before the archive so a
// merge is reported first.
func (e *Engine) load(ctx context.Context, branch string) ([]*git.Commit, []int64, error) {
	commits, err := e.readChain(ctx, branch)
	if err != nil {
		return nil, nil, err
	}

	keys, err := e.archive.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	e.logger.DebugContext(ctx, "loaded both sides",
		"commits", len(commits),
		"patches", len(keys))

	return commits, keys, nil
}

func (e *Engine) readChain(ctx context.Context, branch string) ([]*git.Commit, error) {
	var (
		iter *git.HistoryIter
		err  error
	)
	if branch == "" {
		iter, err = e.store.History(ctx)
	} else {
		iter, err = e.store.BranchHistory(ctx, branch)
	}
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	commits := make([]*git.Commit, 0, iter.Len())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, err := iter.Next()
		if err != nil {
			return nil, err
		}
		if c == nil {
			return commits, nil
		}
		commits = append(commits, c)
	}
}

// patchAt recomputes the patch of commits[i] against its predecessor.
func (e *Engine) patchAt(ctx context.Context, commits []*git.Commit, i int) ([]byte, error) {
	from := plumbing.ZeroHash
	if i > 0 {
		from = commits[i-1].Tree
	}
	return e.store.EncodeDiff(ctx, from, commits[i].Tree)
}

// validateChain requires commit times to strictly increase along the chain,
// since each commit becomes an archive entry keyed by its time.
func validateChain(commits []*git.Commit) (int, error) {
	for i := 1; i < len(commits); i++ {
		if commits[i].Time <= commits[i-1].Time {
			return i, orderError(commits[i-1], commits[i])
		}
	}
	return 0, nil
}

// verifyPatches walks the positions both sides hold, comparing timestamps
// and recomputed patch bytes.
func (e *Engine) verifyPatches(ctx context.Context, r *run, commits []*git.Commit, keys []int64) error {
	n := min(len(commits), len(keys))

	for i := 0; i < n; i++ {
		c, ts := commits[i], keys[i]

		if err := ctx.Err(); err != nil {
			return r.fail(PhaseVerify, i+1, ts, c.Hash, err)
		}

		if c.Time != ts {
			return r.fail(PhaseVerify, i+1, ts, c.Hash, mismatchError(c.Hash, c.Time, ts))
		}

		patch, err := e.patchAt(ctx, commits, i)
		if err != nil {
			return r.fail(PhaseVerify, i+1, ts, c.Hash, err)
		}

		stored, err := e.archive.Read(ctx, ts)
		if err != nil {
			return r.fail(PhaseVerify, i+1, ts, c.Hash, err)
		}

		if !bytes.Equal(patch, stored) {
			return r.fail(PhaseVerify, i+1, ts, c.Hash, driftError(c.Hash, ts))
		}

		r.report.Verified++
		e.logger.DebugContext(ctx, "patch verified",
			"position", i+1,
			"timestamp", ts,
			"commit", c.Hash.String())
	}

	return nil
}
