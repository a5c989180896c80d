package gpat

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
)

// Import replays the archive onto the chain.
//
// Positions the chain already holds are matched by timestamp only: a commit
// whose time equals the archive key is taken as already applied and its
// content is not compared. Use Check to compare content. Entries past the
// end of the chain are decoded, applied onto the previous tree and committed
// with the synthetic identity at the entry's timestamp. A chain holding
// commits past the end of the archive fails with ErrChainAheadOfArchive.
//
// The chain is read from the branch the import moves: the configured one, or
// HEAD's branch, or git.DefaultBranch when HEAD is detached. A branch that
// does not exist yet starts from HEAD's chain. When at least one commit was
// created, that branch is moved to the last one. Neither the worktree nor the
// on-disk index is touched.
func (e *Engine) Import(ctx context.Context) (*Report, error) {
	r := e.newRun(DirectionImport)

	branch, err := e.store.ResolveBranch(ctx, e.branch)
	if err != nil {
		return nil, r.fail(PhaseInit, 0, 0, plumbing.ZeroHash, err)
	}

	commits, keys, err := e.load(ctx, branch)
	if err != nil {
		return nil, r.fail(PhaseInit, 0, 0, plumbing.ZeroHash, err)
	}

	n := min(len(commits), len(keys))
	for i := 0; i < n; i++ {
		c, ts := commits[i], keys[i]
		if c.Time != ts {
			return nil, r.fail(PhaseVerify, i+1, ts, c.Hash, mismatchError(c.Hash, c.Time, ts))
		}

		r.report.Skipped++
		e.logger.DebugContext(ctx, "already applied",
			"position", i+1,
			"timestamp", ts,
			"commit", c.Hash.String())
	}

	if len(commits) > len(keys) {
		pos := len(keys)
		c := commits[pos]
		return nil, r.fail(PhaseVerify, pos+1, c.Time, c.Hash,
			aheadError(ErrChainAheadOfArchive, errors.CodeChainAhead, len(commits)-pos, c.Time))
	}

	parent, tree := plumbing.ZeroHash, plumbing.ZeroHash
	if n > 0 {
		parent, tree = commits[n-1].Hash, commits[n-1].Tree
	}

	for i := n; i < len(keys); i++ {
		ts := keys[i]

		if err := ctx.Err(); err != nil {
			return nil, r.fail(PhaseExtend, i+1, ts, plumbing.ZeroHash, err)
		}

		hash, err := e.replay(ctx, ts, parent, &tree)
		if err != nil {
			return nil, r.fail(PhaseExtend, i+1, ts, plumbing.ZeroHash, err)
		}

		parent = hash
		r.report.Committed++
		e.logger.InfoContext(ctx, "patch imported",
			"position", i+1,
			"timestamp", ts,
			"commit", hash.String(),
			"dry_run", e.dryRun)
	}

	if r.report.Committed == 0 {
		e.logger.InfoContext(ctx, "nothing to update", "skipped", r.report.Skipped)
		return r.report, nil
	}

	if e.dryRun {
		return r.report, nil
	}

	branch, err = e.store.SetBranch(ctx, branch, parent)
	if err != nil {
		return nil, r.fail(PhaseFinalize, 0, 0, parent, err)
	}

	r.report.Branch = branch
	r.report.setHead(parent)
	e.logger.InfoContext(ctx, "branch updated",
		"branch", branch,
		"commit", parent.String())

	return r.report, nil
}

// replay turns the archive entry for ts into a commit on parent, advancing
// tree to the tree it wrote. In dry-run mode the entry is only decoded and
// nothing is stored.
func (e *Engine) replay(ctx context.Context, ts int64, parent plumbing.Hash, tree *plumbing.Hash) (plumbing.Hash, error) {
	data, err := e.archive.Read(ctx, ts)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	d, err := e.store.DecodeDiff(data)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	e.logger.DebugContext(ctx, "patch decoded",
		"timestamp", ts,
		"files", d.Len(),
		"paths", d.Paths())

	if e.dryRun {
		return plumbing.ZeroHash, nil
	}

	next, err := e.store.ApplyDiff(ctx, *tree, d)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	hash, err := e.store.CreateCommit(ctx, next, parent, ts)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	*tree = next
	return hash, nil
}

// Reconstruct imports the archive into a store that must not have commits
// yet, failing with ErrNotEmpty otherwise.
func (e *Engine) Reconstruct(ctx context.Context) (*Report, error) {
	r := e.newRun(DirectionImport)

	empty, err := e.store.IsEmpty(ctx)
	if err != nil {
		return nil, r.fail(PhaseInit, 0, 0, plumbing.ZeroHash, err)
	}
	if !empty {
		return nil, r.fail(PhaseInit, 0, 0, plumbing.ZeroHash, git.ErrNotEmpty)
	}

	return e.Import(ctx)
}
