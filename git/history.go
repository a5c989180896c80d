// Package git provides the object store adapter used by the sync engine.
// This file contains the history reader: a linear, oldest-first commit walk.
package git

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// Commit is the subset of a commit the sync engine reasons about.
type Commit struct {
	// Hash identifies the commit.
	Hash plumbing.Hash

	// Time is the committer time in Unix seconds.
	Time int64

	// Parents holds zero or one parent hash.
	Parents []plumbing.Hash

	// Tree is the snapshot the commit points to.
	Tree plumbing.Hash
}

// Parent returns the parent hash, or plumbing.ZeroHash for a root commit.
func (c *Commit) Parent() plumbing.Hash {
	if len(c.Parents) == 0 {
		return plumbing.ZeroHash
	}
	return c.Parents[0]
}

// HistoryIter yields the commits of a linear chain, oldest first.
// It is finite and cannot be restarted.
type HistoryIter struct {
	repo   *Repo
	hashes []plumbing.Hash
	pos    int
}

// Len returns the total number of commits in the chain.
func (it *HistoryIter) Len() int {
	return len(it.hashes)
}

// Next returns the next commit in the iteration.
// Returns nil when iteration is complete.
func (it *HistoryIter) Next() (*Commit, error) {
	if it.repo == nil || it.pos >= len(it.hashes) {
		return nil, nil
	}

	hash := it.hashes[it.pos]
	c, err := it.repo.repo.CommitObject(hash)
	if err != nil {
		return nil, WrapErrorf(err, "failed to load commit %s", hash)
	}
	it.pos++

	return toCommit(c), nil
}

// Close releases the iterator. Next returns nil afterwards.
func (it *HistoryIter) Close() {
	it.repo = nil
	it.hashes = nil
}

// History returns the chain reachable from HEAD, oldest first.
//
// Before anything is yielded every reachable commit is visited once; a commit
// with two or more parents fails the whole walk with ErrTopology. An unborn
// HEAD yields an empty iterator.
//
// Context timeout/cancellation is honored during the linearity pass.
func (r *Repo) History(ctx context.Context) (*HistoryIter, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return &HistoryIter{repo: r}, nil
	}
	if err != nil {
		return nil, WrapError(err, "failed to resolve HEAD")
	}

	return r.historyFrom(ctx, head.Hash())
}

// BranchHistory returns the chain of branch name, oldest first, with the
// same checks as History. A branch that does not exist yet yields HEAD's
// chain, since that is where the branch would be created from.
func (r *Repo) BranchHistory(ctx context.Context, name string) (*HistoryIter, error) {
	tip, err := r.Branch(ctx, name)
	if errors.Is(err, ErrBranchMissing) {
		return r.History(ctx)
	}
	if err != nil {
		return nil, err
	}

	return r.historyFrom(ctx, tip)
}

func (r *Repo) historyFrom(ctx context.Context, hash plumbing.Hash) (*HistoryIter, error) {
	tip, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, WrapErrorf(err, "failed to load commit %s", hash)
	}

	if err := checkLinear(ctx, tip); err != nil {
		return nil, err
	}

	var hashes []plumbing.Hash
	for c := tip; ; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hashes = append(hashes, c.Hash)
		if c.NumParents() == 0 {
			break
		}

		c, err = c.Parent(0)
		if err != nil {
			return nil, WrapErrorf(err, "failed to load parent of %s", hashes[len(hashes)-1])
		}
	}

	for i, j := 0, len(hashes)-1; i < j; i, j = i+1, j-1 {
		hashes[i], hashes[j] = hashes[j], hashes[i]
	}

	return &HistoryIter{repo: r, hashes: hashes}, nil
}

// checkLinear visits every commit reachable from tip and fails on the first
// one with more than one parent.
func checkLinear(ctx context.Context, tip *object.Commit) error {
	iter := object.NewCommitPreorderIter(tip, nil, nil)
	defer iter.Close()

	return iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n := c.NumParents(); n >= 2 {
			return topologyError(c.Hash, n)
		}
		return nil
	})
}

func toCommit(c *object.Commit) *Commit {
	parents := make([]plumbing.Hash, len(c.ParentHashes))
	copy(parents, c.ParentHashes)

	return &Commit{
		Hash:    c.Hash,
		Time:    c.Committer.When.Unix(),
		Parents: parents,
		Tree:    c.TreeHash,
	}
}
