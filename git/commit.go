// Package git provides the object store adapter used by the sync engine.
// This file contains commit creation with a fixed synthetic identity.
package git

import (
	"context"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Identity is the name and email recorded on created commits.
type Identity struct {
	// Name is the author's and committer's name.
	Name string

	// Email is the author's and committer's email address.
	Email string
}

// SyntheticIdentity is recorded on every reconstructed commit. Author data is
// not carried by patches, so a fixed identity keeps commit hashes
// reproducible.
var SyntheticIdentity = Identity{
	Name:  "gpat",
	Email: "gpat@localhost",
}

// signature returns the identity stamped at ts, in UTC.
func (id Identity) signature(ts int64) object.Signature {
	return object.Signature{
		Name:  id.Name,
		Email: id.Email,
		When:  time.Unix(ts, 0).UTC(),
	}
}

// CreateCommit writes a commit pointing at tree with the given parent
// (plumbing.ZeroHash for a root commit). Author and committer are the
// repository identity at Unix time ts; the message is empty. No reference is
// moved.
func (r *Repo) CreateCommit(ctx context.Context, tree, parent plumbing.Hash, ts int64) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	if tree.IsZero() {
		return plumbing.ZeroHash, WrapError(ErrInvalidOptions, "commit tree cannot be empty")
	}

	sig := r.options.Identity.signature(ts)
	commit := &object.Commit{
		Author:    sig,
		Committer: sig,
		TreeHash:  tree,
	}
	if !parent.IsZero() {
		commit.ParentHashes = []plumbing.Hash{parent}
	}

	obj := r.storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to encode commit")
	}

	hash, err := r.storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, ioError(err, "failed to store commit")
	}

	return hash, nil
}
