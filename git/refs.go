// Package git provides the object store adapter used by the sync engine.
// This file contains branch operations.
package git

import (
	"context"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// DefaultBranch is the label moved after an import when HEAD does not name a
// branch.
const DefaultBranch = "master"

// HeadBranch returns the short name of the branch HEAD points at, born or
// not. It returns "" when HEAD is detached.
func (r *Repo) HeadBranch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", WrapError(err, "failed to read HEAD")
	}

	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return "", nil
	}
	return head.Target().Short(), nil
}

// ResolveBranch returns the branch an import moves for name. An empty name
// selects the branch HEAD points at, falling back to DefaultBranch when HEAD
// is detached.
func (r *Repo) ResolveBranch(ctx context.Context, name string) (string, error) {
	if name == "" {
		headBranch, err := r.HeadBranch(ctx)
		if err != nil {
			return "", err
		}
		name = headBranch
	}
	if name == "" {
		name = DefaultBranch
	}

	if strings.HasPrefix(name, "refs/") || plumbing.NewBranchReferenceName(name).Validate() != nil {
		return "", WrapErrorf(ErrInvalidOptions, "invalid branch name %q", name)
	}
	return name, nil
}

// SetBranch creates or moves branch name to commit and returns the branch it
// moved. Name is resolved with ResolveBranch. When HEAD points at an unborn
// branch other than name, HEAD is re-pointed at name so the new history is
// what HEAD resolves to.
func (r *Repo) SetBranch(ctx context.Context, name string, commit plumbing.Hash) (string, error) {
	if commit.IsZero() {
		return "", WrapError(ErrInvalidOptions, "branch target cannot be empty")
	}

	name, err := r.ResolveBranch(ctx, name)
	if err != nil {
		return "", err
	}
	refName := plumbing.NewBranchReferenceName(name)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := plumbing.NewHashReference(refName, commit)
	if err := r.repo.Storer.SetReference(ref); err != nil {
		return "", ioError(err, "failed to set branch "+name)
	}

	if err := r.adoptUnbornHead(ref.Name()); err != nil {
		return "", err
	}

	return name, nil
}

// Branch resolves branch name to the commit it points at.
func (r *Repo) Branch(ctx context.Context, name string) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, WrapErrorf(ErrBranchMissing, "branch %q", name)
	}
	if err != nil {
		return plumbing.ZeroHash, WrapErrorf(err, "failed to resolve branch %q", name)
	}
	return ref.Hash(), nil
}

// adoptUnbornHead points HEAD at branch when HEAD currently points at a
// branch that does not exist.
func (r *Repo) adoptUnbornHead(branch plumbing.ReferenceName) error {
	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return WrapError(err, "failed to read HEAD")
	}

	if head.Type() != plumbing.SymbolicReference || head.Target() == branch {
		return nil
	}

	_, err = r.repo.Storer.Reference(head.Target())
	if err == nil {
		return nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return WrapError(err, "failed to resolve HEAD target")
	}

	if err := r.repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return ioError(err, "failed to update HEAD")
	}
	return nil
}
