// Package git is the object store adapter behind patch sync.
//
// It wraps go-git and exposes the handful of operations needed to move a
// linear history in and out of a repository, while enforcing the use of the
// project's native filesystem abstraction. All operations work with both
// on-disk and in-memory repositories.
//
// # Basic Usage
//
// Open an existing repository, or create a bare one for import:
//
//	import (
//	    "context"
//	    billyfs "github.com/input-output-hk/catalyst-forge-libs/gpat/fs/billy"
//	    "github.com/input-output-hk/catalyst-forge-libs/gpat/git"
//	)
//
//	fs := billyfs.NewBaseOSFS()
//
//	repo, err := git.Open(ctx, &git.Options{FS: fs, Workdir: "/src/project"})
//
//	repo, created, err := git.OpenOrInit(ctx, &git.Options{FS: fs, Workdir: "/backup/project.git"})
//
// # Reading History
//
// History walks the chain reachable from HEAD, oldest first. Any merge
// commit reachable from HEAD fails the walk with ErrTopology:
//
//	iter, err := repo.History(ctx)
//	defer iter.Close()
//	for {
//	    c, err := iter.Next()
//	    if c == nil || err != nil {
//	        break
//	    }
//	    patch, err := repo.EncodeDiff(ctx, parentTree, c.Tree)
//	}
//
// # Writing History
//
// Patches are applied to an in-memory index seeded from the parent tree; the
// resulting tree is committed with a synthetic identity and the branch is
// moved once at the end:
//
//	d, err := repo.DecodeDiff(patch)
//	tree, err := repo.ApplyDiff(ctx, parentTree, d)
//	commit, err := repo.CreateCommit(ctx, tree, parent, ts)
//	branch, err := repo.SetBranch(ctx, "", commit)
//
// Neither the worktree nor the on-disk index is touched.
//
// # Remote Sources
//
// Clone fetches a single branch into any filesystem, usually an in-memory
// one, with credentials from an AuthProvider:
//
//	repo, err := git.Clone(ctx, "https://example.com/project.git", &git.Options{
//	    FS:   billyfs.NewInMemoryFS(),
//	    Auth: provider,
//	})
//
// # Error Handling
//
// Errors wrap the sentinels in this package and carry codes from the errors
// package, so callers can use errors.Is and errors.CodeOf:
//
//	if errors.Is(err, git.ErrTopology) {
//	    // history contains a merge
//	}
package git
