// Package gittest builds commit chains for tests. Commits are made through
// go-git's own worktree, independently of the adapter's tree writer, so
// fixtures can check the adapter rather than agree with it.
package gittest

import (
	"context"
	"os"
	"path"
	"sort"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/gpat/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
)

// Chain is a non-bare in-memory repository with helpers to stage files and
// commit at chosen timestamps.
type Chain struct {
	t    *testing.T
	Repo *git.Repo
	FS   fs.Filesystem
	wt   *gogit.Worktree
}

// NewChain initialises an empty non-bare repository on a fresh memfs.
func NewChain(t *testing.T) *Chain {
	t.Helper()

	memFS := fsb.NewInMemoryFS()
	repo, err := git.Init(context.Background(), &git.Options{FS: memFS})
	require.NoError(t, err, "failed to initialize fixture repository")

	wt, err := repo.Underlying().Worktree()
	require.NoError(t, err, "fixture repository has no worktree")

	return &Chain{t: t, Repo: repo, FS: memFS, wt: wt}
}

// Write creates or replaces a regular file.
func (c *Chain) Write(name, content string) *Chain {
	return c.WriteMode(name, []byte(content), 0o644)
}

// WriteBytes creates or replaces a regular file with raw content.
func (c *Chain) WriteBytes(name string, content []byte) *Chain {
	return c.WriteMode(name, content, 0o644)
}

// WriteMode creates or replaces a file with the given permission bits;
// 0o755 produces an executable entry.
func (c *Chain) WriteMode(name string, content []byte, perm os.FileMode) *Chain {
	c.t.Helper()

	if dir := path.Dir(name); dir != "." {
		require.NoError(c.t, c.FS.MkdirAll(dir, 0o755))
	}

	exists, err := c.FS.Exists(name)
	require.NoError(c.t, err)
	if exists {
		require.NoError(c.t, c.FS.Remove(name))
	}

	f, err := c.FS.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	require.NoError(c.t, err)
	_, err = f.Write(content)
	require.NoError(c.t, err)
	require.NoError(c.t, f.Close())

	_, err = c.wt.Add(name)
	require.NoError(c.t, err, "failed to stage %s", name)
	return c
}

// Remove deletes a file from the worktree and the index.
func (c *Chain) Remove(name string) *Chain {
	c.t.Helper()

	_, err := c.wt.Remove(name)
	require.NoError(c.t, err, "failed to remove %s", name)
	return c
}

// Commit records the staged state at Unix time ts on top of HEAD.
func (c *Chain) Commit(ts int64) plumbing.Hash {
	c.t.Helper()
	return c.commit(ts)
}

// Merge records the staged state at ts with the given parents.
func (c *Chain) Merge(ts int64, parents ...plumbing.Hash) plumbing.Hash {
	c.t.Helper()
	return c.commit(ts, parents...)
}

func (c *Chain) commit(ts int64, parents ...plumbing.Hash) plumbing.Hash {
	sig := &object.Signature{
		Name:  "Fixture Author",
		Email: "author@example.com",
		When:  time.Unix(ts, 0).UTC(),
	}

	hash, err := c.wt.Commit("fixture commit", &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(c.t, err, "failed to commit at %d", ts)
	return hash
}

// Tree returns the tree hash of commit.
func (c *Chain) Tree(commit plumbing.Hash) plumbing.Hash {
	c.t.Helper()

	obj, err := c.Repo.Underlying().CommitObject(commit)
	require.NoError(c.t, err)
	return obj.TreeHash
}

// Files returns path to content for every file in tree, for comparisons.
func Files(t *testing.T, repo *git.Repo, tree plumbing.Hash) map[string]string {
	t.Helper()

	out := make(map[string]string)
	if tree.IsZero() {
		return out
	}

	obj, err := repo.Underlying().TreeObject(tree)
	require.NoError(t, err)

	require.NoError(t, obj.Files().ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		out[f.Name] = content
		return nil
	}))
	return out
}

// Timestamps walks the repository history and returns commit times, oldest
// first.
func Timestamps(t *testing.T, repo *git.Repo) []int64 {
	t.Helper()

	iter, err := repo.History(context.Background())
	require.NoError(t, err)
	defer iter.Close()

	var out []int64
	for {
		c, err := iter.Next()
		require.NoError(t, err)
		if c == nil {
			return out
		}
		out = append(out, c.Time)
	}
}

// TreeWithSubmodule returns a copy of tree base with a submodule link added
// at dir/name. Worktrees cannot stage submodules, so the tree is written
// directly.
func TreeWithSubmodule(t *testing.T, repo *git.Repo, base plumbing.Hash, link string) plumbing.Hash {
	t.Helper()

	dir, name := path.Split(link)
	dir = strings.TrimSuffix(dir, "/")
	require.NotEmpty(t, dir, "submodule link needs a parent directory")
	require.NotContains(t, dir, "/", "only one directory level is supported")

	objects := repo.Underlying().Storer
	commit := plumbing.NewHash("5555555555555555555555555555555555555555")

	sub := writeTree(t, objects, []object.TreeEntry{{Name: name, Mode: filemode.Submodule, Hash: commit}})

	root, err := repo.Underlying().TreeObject(base)
	require.NoError(t, err)

	entries := append([]object.TreeEntry{}, root.Entries...)
	entries = append(entries, object.TreeEntry{Name: dir, Mode: filemode.Dir, Hash: sub})
	sort.Sort(object.TreeEntrySorter(entries))

	return writeTree(t, objects, entries)
}

func writeTree(t *testing.T, s storer.EncodedObjectStorer, entries []object.TreeEntry) plumbing.Hash {
	t.Helper()

	obj := s.NewEncodedObject()
	require.NoError(t, (&object.Tree{Entries: entries}).Encode(obj))

	hash, err := s.SetEncodedObject(obj)
	require.NoError(t, err)
	return hash
}
