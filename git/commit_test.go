package git_test

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fsb "github.com/input-output-hk/catalyst-forge-libs/gpat/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
)

func newBareRepo(t *testing.T) *git.Repo {
	t.Helper()

	repo, err := git.Init(context.Background(), &git.Options{FS: fsb.NewInMemoryFS(), Bare: true})
	require.NoError(t, err)
	return repo
}

func writeFileTree(t *testing.T, repo *git.Repo, files map[string]string) plumbing.Hash {
	t.Helper()
	ctx := context.Background()

	ix, err := repo.NewIndex(ctx, plumbing.ZeroHash)
	require.NoError(t, err)
	for name, content := range files {
		_, err := ix.Add(name, filemode.Regular, []byte(content))
		require.NoError(t, err)
	}

	tree, err := ix.WriteTree(ctx)
	require.NoError(t, err)
	return tree
}

func TestCreateCommit(t *testing.T) {
	ctx := context.Background()
	repo := newBareRepo(t)
	tree := writeFileTree(t, repo, map[string]string{"a.txt": "a\n"})

	root, err := repo.CreateCommit(ctx, tree, plumbing.ZeroHash, 10)
	require.NoError(t, err)

	child, err := repo.CreateCommit(ctx, tree, root, 20)
	require.NoError(t, err)

	obj, err := repo.Underlying().CommitObject(child)
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{root}, obj.ParentHashes)
	assert.Equal(t, tree, obj.TreeHash)
	assert.Equal(t, int64(20), obj.Committer.When.Unix())
	assert.Equal(t, int64(20), obj.Author.When.Unix())
	assert.Equal(t, git.SyntheticIdentity.Name, obj.Author.Name)
	assert.Equal(t, git.SyntheticIdentity.Email, obj.Committer.Email)
	assert.Empty(t, obj.Message)

	empty, err := repo.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty, "creating commits does not move any reference")
}

func TestCreateCommitIsReproducible(t *testing.T) {
	ctx := context.Background()

	a := newBareRepo(t)
	b := newBareRepo(t)
	files := map[string]string{"x/y.txt": "y\n", "z.txt": "z\n"}

	ha, err := a.CreateCommit(ctx, writeFileTree(t, a, files), plumbing.ZeroHash, 1700000000)
	require.NoError(t, err)
	hb, err := b.CreateCommit(ctx, writeFileTree(t, b, files), plumbing.ZeroHash, 1700000000)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
}

func TestCreateCommitNegativeTime(t *testing.T) {
	ctx := context.Background()
	repo := newBareRepo(t)
	tree := writeFileTree(t, repo, nil)

	hash, err := repo.CreateCommit(ctx, tree, plumbing.ZeroHash, -86400)
	require.NoError(t, err)

	obj, err := repo.Underlying().CommitObject(hash)
	require.NoError(t, err)
	assert.Equal(t, int64(-86400), obj.Committer.When.Unix())
}

func TestCreateCommitCustomIdentity(t *testing.T) {
	ctx := context.Background()
	repo, err := git.Init(ctx, &git.Options{
		FS:       fsb.NewInMemoryFS(),
		Bare:     true,
		Identity: git.Identity{Name: "Archivist", Email: "archive@example.com"},
	})
	require.NoError(t, err)

	hash, err := repo.CreateCommit(ctx, writeFileTree(t, repo, nil), plumbing.ZeroHash, 5)
	require.NoError(t, err)

	obj, err := repo.Underlying().CommitObject(hash)
	require.NoError(t, err)
	assert.Equal(t, "Archivist", obj.Author.Name)
}

func TestCreateCommitRequiresTree(t *testing.T) {
	_, err := newBareRepo(t).CreateCommit(context.Background(), plumbing.ZeroHash, plumbing.ZeroHash, 1)
	require.ErrorIs(t, err, git.ErrInvalidOptions)
}
