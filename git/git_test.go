package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	fsb "github.com/input-output-hk/catalyst-forge-libs/gpat/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git/gittest"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    *git.Options
		wantErr bool
	}{
		{name: "nil options", opts: nil, wantErr: true},
		{name: "missing FS", opts: &git.Options{}, wantErr: true},
		{name: "negative cache", opts: &git.Options{FS: fsb.NewInMemoryFS(), StorerCacheSize: -1}, wantErr: true},
		{name: "valid", opts: &git.Options{FS: fsb.NewInMemoryFS()}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, git.ErrInvalidOptions)
				assert.Equal(t, errors.CodeInvalidConfig, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestInitBare(t *testing.T) {
	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	repo, err := git.Init(ctx, &git.Options{FS: memFS, Workdir: "history.git", Bare: true})
	require.NoError(t, err)
	assert.True(t, repo.Bare())

	exists, err := memFS.Exists("history.git/HEAD")
	require.NoError(t, err)
	assert.True(t, exists, "bare layout keeps HEAD at the repository root")

	empty, err := repo.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		_, err := git.Open(ctx, &git.Options{FS: fsb.NewInMemoryFS(), Workdir: "absent"})
		require.ErrorIs(t, err, git.ErrRepositoryMissing)
		assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
	})

	t.Run("empty directory", func(t *testing.T) {
		memFS := fsb.NewInMemoryFS()
		require.NoError(t, memFS.MkdirAll("empty", 0o755))

		_, err := git.Open(ctx, &git.Options{FS: memFS, Workdir: "empty"})
		require.ErrorIs(t, err, git.ErrRepositoryMissing)
	})

	t.Run("directory without repository", func(t *testing.T) {
		memFS := fsb.NewInMemoryFS()
		require.NoError(t, memFS.WriteFile("plain/readme.txt", []byte("hi"), 0o644))

		_, err := git.Open(ctx, &git.Options{FS: memFS, Workdir: "plain"})
		require.ErrorIs(t, err, git.ErrRepositoryMissing)
	})

	t.Run("detects bare layout", func(t *testing.T) {
		memFS := fsb.NewInMemoryFS()
		_, err := git.Init(ctx, &git.Options{FS: memFS, Workdir: "repo.git", Bare: true})
		require.NoError(t, err)

		repo, err := git.Open(ctx, &git.Options{FS: memFS, Workdir: "repo.git"})
		require.NoError(t, err)
		assert.True(t, repo.Bare())
	})

	t.Run("detects working layout", func(t *testing.T) {
		chain := gittest.NewChain(t)
		chain.Write("a.txt", "a\n").Commit(10)

		repo, err := git.Open(ctx, &git.Options{FS: chain.FS})
		require.NoError(t, err)
		assert.False(t, repo.Bare())

		empty, err := repo.IsEmpty(ctx)
		require.NoError(t, err)
		assert.False(t, empty)
	})

	t.Run("bare only", func(t *testing.T) {
		chain := gittest.NewChain(t)
		chain.Write("a.txt", "a\n").Commit(10)

		_, err := git.Open(ctx, &git.Options{FS: chain.FS, Bare: true})
		require.ErrorIs(t, err, git.ErrRepositoryMissing)
	})
}

func TestOpenOrInit(t *testing.T) {
	ctx := context.Background()
	memFS := fsb.NewInMemoryFS()

	repo, created, err := git.OpenOrInit(ctx, &git.Options{FS: memFS, Workdir: "out.git"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, repo.Bare(), "new import targets are bare")

	again, created, err := git.OpenOrInit(ctx, &git.Options{FS: memFS, Workdir: "out.git"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.True(t, again.Bare())
}

func TestOpenOrInitRejectsForeignDirectory(t *testing.T) {
	memFS := fsb.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile("out/notes.txt", []byte("x"), 0o644))

	_, created, err := git.OpenOrInit(context.Background(), &git.Options{FS: memFS, Workdir: "out"})
	require.ErrorIs(t, err, git.ErrRepositoryMissing)
	assert.False(t, created)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := git.Init(ctx, &git.Options{FS: fsb.NewInMemoryFS()})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errors.CodeCanceled, errors.CodeOf(err))
}

func TestCloneEmptyURL(t *testing.T) {
	_, err := git.Clone(context.Background(), "", &git.Options{FS: fsb.NewInMemoryFS()})
	require.ErrorIs(t, err, git.ErrInvalidOptions)
}
