package fsbridge

import (
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs/billy"
)

func TestToBillyFilesystem(t *testing.T) {
	t.Run("success with billy.FS", func(t *testing.T) {
		memFS := memfs.New()

		result, err := ToBillyFilesystem(billy.NewFS(memFS))
		require.NoError(t, err)
		assert.Equal(t, memFS, result)
	})

	t.Run("error with non-billy.FS", func(t *testing.T) {
		var mockFS fs.Filesystem = &mockFilesystem{}

		result, err := ToBillyFilesystem(mockFS)
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "filesystem must be a billy.FS")
	})
}

func TestScope(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile("repo.git/HEAD", []byte("ref: refs/heads/master\n"), 0o644))

	scoped, err := Scope(memFS, "repo.git")
	require.NoError(t, err)

	_, err = scoped.Stat("HEAD")
	assert.NoError(t, err)

	root, err := Scope(memFS, ".")
	require.NoError(t, err)
	assert.Equal(t, memFS.Raw(), root)
}

func TestNewStorage(t *testing.T) {
	s := NewStorage(memfs.New(), 0)
	require.NotNil(t, s)

	// A fresh storage has no HEAD yet.
	_, err := s.Reference(plumbing.HEAD)
	assert.ErrorIs(t, err, plumbing.ErrReferenceNotFound)
}

// mockFilesystem satisfies fs.Filesystem but is not a billy.FS.
type mockFilesystem struct{}

//nolint:ireturn // tests can return interfaces for mocks
func (m *mockFilesystem) Create(name string) (fs.File, error) { return nil, nil }

//nolint:ireturn // tests can return interfaces for mocks
func (m *mockFilesystem) Open(name string) (fs.File, error) { return nil, nil }

//nolint:ireturn // tests can return interfaces for mocks
func (m *mockFilesystem) OpenFile(name string, flag int, perm os.FileMode) (fs.File, error) {
	return nil, nil
}
func (m *mockFilesystem) Exists(path string) (bool, error)                           { return false, nil }
func (m *mockFilesystem) MkdirAll(path string, perm os.FileMode) error               { return nil }
func (m *mockFilesystem) ReadDir(dirname string) ([]os.FileInfo, error)              { return nil, nil }
func (m *mockFilesystem) ReadFile(name string) ([]byte, error)                       { return nil, nil }
func (m *mockFilesystem) WriteFile(name string, data []byte, perm os.FileMode) error { return nil }
func (m *mockFilesystem) Stat(name string) (os.FileInfo, error)                      { return nil, nil }
func (m *mockFilesystem) Remove(name string) error                                   { return nil }
