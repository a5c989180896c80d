// Package fs defines the filesystem abstraction every gpat component reads
// and writes through. Patch archives and repositories never touch the os
// package directly, so the same code runs against the real disk and against
// in-memory filesystems in tests.
package fs

import "os"

// Filesystem is the set of operations gpat needs from a filesystem root.
// Errors must stay matchable against io/fs sentinels (fs.ErrNotExist,
// fs.ErrExist) through errors.Is.
type Filesystem interface {
	Create(name string) (File, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	Open(name string) (File, error)
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	ReadDir(dirname string) ([]os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	Remove(name string) error
	Stat(name string) (os.FileInfo, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
}
