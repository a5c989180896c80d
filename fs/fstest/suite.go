// Package fstest provides a conformance suite for fs.Filesystem
// implementations. It checks the contract the patch archive relies on:
// directory listing that reports entry kinds, exact byte round trips,
// exclusive creation and io/fs sentinel errors.
//
// Example usage:
//
//	func TestMyProvider(t *testing.T) {
//	    fstest.TestSuite(t, func(t *testing.T) fs.Filesystem {
//	        return myprovider.New(t.TempDir())
//	    })
//	}
package fstest

import (
	"bytes"
	"errors"
	iofs "io/fs"
	"os"
	"sort"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs"
)

// TestSuite runs every conformance test. newFS must return a fresh, empty
// filesystem on each call.
func TestSuite(t *testing.T, newFS func(t *testing.T) fs.Filesystem) {
	t.Run("ReadFS", func(t *testing.T) {
		TestReadFS(t, newFS(t))
	})
	t.Run("WriteFS", func(t *testing.T) {
		TestWriteFS(t, newFS(t))
	})
}

// TestReadFS tests Stat, Exists, ReadFile and ReadDir.
func TestReadFS(t *testing.T, filesystem fs.Filesystem) {
	content := []byte("binary\x00content\n")
	if err := filesystem.MkdirAll("dir/sub", 0o755); err != nil {
		t.Fatalf("MkdirAll(dir/sub): setup failed: %v", err)
	}
	if err := filesystem.WriteFile("dir/10.patch", content, 0o644); err != nil {
		t.Fatalf("WriteFile(dir/10.patch): setup failed: %v", err)
	}

	t.Run("ReadFile", func(t *testing.T) {
		data, err := filesystem.ReadFile("dir/10.patch")
		if err != nil {
			t.Fatalf("ReadFile(%q): got error %v, want nil", "dir/10.patch", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("ReadFile(%q): got %q, want %q", "dir/10.patch", data, content)
		}
	})

	t.Run("ReadDirKinds", func(t *testing.T) {
		entries, err := filesystem.ReadDir("dir")
		if err != nil {
			t.Fatalf("ReadDir(%q): got error %v, want nil", "dir", err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		if len(entries) != 2 {
			t.Fatalf("ReadDir(%q): got %d entries, want 2", "dir", len(entries))
		}
		if entries[0].Name() != "10.patch" || !entries[0].Mode().IsRegular() {
			t.Errorf("ReadDir(%q): entry 0 = %q (%v), want regular 10.patch", "dir", entries[0].Name(), entries[0].Mode())
		}
		if entries[1].Name() != "sub" || !entries[1].IsDir() {
			t.Errorf("ReadDir(%q): entry 1 = %q (%v), want directory sub", "dir", entries[1].Name(), entries[1].Mode())
		}
	})

	t.Run("StatFile", func(t *testing.T) {
		info, err := filesystem.Stat("dir/10.patch")
		if err != nil {
			t.Fatalf("Stat(%q): got error %v, want nil", "dir/10.patch", err)
		}
		if info.Size() != int64(len(content)) {
			t.Errorf("Stat(%q): Size() = %d, want %d", "dir/10.patch", info.Size(), len(content))
		}
	})

	t.Run("Exists", func(t *testing.T) {
		for path, want := range map[string]bool{"dir": true, "dir/10.patch": true, "missing": false} {
			got, err := filesystem.Exists(path)
			if err != nil {
				t.Errorf("Exists(%q): got error %v, want nil", path, err)
				continue
			}
			if got != want {
				t.Errorf("Exists(%q): got %v, want %v", path, got, want)
			}
		}
	})

	t.Run("NotExist", func(t *testing.T) {
		if _, err := filesystem.ReadFile("missing.patch"); !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("ReadFile(%q): got error %v, want fs.ErrNotExist", "missing.patch", err)
		}
		if _, err := filesystem.ReadDir("missing"); !errors.Is(err, iofs.ErrNotExist) {
			t.Errorf("ReadDir(%q): got error %v, want fs.ErrNotExist", "missing", err)
		}
	})
}

// TestWriteFS tests exclusive creation, writes through File and Remove.
func TestWriteFS(t *testing.T, filesystem fs.Filesystem) {
	if err := filesystem.MkdirAll("out", 0o755); err != nil {
		t.Fatalf("MkdirAll(out): setup failed: %v", err)
	}

	t.Run("ExclusiveCreate", func(t *testing.T) {
		f, err := filesystem.OpenFile("out/1.patch", os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			t.Fatalf("OpenFile(%q, O_EXCL): got error %v, want nil", "out/1.patch", err)
		}
		if _, err := f.Write([]byte("first")); err != nil {
			t.Fatalf("Write(): got error %v, want nil", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}

		_, err = filesystem.OpenFile("out/1.patch", os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if !errors.Is(err, iofs.ErrExist) {
			t.Errorf("OpenFile(%q, O_EXCL) on existing file: got error %v, want fs.ErrExist", "out/1.patch", err)
		}

		data, err := filesystem.ReadFile("out/1.patch")
		if err != nil || string(data) != "first" {
			t.Errorf("ReadFile(%q): got %q, %v, want %q", "out/1.patch", data, err, "first")
		}
	})

	t.Run("CreateAndRemove", func(t *testing.T) {
		f, err := filesystem.Create("out/2.patch")
		if err != nil {
			t.Fatalf("Create(%q): got error %v, want nil", "out/2.patch", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close(): got error %v, want nil", err)
		}
		if err := filesystem.Remove("out/2.patch"); err != nil {
			t.Fatalf("Remove(%q): got error %v, want nil", "out/2.patch", err)
		}
		if ok, _ := filesystem.Exists("out/2.patch"); ok {
			t.Errorf("Exists(%q) after Remove: got true, want false", "out/2.patch")
		}
	})
}
