// Package git provides the object store adapter used by the sync engine.
// This file contains the diff codec: tree pair to patch bytes and back.
package git

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/git/internal/diff"
)

// Diff is a decoded patch ready to be applied to a staging index.
type Diff struct {
	files []*gitdiff.File
}

// Len returns the number of file sections in the diff.
func (d *Diff) Len() int {
	return len(d.files)
}

// Paths returns the paths touched by the diff, in patch order.
func (d *Diff) Paths() []string {
	paths := make([]string, 0, len(d.files))
	for _, f := range d.files {
		paths = append(paths, filePath(f))
	}
	return paths
}

// filePatches adapts a single go-git file patch to fdiff.Patch.
type filePatches []fdiff.FilePatch

func (p filePatches) FilePatches() []fdiff.FilePatch { return p }
func (p filePatches) Message() string                { return "" }

// hunksOnly hides the file pair of a patch so the unified encoder writes its
// hunks without a header.
type hunksOnly struct {
	fdiff.FilePatch
}

func (hunksOnly) Files() (from, to fdiff.File) { return nil, nil }

// EncodeDiff returns the full patch turning tree from into tree to. A zero
// from denotes the empty tree. Text changes use go-git's unified encoder;
// binary changes and hunkless changes are written as git file sections with
// literal content, so the patch alone rebuilds to. Sections for paths git
// would quote get their header from go-gitdiff.
//
// Context timeout/cancellation is honored between files.
func (r *Repo) EncodeDiff(ctx context.Context, from, to plumbing.Hash) ([]byte, error) {
	fromTree, err := r.treeOrEmpty(from)
	if err != nil {
		return nil, err
	}

	toTree, err := r.treeOrEmpty(to)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, &object.DiffTreeOptions{})
	if err != nil {
		return nil, WrapErrorf(err, "failed to diff %s..%s", from, to)
	}

	var buf bytes.Buffer
	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := encodeChange(ctx, &buf, change); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// DecodeDiff parses patch bytes produced by EncodeDiff.
func (r *Repo) DecodeDiff(data []byte) (*Diff, error) {
	return DecodeDiff(data)
}

// DecodeDiff parses patch bytes produced by EncodeDiff. Binary sections
// without content cannot be applied and are rejected.
func DecodeDiff(data []byte) (*Diff, error) {
	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, WrapError(ErrCorruptPatch, err.Error())
	}

	for _, f := range files {
		if f.IsBinary && f.BinaryFragment == nil && !f.IsDelete {
			return nil, WrapErrorf(ErrCorruptPatch, "binary content for %s is missing", filePath(f))
		}
		if f.IsCopy {
			return nil, WrapErrorf(ErrCorruptPatch, "copy of %s is not supported", filePath(f))
		}
	}

	return &Diff{files: files}, nil
}

// Summarize reports the number of file sections in encoded patch bytes and
// whether any of them carries binary content.
func Summarize(data []byte) (files int, binary bool) {
	return diff.CountFileHeaders(data), diff.ContainsBinaryFiles(string(data))
}

func encodeChange(ctx context.Context, w io.Writer, change *object.Change) error {
	if change.From.TreeEntry.Mode == filemode.Submodule || change.To.TreeEntry.Mode == filemode.Submodule {
		name := change.To.Name
		if name == "" {
			name = change.From.Name
		}
		return WrapErrorf(ErrUnsupportedEntry, "submodule %s", name)
	}

	from, to, err := change.Files()
	if err != nil {
		return WrapError(err, "failed to load changed files")
	}

	patch, err := change.PatchContext(ctx)
	if err != nil {
		return WrapError(err, "failed to compute patch")
	}

	fps := patch.FilePatches()
	if len(fps) != 1 {
		return fmt.Errorf("expected one file patch, got %d", len(fps))
	}

	if len(fps[0].Chunks()) > 0 {
		if !diff.NeedsQuoting(change.From.Name) && !diff.NeedsQuoting(change.To.Name) {
			return fdiff.NewUnifiedEncoder(w, fdiff.DefaultContextLines).Encode(filePatches(fps))
		}

		var hunks bytes.Buffer
		if err := fdiff.NewUnifiedEncoder(&hunks, fdiff.DefaultContextLines).Encode(filePatches{hunksOnly{fps[0]}}); err != nil {
			return err
		}
		return diff.WriteText(w, side(from, change.From.Name), side(to, change.To.Name), hunks.Bytes())
	}

	binary, err := anyBinary(from, to)
	if err != nil {
		return err
	}

	var content []byte
	if binary && to != nil {
		if content, err = blobBytes(to); err != nil {
			return err
		}
	}

	return diff.WriteStanza(w, side(from, change.From.Name), side(to, change.To.Name), binary, content)
}

func anyBinary(files ...*object.File) (bool, error) {
	for _, f := range files {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return false, WrapErrorf(err, "failed to inspect %s", f.Name)
		}
		if bin {
			return true, nil
		}
	}
	return false, nil
}

func blobBytes(f *object.File) ([]byte, error) {
	rd, err := f.Reader()
	if err != nil {
		return nil, WrapErrorf(err, "failed to read %s", f.Name)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, WrapErrorf(err, "failed to read %s", f.Name)
	}
	return data, nil
}

// side describes f at path; object.File only carries the base name.
func side(f *object.File, path string) *diff.Side {
	if f == nil {
		return nil
	}
	return &diff.Side{Path: path, Mode: f.Mode, Hash: f.Hash}
}

// treeOrEmpty loads a tree; the zero hash yields nil, the empty tree.
func (r *Repo) treeOrEmpty(hash plumbing.Hash) (*object.Tree, error) {
	if hash.IsZero() {
		return nil, nil
	}

	tree, err := r.repo.TreeObject(hash)
	if err != nil {
		return nil, WrapErrorf(err, "failed to load tree %s", hash)
	}
	return tree, nil
}

func filePath(f *gitdiff.File) string {
	if f.IsDelete || f.NewName == "" {
		return f.OldName
	}
	return f.NewName
}
