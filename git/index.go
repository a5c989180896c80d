// Package git provides the object store adapter used by the sync engine.
// This file contains the in-memory staging index patches are applied to.
package git

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Index is an in-memory staging index anchored at a base tree. It never
// touches the repository's on-disk index or worktree.
type Index struct {
	repo    *Repo
	idx     *index.Index
	entries map[string]*index.Entry
}

// NewIndex returns a staging index holding every file of tree base. A zero
// base yields an empty index.
func (r *Repo) NewIndex(ctx context.Context, base plumbing.Hash) (*Index, error) {
	ix := &Index{
		repo:    r,
		idx:     &index.Index{Version: 2},
		entries: make(map[string]*index.Entry),
	}

	tree, err := r.treeOrEmpty(base)
	if err != nil || tree == nil {
		return ix, err
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, WrapErrorf(err, "failed to walk tree %s", base)
		}

		switch entry.Mode {
		case filemode.Dir:
			continue
		case filemode.Submodule:
			return nil, WrapErrorf(ErrUnsupportedEntry, "submodule %s", name)
		}

		e := ix.idx.Add(name)
		e.Hash = entry.Hash
		e.Mode = entry.Mode
		ix.entries[name] = e
	}

	return ix, nil
}

// Len returns the number of staged files.
func (ix *Index) Len() int {
	return len(ix.idx.Entries)
}

// Read returns the content and mode of a staged file.
func (ix *Index) Read(name string) ([]byte, filemode.FileMode, error) {
	e, ok := ix.entries[name]
	if !ok {
		return nil, filemode.Empty, WrapErrorf(ErrApplyFailed, "%s is not staged", name)
	}

	blob, err := object.GetBlob(ix.repo.storer, e.Hash)
	if err != nil {
		return nil, filemode.Empty, WrapErrorf(err, "failed to load blob for %s", name)
	}

	rd, err := blob.Reader()
	if err != nil {
		return nil, filemode.Empty, WrapErrorf(err, "failed to read blob for %s", name)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, filemode.Empty, WrapErrorf(err, "failed to read blob for %s", name)
	}
	return data, e.Mode, nil
}

// Add stores content as a blob and stages it at name with mode, replacing
// any existing entry.
func (ix *Index) Add(name string, mode filemode.FileMode, content []byte) (plumbing.Hash, error) {
	if err := validPath(name); err != nil {
		return plumbing.ZeroHash, err
	}

	switch mode {
	case filemode.Regular, filemode.Deprecated, filemode.Executable, filemode.Symlink:
	default:
		return plumbing.ZeroHash, WrapErrorf(ErrApplyFailed, "unsupported mode %o for %s", uint32(mode), name)
	}

	obj := ix.repo.storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))

	w, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to open blob writer")
	}
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return plumbing.ZeroHash, WrapError(err, "failed to write blob")
	}
	if err := w.Close(); err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to write blob")
	}

	hash, err := ix.repo.storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, ioError(err, "failed to store blob for "+name)
	}

	e, ok := ix.entries[name]
	if !ok {
		e = ix.idx.Add(name)
		ix.entries[name] = e
	}
	e.Hash = hash
	e.Mode = mode
	e.Size = uint32(len(content))

	return hash, nil
}

// Remove unstages name.
func (ix *Index) Remove(name string) error {
	if _, ok := ix.entries[name]; !ok {
		return WrapErrorf(ErrApplyFailed, "%s is not staged", name)
	}

	if _, err := ix.idx.Remove(name); err != nil {
		return WrapErrorf(err, "failed to unstage %s", name)
	}
	delete(ix.entries, name)
	return nil
}

// Apply replays every file section of d onto the index, in patch order.
//
// Context timeout/cancellation is honored between files.
func (ix *Index) Apply(ctx context.Context, d *Diff) error {
	for _, f := range d.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ix.applyFile(f); err != nil {
			return WrapErrorf(err, "failed to apply %s", filePath(f))
		}
	}
	return nil
}

func (ix *Index) applyFile(f *gitdiff.File) error {
	if f.IsDelete {
		return ix.Remove(f.OldName)
	}

	var (
		src  []byte
		mode = filemode.Regular
		err  error
	)

	if !f.IsNew {
		src, mode, err = ix.Read(f.OldName)
		if err != nil {
			return err
		}
	} else if _, exists := ix.entries[f.NewName]; exists {
		return WrapErrorf(ErrApplyFailed, "%s already exists", f.NewName)
	}

	if f.NewMode != 0 {
		mode = filemode.FileMode(uint32(f.NewMode))
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, bytes.NewReader(src), f); err != nil {
		return WrapError(ErrApplyFailed, err.Error())
	}

	if f.IsRename && f.OldName != f.NewName {
		if err := ix.Remove(f.OldName); err != nil {
			return err
		}
	}

	_, err = ix.Add(f.NewName, mode, out.Bytes())
	return err
}

// WriteTree stores the staged files as tree objects and returns the root
// tree hash. An empty index yields the empty tree.
func (ix *Index) WriteTree(ctx context.Context) (plumbing.Hash, error) {
	root := newTreeNode()
	for _, e := range ix.idx.Entries {
		if err := root.insert(strings.Split(e.Name, "/"), e); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	return ix.writeNode(ctx, root)
}

// treeNode is one directory level while building trees.
type treeNode struct {
	files map[string]*index.Entry
	dirs  map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{
		files: make(map[string]*index.Entry),
		dirs:  make(map[string]*treeNode),
	}
}

func (n *treeNode) insert(parts []string, e *index.Entry) error {
	name := parts[0]

	if len(parts) == 1 {
		if _, ok := n.dirs[name]; ok {
			return WrapErrorf(ErrApplyFailed, "%s is both a file and a directory", e.Name)
		}
		n.files[name] = e
		return nil
	}

	if _, ok := n.files[name]; ok {
		return WrapErrorf(ErrApplyFailed, "%s is both a file and a directory", e.Name)
	}

	child, ok := n.dirs[name]
	if !ok {
		child = newTreeNode()
		n.dirs[name] = child
	}
	return child.insert(parts[1:], e)
}

func (ix *Index) writeNode(ctx context.Context, n *treeNode) (plumbing.Hash, error) {
	if err := ctx.Err(); err != nil {
		return plumbing.ZeroHash, err
	}

	entries := make([]object.TreeEntry, 0, len(n.files)+len(n.dirs))
	for name, e := range n.files {
		entries = append(entries, object.TreeEntry{Name: name, Mode: e.Mode, Hash: e.Hash})
	}
	for name, child := range n.dirs {
		hash, err := ix.writeNode(ctx, child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		entries = append(entries, object.TreeEntry{Name: name, Mode: filemode.Dir, Hash: hash})
	}
	sort.Sort(object.TreeEntrySorter(entries))

	obj := ix.repo.storer.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(obj); err != nil {
		return plumbing.ZeroHash, WrapError(err, "failed to encode tree")
	}

	hash, err := ix.repo.storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, ioError(err, "failed to store tree")
	}
	return hash, nil
}

// ApplyDiff applies d onto tree base and returns the resulting tree hash.
func (r *Repo) ApplyDiff(ctx context.Context, base plumbing.Hash, d *Diff) (plumbing.Hash, error) {
	ix, err := r.NewIndex(ctx, base)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	if err := ix.Apply(ctx, d); err != nil {
		return plumbing.ZeroHash, err
	}

	return ix.WriteTree(ctx)
}

// validPath rejects names that cannot appear in a tree.
func validPath(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || path.Clean(name) != name {
		return WrapErrorf(ErrApplyFailed, "invalid path %q", name)
	}

	for _, part := range strings.Split(name, "/") {
		if part == "." || part == ".." || part == ".git" {
			return WrapErrorf(ErrApplyFailed, "invalid path %q", name)
		}
	}
	return nil
}
