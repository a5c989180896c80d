package diff

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
)

// Side describes one side of a file change.
type Side struct {
	Path string
	Mode filemode.FileMode
	Hash plumbing.Hash
}

// WriteStanza writes a file section for a change the unified encoder cannot
// express: binary content, or a text change without hunks (an empty file
// being added or removed, or a mode change of an empty file). A nil side
// marks an addition or deletion.
//
// When binary is set and the content changes, content (the new blob, empty
// for deletions) is carried as a "GIT binary patch" literal.
func WriteStanza(w io.Writer, from, to *Side, binary bool, content []byte) error {
	if from == nil && to == nil {
		return nil
	}

	f := newFile(from, to)
	if from != nil && to != nil && from.Hash == to.Hash {
		f.OldOIDPrefix, f.NewOIDPrefix = "", ""
		binary = false
	}

	if binary {
		f.IsBinary = true
		f.BinaryFragment = &gitdiff.BinaryFragment{
			Method: gitdiff.BinaryPatchLiteral,
			Size:   int64(len(content)),
			Data:   content,
		}
	}

	_, err := io.WriteString(w, f.String())
	return err
}

// WriteText writes a text file section from hunks rendered by go-git's
// unified encoder without a file header. The header is written by go-gitdiff,
// which quotes paths the way git does.
func WriteText(w io.Writer, from, to *Side, hunks []byte) error {
	if from == nil && to == nil {
		return nil
	}

	frags, err := parseHunks(hunks)
	if err != nil {
		return err
	}

	f := newFile(from, to)
	f.TextFragments = frags

	_, err = io.WriteString(w, f.String())
	return err
}

// NeedsQuoting reports whether git quotes name in patch headers.
func NeedsQuoting(name string) bool {
	for i := 0; i < len(name); i++ {
		if b := name[i]; b < 0x20 || b >= 0x7f || b == '"' || b == '\\' {
			return true
		}
	}
	return false
}

// hunkHeader lets go-gitdiff parse bare hunks as the fragments of one file.
const hunkHeader = "diff --git a/f b/f\n--- a/f\n+++ b/f\n"

func parseHunks(hunks []byte) ([]*gitdiff.TextFragment, error) {
	files, _, err := gitdiff.Parse(io.MultiReader(strings.NewReader(hunkHeader), bytes.NewReader(hunks)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hunks: %w", err)
	}
	if len(files) != 1 || len(files[0].TextFragments) == 0 {
		return nil, fmt.Errorf("expected hunks for one file, got %d files", len(files))
	}
	return files[0].TextFragments, nil
}

// newFile builds the header fields of a file section. A nil side marks an
// addition or deletion.
func newFile(from, to *Side) *gitdiff.File {
	f := &gitdiff.File{
		OldOIDPrefix: plumbing.ZeroHash.String(),
		NewOIDPrefix: plumbing.ZeroHash.String(),
	}

	switch {
	case from == nil:
		f.IsNew = true
		f.NewName = to.Path
		f.NewMode = os.FileMode(to.Mode)
		f.NewOIDPrefix = to.Hash.String()
	case to == nil:
		f.IsDelete = true
		f.OldName = from.Path
		f.OldMode = os.FileMode(from.Mode)
		f.OldOIDPrefix = from.Hash.String()
	default:
		f.OldName = from.Path
		f.NewName = to.Path
		f.OldMode = os.FileMode(from.Mode)
		f.OldOIDPrefix = from.Hash.String()
		f.NewOIDPrefix = to.Hash.String()
		// An unchanged mode is carried on the index line only.
		if to.Mode != from.Mode {
			f.NewMode = os.FileMode(to.Mode)
		}
	}
	return f
}
