// Package diff holds the pieces of the patch format that go-git's unified
// encoder does not cover: file sections without text hunks, written through
// go-gitdiff, and cheap inspection of encoded patches for diagnostics.
package diff

import (
	"bufio"
	"bytes"
	"strings"
)

const (
	fileHeaderPrefix  = "diff --git "
	binaryPatchMarker = "GIT binary patch"
	binaryFilesPrefix = "Binary files "
	binaryFilesSuffix = " differ"
)

// ContainsBinaryFiles reports whether the patch text carries binary content
// or a binary placeholder.
func ContainsBinaryFiles(patchText string) bool {
	scanner := bufio.NewScanner(strings.NewReader(patchText))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		line := scanner.Text()
		if line == binaryPatchMarker {
			return true
		}
		if strings.HasPrefix(line, binaryFilesPrefix) && strings.HasSuffix(line, binaryFilesSuffix) {
			return true
		}
		if line == "Binary files differ" {
			return true
		}
	}
	return false
}

// CountFileHeaders counts "diff --git" headers in an encoded patch.
func CountFileHeaders(patch []byte) int {
	count := 0
	for len(patch) > 0 {
		line := patch
		if i := bytes.IndexByte(patch, '\n'); i >= 0 {
			line, patch = patch[:i], patch[i+1:]
		} else {
			patch = nil
		}
		if bytes.HasPrefix(line, []byte(fileHeaderPrefix)) {
			count++
		}
	}
	return count
}

// maxLineLength bounds a single scanned line; text hunks of minified files
// can be long.
const maxLineLength = 64 * 1024 * 1024
