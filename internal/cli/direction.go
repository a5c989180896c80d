package cli

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gpat"
)

// Location suffixes that identify each side.
const (
	RepoSuffix    = ".git"
	ArchiveSuffix = ".gpat"
)

// InferDirection decides which way SRC DST runs from their suffixes:
// a repository source or an archive destination exports, a repository
// destination or an archive source imports. Trailing slashes are ignored.
func InferDirection(src, dst string) (gpat.Direction, error) {
	src = strings.TrimRight(src, "/")
	dst = strings.TrimRight(dst, "/")

	switch {
	case strings.HasSuffix(src, RepoSuffix) || strings.HasSuffix(dst, ArchiveSuffix):
		return gpat.DirectionExport, nil
	case strings.HasSuffix(dst, RepoSuffix) || strings.HasSuffix(src, ArchiveSuffix):
		return gpat.DirectionImport, nil
	default:
		return "", fmt.Errorf("unknown format: name the repository *%s or the archive *%s", RepoSuffix, ArchiveSuffix)
	}
}
