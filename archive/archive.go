// Package archive implements the patch archive: a flat directory holding one
// <timestamp>.patch file per commit, where the timestamp is the commit time
// in Unix seconds. The ascending order of the timestamps is the order of the
// commits.
package archive

import (
	"context"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/fs"
)

// Suffix is the extension every archive entry carries.
const Suffix = ".patch"

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Archive is a patch archive rooted at a directory of a filesystem.
type Archive struct {
	fs  fs.Filesystem
	dir string
}

// New binds an archive to dir without touching the filesystem. A missing
// directory behaves as an empty archive until the first Write.
func New(fsys fs.Filesystem, dir string) *Archive {
	return &Archive{fs: fsys, dir: dir}
}

// Open binds an archive to dir, creating the directory when it is missing.
func Open(ctx context.Context, fsys fs.Filesystem, dir string) (*Archive, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := fsys.MkdirAll(dir, dirPerm); err != nil {
		return nil, ioError(err, "failed to create archive directory %s", dir)
	}
	return New(fsys, dir), nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

// Path returns the location of the entry for ts.
func (a *Archive) Path(ts int64) string {
	return filepath.Join(a.dir, FileName(ts))
}

// List returns every archived timestamp in ascending order.
//
// Every directory entry must be a regular file with a canonical
// <integer>.patch name; anything else fails the listing with
// ErrMalformedEntry. A missing directory lists as empty.
func (a *Archive) List(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := a.fs.ReadDir(a.dir)
	if errors.Is(err, iofs.ErrNotExist) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, ioError(err, "failed to list archive %s", a.dir)
	}

	timestamps := make([]int64, 0, len(infos))
	for _, info := range infos {
		if !info.Mode().IsRegular() {
			return nil, malformedError(info.Name(), "not a regular file")
		}

		ts, ok := ParseName(info.Name())
		if !ok {
			return nil, malformedError(info.Name(), "name is not <integer>"+Suffix)
		}
		timestamps = append(timestamps, ts)
	}

	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })
	return timestamps, nil
}

// Read returns the exact bytes stored for ts.
func (a *Archive) Read(ctx context.Context, ts int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := a.fs.ReadFile(a.Path(ts))
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, timestampError(ErrNotFound, errors.CodeNotFound, ts)
	}
	if err != nil {
		return nil, ioError(err, "failed to read %s", a.Path(ts))
	}
	return data, nil
}

// Write stores data as the entry for ts. Entries are never overwritten: a
// timestamp that is already archived fails with ErrDuplicateTimestamp. When
// writing fails part way, the partial entry is removed.
func (a *Archive) Write(ctx context.Context, ts int64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := a.Path(ts)

	exists, err := a.fs.Exists(name)
	if err != nil {
		return ioError(err, "failed to stat %s", name)
	}
	if exists {
		return timestampError(ErrDuplicateTimestamp, errors.CodeDuplicateTimestamp, ts)
	}

	if err := a.fs.MkdirAll(a.dir, dirPerm); err != nil {
		return ioError(err, "failed to create archive directory %s", a.dir)
	}

	f, err := a.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, iofs.ErrExist) {
		return timestampError(ErrDuplicateTimestamp, errors.CodeDuplicateTimestamp, ts)
	}
	if err != nil {
		return ioError(err, "failed to create %s", name)
	}

	_, werr := f.Write(data)
	cerr := f.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = a.fs.Remove(name)
		return ioError(werr, "failed to write %s", name)
	}

	return nil
}

// FileName renders the canonical entry name for ts.
func FileName(ts int64) string {
	return strconv.FormatInt(ts, 10) + Suffix
}

// ParseName extracts the timestamp from a canonical entry name. Names with
// a sign on a positive number, leading zeros or "-0" are not canonical.
func ParseName(name string) (int64, bool) {
	stem, ok := strings.CutSuffix(name, Suffix)
	if !ok || stem == "" {
		return 0, false
	}

	ts, err := strconv.ParseInt(stem, 10, 64)
	if err != nil || strconv.FormatInt(ts, 10) != stem {
		return 0, false
	}
	return ts, true
}
