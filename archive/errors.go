package archive

import (
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// ErrMalformedEntry is returned when the archive directory holds an entry
// that is not a regular file named <integer>.patch.
var ErrMalformedEntry = errors.New(errors.CodeMalformedEntry, "malformed archive entry")

// ErrDuplicateTimestamp is returned when a write targets a timestamp the
// archive already holds.
var ErrDuplicateTimestamp = errors.New(errors.CodeDuplicateTimestamp, "timestamp already archived")

// ErrNotFound is returned when no entry exists for a timestamp.
var ErrNotFound = errors.New(errors.CodeNotFound, "archive entry does not exist")

// malformedError names the offending directory entry.
func malformedError(name, reason string) error {
	return errors.WrapWithContext(
		ErrMalformedEntry,
		errors.CodeMalformedEntry,
		fmt.Sprintf("%s: %s", name, reason),
		map[string]interface{}{"entry": name},
	)
}

// timestampError attaches the timestamp to one of the keyed sentinels.
func timestampError(err error, code errors.ErrorCode, ts int64) error {
	return errors.WrapWithContext(
		err,
		code,
		FileName(ts),
		map[string]interface{}{"timestamp": ts},
	)
}

// ioError classifies a filesystem failure as CodeIO.
func ioError(err error, format string, args ...interface{}) error {
	return errors.Wrap(err, errors.CodeIO, fmt.Sprintf(format, args...))
}
