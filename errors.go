package gpat

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/archive"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
)

// ErrTimeOrderingMismatch is returned when the commit and the archive entry
// at the same position carry different timestamps.
var ErrTimeOrderingMismatch = errors.New(errors.CodeTimeOrdering, "time mismatch")

// ErrContentDrift is returned when an archived patch differs from the patch
// recomputed from the chain. A duplicate timestamp is the usual cause.
var ErrContentDrift = errors.New(errors.CodeContentDrift, "stored patch differs from chain, possible duplicate timestamp")

// ErrArchiveAheadOfChain is returned when the archive holds entries past the
// end of the chain.
var ErrArchiveAheadOfChain = errors.New(errors.CodeArchiveAhead, "archive is newer than chain")

// ErrChainAheadOfArchive is returned when the chain holds commits past the
// end of the archive.
var ErrChainAheadOfArchive = errors.New(errors.CodeChainAhead, "chain is newer than archive")

// Errors raised by the store and the archive, re-exported so callers only
// need this package.
var (
	ErrTopology           = git.ErrTopology
	ErrNotEmpty           = git.ErrNotEmpty
	ErrMalformedEntry     = archive.ErrMalformedEntry
	ErrDuplicateTimestamp = archive.ErrDuplicateTimestamp
)

// Direction names the side a run writes to.
type Direction string

const (
	// DirectionExport writes patches from the chain into the archive.
	DirectionExport Direction = "export"

	// DirectionImport writes commits from the archive onto the chain.
	DirectionImport Direction = "import"

	// DirectionCheck writes nothing and verifies both sides.
	DirectionCheck Direction = "check"
)

// Phase is the step of a run an error was raised in.
type Phase string

const (
	// PhaseInit covers reading the chain and listing the archive.
	PhaseInit Phase = "init"

	// PhaseValidate covers checks on one side alone.
	PhaseValidate Phase = "validate"

	// PhaseVerify covers the lockstep walk over positions both sides hold.
	PhaseVerify Phase = "verify"

	// PhaseExtend covers writing to the shorter side.
	PhaseExtend Phase = "extend"

	// PhaseFinalize covers moving the branch after an import.
	PhaseFinalize Phase = "finalize"
)

// SyncError describes where a run stopped. Position is 1-based and zero
// when the failure is not tied to an entry.
type SyncError struct {
	Direction Direction
	Phase     Phase
	Position  int
	Timestamp int64
	Commit    plumbing.Hash
	Err       error
}

func (e *SyncError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed during %s", e.Direction, e.Phase)
	if e.Position > 0 {
		fmt.Fprintf(&b, " at position %d (%s)", e.Position, archive.FileName(e.Timestamp))
	}
	if !e.Commit.IsZero() {
		fmt.Fprintf(&b, ", commit %s", e.Commit)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// mismatchError reports differing timestamps at the same position.
func mismatchError(commit plumbing.Hash, commitTime, archiveTime int64) error {
	return errors.WrapWithContext(
		ErrTimeOrderingMismatch,
		errors.CodeTimeOrdering,
		fmt.Sprintf("commit time %d, archive time %d", commitTime, archiveTime),
		map[string]interface{}{
			"commit":       commit.String(),
			"commit_time":  commitTime,
			"archive_time": archiveTime,
		},
	)
}

// driftError reports an archived patch that no longer matches the chain.
func driftError(commit plumbing.Hash, ts int64) error {
	return errors.WrapWithContext(
		ErrContentDrift,
		errors.CodeContentDrift,
		archive.FileName(ts),
		map[string]interface{}{
			"commit":    commit.String(),
			"timestamp": ts,
		},
	)
}

// aheadError reports the side holding surplus entries and how many.
func aheadError(sentinel error, code errors.ErrorCode, surplus int, first int64) error {
	return errors.WrapWithContext(
		sentinel,
		code,
		fmt.Sprintf("%d surplus entries starting at %d", surplus, first),
		map[string]interface{}{
			"surplus": surplus,
			"first":   first,
		},
	)
}

// orderError reports a chain whose commit times do not strictly increase.
// Such a chain cannot be written as an archive.
func orderError(prev, next *git.Commit) error {
	sentinel, code := ErrTimeOrderingMismatch, errors.CodeTimeOrdering
	if prev.Time == next.Time {
		sentinel, code = ErrDuplicateTimestamp, errors.CodeDuplicateTimestamp
	}
	return errors.WrapWithContext(
		sentinel,
		code,
		fmt.Sprintf("commit %s at %d follows commit %s at %d", next.Hash, next.Time, prev.Hash, prev.Time),
		map[string]interface{}{
			"commit":    next.Hash.String(),
			"timestamp": next.Time,
			"previous":  prev.Time,
		},
	)
}
