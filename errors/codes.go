// Package errors provides the error classification used across gpat.
// It extends Go's standard error handling with string error codes and
// structured context, so the command line can report which invariant a run
// violated and sentinel errors stay checkable with errors.Is.
package errors

// ErrorCode identifies the condition behind a failed synchronization.
// Codes are strings for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested archive entry or object does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a destination already holds data and cannot be created again.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Synchronization invariants.

	// CodeTopology indicates a commit with more than one parent was found.
	CodeTopology ErrorCode = "TOPOLOGY_VIOLATION"

	// CodeMalformedEntry indicates an archive directory entry is not a
	// regular file named <integer>.patch.
	CodeMalformedEntry ErrorCode = "MALFORMED_ARCHIVE_ENTRY"

	// CodeDuplicateTimestamp indicates two archive entries share a timestamp
	// or a write would overwrite an existing entry.
	CodeDuplicateTimestamp ErrorCode = "DUPLICATE_TIMESTAMP"

	// CodeTimeOrdering indicates the two sides disagree on the timestamp at
	// the same position.
	CodeTimeOrdering ErrorCode = "TIME_ORDERING_MISMATCH"

	// CodeContentDrift indicates stored patch bytes differ from the bytes
	// recomputed from the chain.
	CodeContentDrift ErrorCode = "CONTENT_DRIFT"

	// CodeArchiveAhead indicates the archive has entries the chain cannot account for.
	CodeArchiveAhead ErrorCode = "ARCHIVE_AHEAD_OF_CHAIN"

	// CodeChainAhead indicates the chain has commits the archive cannot account for.
	CodeChainAhead ErrorCode = "CHAIN_AHEAD_OF_ARCHIVE"

	// Infrastructure errors.

	// CodeIO indicates a filesystem or object store operation failed.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeNetwork indicates cloning a remote source failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeCanceled indicates the run was stopped by its context.
	CodeCanceled ErrorCode = "CANCELED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unclassified error.
	CodeUnknown ErrorCode = "UNKNOWN"
)
