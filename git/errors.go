// Package git provides sentinel errors for the object store adapter.
// All errors can be checked using errors.Is() for programmatic handling.
package git

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// ErrTopology is returned when a reachable commit has two or more parents.
// Merge topologies cannot be expressed as a patch archive.
var ErrTopology = errors.New(errors.CodeTopology, "commit has more than one parent")

// ErrRepositoryMissing is returned when no repository exists at the
// requested location, or the location is empty.
var ErrRepositoryMissing = errors.New(errors.CodeNotFound, "repository does not exist")

// ErrNotEmpty is returned when an operation requires a repository without
// commits but the repository already has history.
var ErrNotEmpty = errors.New(errors.CodeAlreadyExists, "repository already has commits")

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New(errors.CodeInvalidConfig, "invalid options")

// ErrCorruptPatch is returned when patch bytes cannot be decoded.
var ErrCorruptPatch = errors.New(errors.CodeInvalidInput, "patch cannot be decoded")

// ErrApplyFailed is returned when a decoded patch does not apply to the
// staging index it is replayed onto.
var ErrApplyFailed = errors.New(errors.CodeInvalidInput, "patch does not apply")

// ErrUnsupportedEntry is returned for tree entries a patch cannot carry,
// such as submodule links.
var ErrUnsupportedEntry = errors.New(errors.CodeInvalidInput, "unsupported tree entry")

// ErrBranchMissing is returned when a branch does not exist.
var ErrBranchMissing = errors.New(errors.CodeNotFound, "branch does not exist")

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// topologyError reports a merge commit found during the linearity pass.
func topologyError(hash plumbing.Hash, parents int) error {
	return errors.WrapWithContext(
		ErrTopology,
		errors.CodeTopology,
		fmt.Sprintf("commit %s has %d parents", hash, parents),
		map[string]interface{}{
			"commit":  hash.String(),
			"parents": parents,
		},
	)
}

// ioError classifies a storage failure as CodeIO.
func ioError(err error, msg string) error {
	return errors.Wrap(err, errors.CodeIO, msg)
}
