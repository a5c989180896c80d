package gpat

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
)

// Check verifies that the chain and the archive describe the same history,
// comparing timestamps and recomputed patch bytes at every position. It
// never writes. Differing lengths fail with ErrArchiveAheadOfChain or
// ErrChainAheadOfArchive.
func (e *Engine) Check(ctx context.Context) (*Report, error) {
	r := e.newRun(DirectionCheck)

	commits, keys, err := e.load(ctx, "")
	if err != nil {
		return nil, r.fail(PhaseInit, 0, 0, plumbing.ZeroHash, err)
	}

	if i, err := validateChain(commits); err != nil {
		return nil, r.fail(PhaseValidate, i+1, commits[i].Time, commits[i].Hash, err)
	}

	if err := e.verifyPatches(ctx, r, commits, keys); err != nil {
		return nil, err
	}

	switch pos := min(len(commits), len(keys)); {
	case len(keys) > len(commits):
		return nil, r.fail(PhaseVerify, pos+1, keys[pos], plumbing.ZeroHash,
			aheadError(ErrArchiveAheadOfChain, errors.CodeArchiveAhead, len(keys)-pos, keys[pos]))
	case len(commits) > len(keys):
		c := commits[pos]
		return nil, r.fail(PhaseVerify, pos+1, c.Time, c.Hash,
			aheadError(ErrChainAheadOfArchive, errors.CodeChainAhead, len(commits)-pos, c.Time))
	}

	e.logger.InfoContext(ctx, "chain and archive agree", "verified", r.report.Verified)
	return r.report, nil
}
