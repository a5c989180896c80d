package gpat

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git"
)

// Export writes the chain into the archive.
//
// Every position the archive already holds must match the chain: the same
// timestamp and byte-identical patch content. Commits past the end of the
// archive are then encoded and written one entry at a time. An archive
// holding entries past the end of the chain fails with
// ErrArchiveAheadOfChain before anything is written.
//
// A chain whose commit times do not strictly increase is refused up front,
// since its entries would collide or sort out of order in the archive.
func (e *Engine) Export(ctx context.Context) (*Report, error) {
	r := e.newRun(DirectionExport)

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

	if len(keys) > len(commits) {
		pos := len(commits)
		return nil, r.fail(PhaseVerify, pos+1, keys[pos], plumbing.ZeroHash,
			aheadError(ErrArchiveAheadOfChain, errors.CodeArchiveAhead, len(keys)-pos, keys[pos]))
	}

	for i := len(keys); i < len(commits); i++ {
		c := commits[i]

		if err := ctx.Err(); err != nil {
			return nil, r.fail(PhaseExtend, i+1, c.Time, c.Hash, err)
		}

		patch, err := e.patchAt(ctx, commits, i)
		if err != nil {
			return nil, r.fail(PhaseExtend, i+1, c.Time, c.Hash, err)
		}

		files, binary := git.Summarize(patch)
		if !e.dryRun {
			if err := e.archive.Write(ctx, c.Time, patch); err != nil {
				return nil, r.fail(PhaseExtend, i+1, c.Time, c.Hash, err)
			}
		}

		r.report.Written++
		e.logger.InfoContext(ctx, "patch exported",
			"position", i+1,
			"timestamp", c.Time,
			"commit", c.Hash.String(),
			"files", files,
			"binary", binary,
			"bytes", len(patch),
			"dry_run", e.dryRun)
	}

	if r.report.Written == 0 {
		e.logger.InfoContext(ctx, "archive already up to date", "verified", r.report.Verified)
	}

	return r.report, nil
}
