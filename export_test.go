package gpat_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/gpat"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/errors"
	"github.com/input-output-hk/catalyst-forge-libs/gpat/git/gittest"
)

func TestExport(t *testing.T) {
	ctx := context.Background()
	chain := sampleChain(t, 10, 20, 30)
	a := newArchive(t)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	report, err := gpat.New(chain.Repo, a, gpat.WithLogger(logger)).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, &gpat.Report{Direction: gpat.DirectionExport, Written: 3}, report)
	assert.Equal(t, []int64{10, 20, 30}, a.list(t))
	assert.Contains(t, logs.String(), "patch exported")

	first, err := a.Read(ctx, 10)
	require.NoError(t, err)
	assert.Contains(t, string(first), "+day 10")
	assert.Contains(t, string(first), "--- /dev/null")
}

func TestExportIdempotent(t *testing.T) {
	ctx := context.Background()
	chain := sampleChain(t, 10, 20, 30)
	a := exportChain(t, chain.Repo)

	report, err := gpat.New(chain.Repo, a).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Verified)
	assert.Zero(t, report.Written)
	assert.Equal(t, []int64{10, 20, 30}, a.list(t))
}

func TestExportExtendsArchive(t *testing.T) {
	ctx := context.Background()
	a := exportChain(t, sampleChain(t, 10, 20, 30).Repo)

	report, err := gpat.New(sampleChain(t, 10, 20, 30, 40).Repo, a).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Verified)
	assert.Equal(t, 1, report.Written)
	assert.Equal(t, []int64{10, 20, 30, 40}, a.list(t))
}

func TestExportEmptyChain(t *testing.T) {
	report, err := gpat.New(gittest.NewChain(t).Repo, newArchive(t)).Export(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Verified)
	assert.Zero(t, report.Written)
}

func TestExportArchiveAheadOfChain(t *testing.T) {
	ctx := context.Background()
	a := exportChain(t, sampleChain(t, 10, 20, 30).Repo)

	_, err := gpat.New(sampleChain(t, 10, 20).Repo, a).Export(ctx)
	syncErr := requireSyncError(t, err, gpat.ErrArchiveAheadOfChain, gpat.PhaseVerify, 3)
	assert.Equal(t, int64(30), syncErr.Timestamp)
	assert.Equal(t, errors.CodeArchiveAhead, errors.CodeOf(err))
}

func TestExportTimeMismatch(t *testing.T) {
	ctx := context.Background()
	a := exportChain(t, sampleChain(t, 10, 20, 30).Repo)

	chain := sampleChain(t, 10, 20, 25)
	_, err := gpat.New(chain.Repo, a).Export(ctx)
	syncErr := requireSyncError(t, err, gpat.ErrTimeOrderingMismatch, gpat.PhaseVerify, 3)
	assert.Equal(t, int64(30), syncErr.Timestamp)
	assert.False(t, syncErr.Commit.IsZero())

	fields := errors.ContextOf(err)
	assert.Equal(t, int64(25), fields["commit_time"])
	assert.Equal(t, int64(30), fields["archive_time"])
	assert.Equal(t, []int64{10, 20, 30}, a.list(t))
}

func TestExportDetectsDrift(t *testing.T) {
	ctx := context.Background()
	a := exportChain(t, sampleChain(t, 10, 20).Repo)
	a.tamper(t, 20, "diff --git a/x b/x\n")

	_, err := gpat.New(sampleChain(t, 10, 20, 30).Repo, a).Export(ctx)
	requireSyncError(t, err, gpat.ErrContentDrift, gpat.PhaseVerify, 2)
	assert.Equal(t, []int64{10, 20}, a.list(t), "nothing is written after drift")
}

func TestExportRefusesNonIncreasingTimes(t *testing.T) {
	ctx := context.Background()

	t.Run("equal", func(t *testing.T) {
		a := newArchive(t)
		_, err := gpat.New(sampleChain(t, 10, 20, 20).Repo, a).Export(ctx)
		requireSyncError(t, err, gpat.ErrDuplicateTimestamp, gpat.PhaseValidate, 3)
		assert.Empty(t, a.list(t))
	})

	t.Run("decreasing", func(t *testing.T) {
		a := newArchive(t)
		_, err := gpat.New(sampleChain(t, 10, 30, 20).Repo, a).Export(ctx)
		requireSyncError(t, err, gpat.ErrTimeOrderingMismatch, gpat.PhaseValidate, 3)
		assert.Empty(t, a.list(t))
	})
}

func TestExportNegativeTimestamps(t *testing.T) {
	a := exportChain(t, sampleChain(t, -200, -100, 0, 100).Repo)
	assert.Equal(t, []int64{-200, -100, 0, 100}, a.list(t))
}

func TestExportDryRun(t *testing.T) {
	ctx := context.Background()
	a := exportChain(t, sampleChain(t, 10).Repo)

	report, err := gpat.New(sampleChain(t, 10, 20, 30).Repo, a, gpat.WithDryRun(true)).Export(ctx)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Verified)
	assert.Equal(t, 2, report.Written)
	assert.Equal(t, []int64{10}, a.list(t))
}

func TestExportDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	chain := sampleChain(t, 10, 20)
	a := newArchive(t)
	require.NoError(t, a.Write(ctx, 10, []byte("foreign")))

	_, err := gpat.New(chain.Repo, a).Export(ctx)
	requireSyncError(t, err, gpat.ErrContentDrift, gpat.PhaseVerify, 1)

	stored, err := a.Read(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "foreign", string(stored))
}
