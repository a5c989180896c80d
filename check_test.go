package gpat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/gpat"
)

func TestCheck(t *testing.T) {
	ctx := context.Background()
	chain := sampleChain(t, 10, 20, 30)
	a := exportChain(t, chain.Repo)

	t.Run("in sync", func(t *testing.T) {
		report, err := gpat.New(chain.Repo, a).Check(ctx)
		require.NoError(t, err)
		assert.Equal(t, &gpat.Report{Direction: gpat.DirectionCheck, Verified: 3}, report)
	})

	t.Run("dry run flag is ignored", func(t *testing.T) {
		report, err := gpat.New(chain.Repo, a, gpat.WithDryRun(true)).Check(ctx)
		require.NoError(t, err)
		assert.False(t, report.DryRun)
	})

	t.Run("archive ahead", func(t *testing.T) {
		_, err := gpat.New(sampleChain(t, 10, 20).Repo, a).Check(ctx)
		requireSyncError(t, err, gpat.ErrArchiveAheadOfChain, gpat.PhaseVerify, 3)
	})

	t.Run("chain ahead", func(t *testing.T) {
		longer := sampleChain(t, 10, 20, 30, 40)
		_, err := gpat.New(longer.Repo, a).Check(ctx)
		requireSyncError(t, err, gpat.ErrChainAheadOfArchive, gpat.PhaseVerify, 4)
		assert.Equal(t, []int64{10, 20, 30}, a.list(t), "check never writes")
	})

	t.Run("time mismatch", func(t *testing.T) {
		_, err := gpat.New(sampleChain(t, 10, 20, 25).Repo, a).Check(ctx)
		requireSyncError(t, err, gpat.ErrTimeOrderingMismatch, gpat.PhaseVerify, 3)
	})
}

func TestCheckDrift(t *testing.T) {
	ctx := context.Background()
	chain := sampleChain(t, 10, 20, 30)
	a := exportChain(t, chain.Repo)

	original, err := a.Read(ctx, 20)
	require.NoError(t, err)
	a.tamper(t, 20, string(original)+"\n")

	_, err = gpat.New(chain.Repo, a).Check(ctx)
	syncErr := requireSyncError(t, err, gpat.ErrContentDrift, gpat.PhaseVerify, 2)
	assert.Equal(t, int64(20), syncErr.Timestamp)
}
