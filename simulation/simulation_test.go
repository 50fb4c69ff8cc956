package simulation

import (
	"context"
	"testing"

	"github.com/eliyataleb/lobsim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() config.Config {
	c := config.Default()
	c.NEvents = 500
	return c
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	c := smallConfig()
	c.MMRefreshK = 0
	_, err := New(c, nil)
	require.Error(t, err)
}

func TestRunProducesFullSummary(t *testing.T) {
	sim, err := New(smallConfig(), nil)
	require.NoError(t, err)

	summary, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 500, summary.EventsRun)
	assert.Len(t, summary.Events, 500)
	assert.NotEmpty(t, summary.RunHash)
	assert.Equal(t, summary.Metrics.TradeCount, len(summary.Trades))
}

func TestRunIsDeterministicForSameSeed(t *testing.T) {
	cfg := smallConfig()

	simA, err := New(cfg, nil)
	require.NoError(t, err)
	summaryA, err := simA.Run(context.Background())
	require.NoError(t, err)

	simB, err := New(cfg, nil)
	require.NoError(t, err)
	summaryB, err := simB.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, summaryA.RunHash, summaryB.RunHash)
	assert.Equal(t, summaryA.Events, summaryB.Events)
}

func TestRunDivergesForDifferentSeeds(t *testing.T) {
	cfgA := smallConfig()
	cfgB := smallConfig()
	cfgB.Seed = cfgA.Seed + 1

	simA, err := New(cfgA, nil)
	require.NoError(t, err)
	summaryA, err := simA.Run(context.Background())
	require.NoError(t, err)

	simB, err := New(cfgB, nil)
	require.NoError(t, err)
	summaryB, err := simB.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, summaryA.RunHash, summaryB.RunHash)
}

func TestRunStopsEarlyOnCancelledContext(t *testing.T) {
	sim, err := New(smallConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := sim.Run(ctx)
	require.Error(t, err)
	assert.Less(t, summary.EventsRun, int64(500))
}
