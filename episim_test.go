package episim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiforge/episim/model"
)

func testConfig() model.Config {
	cfg := model.DefaultConfig()
	cfg.PopulationSize = 100
	cfg.InitialInfectedFraction = 0.05
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BaseTransmissionProbability = 1.5

	sim, err := New(cfg)
	require.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.Nil(t, sim)
}

func TestRunCollectsSnapshotSeries(t *testing.T) {
	sim, err := New(testConfig())
	require.NoError(t, err)

	snaps, err := sim.Run(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, snaps, 11, "day zero plus ten steps")
	for i, snap := range snaps {
		assert.Equal(t, i, snap.Day)
	}
	assert.Equal(t, snaps, sim.Snapshots())
}

func TestRunStopsAtDayBound(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDays = 3

	sim, err := New(cfg)
	require.NoError(t, err)

	snaps, err := sim.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, snaps, 4)
	assert.False(t, sim.Model().Running())
}

func TestRunHonorsContext(t *testing.T) {
	sim, err := New(testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snaps, err := sim.Run(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, snaps, 1, "only the day-zero snapshot before cancellation")
}

func TestStepMatchesModel(t *testing.T) {
	sim, err := New(testConfig())
	require.NoError(t, err)

	snap := sim.Step()
	assert.Equal(t, 1, snap.Day)
	assert.Equal(t, 1, sim.Model().Day())

	latest := sim.Snapshots()[len(sim.Snapshots())-1]
	assert.Equal(t, snap, latest)
}

func TestDeterministicAcrossInstances(t *testing.T) {
	run := func() []model.Snapshot {
		sim, err := New(testConfig())
		require.NoError(t, err)
		snaps, err := sim.Run(context.Background(), 20)
		require.NoError(t, err)
		return snaps
	}
	assert.Equal(t, run(), run())
}
