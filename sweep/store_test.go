package sweep

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiforge/episim/model"
)

func testResult(runID, scenario string, iteration int) Result {
	return Result{
		RunID:     runID,
		Scenario:  scenario,
		Iteration: iteration,
		Seed:      int64(iteration) * 1000,
		Days:      30,
		Config:    model.DefaultConfig(),
		Summary: Summary{
			PeakInfectedPct:    42.5,
			PeakDay:            12,
			PeakR0:             2.3,
			MeanR0:             1.1,
			FinalDead:          7,
			FinalRecoveredPct:  61.0,
			FinalVaccinatedPct: 15.5,
		},
		Snapshots: []model.Snapshot{
			{Day: 0, SusceptiblePct: 95, InfectedPct: 5, HospitalCapacity: 2},
			{Day: 1, SusceptiblePct: 90, ExposedPct: 5, InfectedPct: 5,
				Dead: 1, Severe: 1, HospitalCapacity: 2, VaccinatedPct: 1,
				R0: 1.5, WealthByStratum: [5]float64{400, 800, 1300, 2000, 5500}},
		},
	}
}

func TestStoreRoundtrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	want := testResult("run-a", "baseline", 0)
	require.NoError(t, store.SaveResult(want))

	runs, err := store.Runs("")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, want.RunID, runs[0].RunID)
	assert.Equal(t, want.Scenario, runs[0].Scenario)
	assert.Equal(t, want.Iteration, runs[0].Iteration)
	assert.Equal(t, want.Seed, runs[0].Seed)
	assert.Equal(t, want.Days, runs[0].Days)
	assert.Equal(t, want.Summary, runs[0].Summary)

	snaps, err := store.RunSnapshots(want.RunID)
	require.NoError(t, err)
	assert.Equal(t, want.Snapshots, snaps)
}

func TestStoreScenarioFilter(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveResult(testResult("run-a", "baseline", 0)))
	require.NoError(t, store.SaveResult(testResult("run-b", "lockdown", 0)))
	require.NoError(t, store.SaveResult(testResult("run-c", "lockdown", 1)))

	all, err := store.Runs("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	lockdown, err := store.Runs("lockdown")
	require.NoError(t, err)
	require.Len(t, lockdown, 2)
	for _, r := range lockdown {
		assert.Equal(t, "lockdown", r.Scenario)
	}

	none, err := store.Runs("no-such-scenario")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreDuplicateRunIDRejected(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	r := testResult("run-a", "baseline", 0)
	require.NoError(t, store.SaveResult(r))
	assert.Error(t, store.SaveResult(r))
}

func TestStoreUnknownRunHasNoSnapshots(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	snaps, err := store.RunSnapshots("nope")
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestRunWithStorePersistsResults(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	results, err := Run(context.Background(), smallScenarios()[:1], func(o *Options) {
		o.Iterations = 2
		o.Days = 5
		o.Store = store
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Len(t, r.Snapshots, 6, "a configured store keeps snapshots on the result")
	}

	runs, err := store.Runs("baseline")
	require.NoError(t, err)
	require.Len(t, runs, 2)

	snaps, err := store.RunSnapshots(results[0].RunID)
	require.NoError(t, err)
	assert.Len(t, snaps, 6)
}
