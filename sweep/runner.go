package sweep

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/epiforge/episim/logging"
	"github.com/epiforge/episim/model"
)

// Options holds configuration overrides passed to Run.
type Options struct {
	// Iterations is the number of runs per scenario, each with a derived
	// seed.
	Iterations int
	// Days is the number of steps per run.
	Days int
	// Workers bounds how many simulation instances execute concurrently.
	Workers int
	// BaseSeed offsets the derived per-iteration seeds.
	BaseSeed int64
	// KeepSnapshots retains every run's full snapshot series on its Result;
	// summaries are always computed.
	KeepSnapshots bool
	// Store, when set, persists every result once all runs have finished,
	// in scenario-then-iteration order.
	Store *Store
	// Logger receives run lifecycle diagnostics.
	Logger logging.Logger
}

// Result is the outcome of one simulation instance.
type Result struct {
	RunID     string
	Scenario  string
	Iteration int
	Seed      int64
	Days      int
	Config    model.Config
	Summary   Summary
	// Snapshots is populated when Options.KeepSnapshots is set or a store
	// is configured.
	Snapshots []model.Snapshot
}

// Run executes every scenario Iterations times and returns one Result per
// run, in scenario-then-iteration order regardless of worker scheduling.
// Each instance is fully independent; only the result slice is shared, and
// each worker writes a distinct index.
func Run(ctx context.Context, scenarios []Scenario, optFns ...func(o *Options)) ([]Result, error) {
	opts := Options{
		Iterations: 3,
		Days:       60,
		Workers:    1,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Iterations < 1 || opts.Days < 1 {
		return nil, fmt.Errorf("sweep: iterations and days must be positive")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	type job struct {
		index     int
		scenario  Scenario
		iteration int
	}

	jobs := make([]job, 0, len(scenarios)*opts.Iterations)
	for _, s := range scenarios {
		for it := 0; it < opts.Iterations; it++ {
			jobs = append(jobs, job{index: len(jobs), scenario: s, iteration: it})
		}
	}

	results := make([]Result, len(jobs))
	errs := make([]error, len(jobs))
	jobCh := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				results[j.index], errs[j.index] = runOne(j.scenario, j.iteration, opts)
			}
		}()
	}

	var ctxErr error
dispatch:
	for _, j := range jobs {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		case jobCh <- j:
		}
	}
	close(jobCh)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if opts.Store != nil {
		for _, r := range results {
			if err := opts.Store.SaveResult(r); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func runOne(scenario Scenario, iteration int, opts Options) (Result, error) {
	cfg := scenario.Config
	cfg.RandomSeed = opts.BaseSeed + int64(iteration)*1000

	runID := uuid.NewString()
	logger := logging.With(opts.Logger, "run_id", runID, "scenario", scenario.Name, "iteration", iteration)

	m, err := model.New(cfg, func(o *model.Options) { o.Logger = logging.NoOpLogger{} })
	if err != nil {
		return Result{}, fmt.Errorf("sweep: scenario %q iteration %d: %w", scenario.Name, iteration, err)
	}

	for day := 0; day < opts.Days && m.Running(); day++ {
		m.Step()
	}

	snapshots := m.Snapshots()
	result := Result{
		RunID:     runID,
		Scenario:  scenario.Name,
		Iteration: iteration,
		Seed:      cfg.RandomSeed,
		Days:      opts.Days,
		Config:    cfg,
		Summary:   Summarize(snapshots),
	}
	if opts.KeepSnapshots || opts.Store != nil {
		result.Snapshots = snapshots
	}

	logger.Info("run complete",
		"peak_infected_pct", result.Summary.PeakInfectedPct,
		"peak_day", result.Summary.PeakDay,
		"dead", result.Summary.FinalDead,
	)
	return result, nil
}
