// Command episim runs epidemic simulations from the command line: a single
// named scenario printed as a day-by-day table, or a multi-scenario sweep
// with summary metrics, sensitivity analysis and optional SQLite
// persistence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/epiforge/episim/logging"
	"github.com/epiforge/episim/sweep"
)

func main() {
	var (
		scenarioName  = flag.String("scenario", "No Intervention", "named scenario to run")
		scenariosPath = flag.String("scenarios", "", "YAML scenario file overriding the built-in set")
		days          = flag.Int("days", 60, "days to simulate per run")
		runSweep      = flag.Bool("sweep", false, "run every scenario instead of one")
		iterations    = flag.Int("runs", 3, "iterations per scenario in sweep mode")
		workers       = flag.Int("workers", 4, "parallel simulation instances in sweep mode")
		seed          = flag.Int64("seed", 0, "base random seed")
		dbPath        = flag.String("db", "", "SQLite file to persist sweep results")
		verbose       = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := logging.LogLevelInfo
	if *verbose {
		level = logging.LogLevelDebug
	}
	logger := logging.NewTextLogger(level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, config{
		scenarioName:  *scenarioName,
		scenariosPath: *scenariosPath,
		days:          *days,
		runSweep:      *runSweep,
		iterations:    *iterations,
		workers:       *workers,
		seed:          *seed,
		dbPath:        *dbPath,
	}, logger); err != nil {
		fmt.Fprintln(os.Stderr, "episim:", err)
		os.Exit(1)
	}
}

type config struct {
	scenarioName  string
	scenariosPath string
	days          int
	runSweep      bool
	iterations    int
	workers       int
	seed          int64
	dbPath        string
}

func run(ctx context.Context, cfg config, logger logging.Logger) error {
	scenarios := sweep.DefaultScenarios()
	if cfg.scenariosPath != "" {
		var err error
		scenarios, err = sweep.LoadScenarios(cfg.scenariosPath)
		if err != nil {
			return err
		}
	}

	if cfg.runSweep {
		return runAll(ctx, scenarios, cfg, logger)
	}
	return runOne(ctx, scenarios, cfg, logger)
}

func runOne(ctx context.Context, scenarios []sweep.Scenario, cfg config, logger logging.Logger) error {
	var selected *sweep.Scenario
	for i := range scenarios {
		if strings.EqualFold(scenarios[i].Name, cfg.scenarioName) {
			selected = &scenarios[i]
			break
		}
	}
	if selected == nil {
		names := make([]string, len(scenarios))
		for i, s := range scenarios {
			names[i] = s.Name
		}
		return fmt.Errorf("unknown scenario %q (have: %s)", cfg.scenarioName, strings.Join(names, ", "))
	}

	results, err := sweep.Run(ctx, []sweep.Scenario{*selected}, func(o *sweep.Options) {
		o.Iterations = 1
		o.Days = cfg.days
		o.BaseSeed = cfg.seed
		o.KeepSnapshots = true
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "day\tsusceptible%\texposed%\tinfected%\trecovered%\tdead\tsevere\tvaccinated%\tR0")
	for _, snap := range results[0].Snapshots {
		fmt.Fprintf(w, "%d\t%.1f\t%.1f\t%.1f\t%.1f\t%d\t%d\t%.1f\t%.2f\n",
			snap.Day, snap.SusceptiblePct, snap.ExposedPct, snap.InfectedPct,
			snap.RecoveredPct, snap.Dead, snap.Severe, snap.VaccinatedPct, snap.R0)
	}
	return w.Flush()
}

func runAll(ctx context.Context, scenarios []sweep.Scenario, cfg config, logger logging.Logger) error {
	var store *sweep.Store
	if cfg.dbPath != "" {
		var err error
		store, err = sweep.OpenStore(cfg.dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	results, err := sweep.Run(ctx, scenarios, func(o *sweep.Options) {
		o.Iterations = cfg.iterations
		o.Days = cfg.days
		o.Workers = cfg.workers
		o.BaseSeed = cfg.seed
		o.Store = store
		o.Logger = logger
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "scenario\trun\tpeak infected%\tpeak day\tpeak R0\tdead\trecovered%\tvaccinated%")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%d\t%.2f\t%d\t%.1f\t%.1f\n",
			r.Scenario, r.Iteration, r.Summary.PeakInfectedPct, r.Summary.PeakDay,
			r.Summary.PeakR0, r.Summary.FinalDead, r.Summary.FinalRecoveredPct,
			r.Summary.FinalVaccinatedPct)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if sens := sweep.Sensitivity(results, sweep.PeakInfected); len(sens) > 0 {
		fmt.Println()
		fmt.Fprintln(w, "parameter\tvariance explained%\tmean effect")
		for _, s := range sens {
			fmt.Fprintf(w, "%s\t%.1f\t%.2f\n", s.Parameter, s.VarianceExplainedPct, s.MeanEffect)
		}
		return w.Flush()
	}
	return nil
}
