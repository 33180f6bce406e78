// Package episim provides a high-level façade over the population model for
// hosts that just want to run an epidemic simulation: construct a Simulation
// via New() with a model.Config, then either drive it day by day with Step()
// or synchronously with Run(). All defaults are safe for tests and local
// exploration; batch execution lives in the sweep package.
package episim

import (
	"context"

	"github.com/epiforge/episim/logging"
	"github.com/epiforge/episim/model"
)

// Options configures the Simulation instance.
type Options struct {
	// Logger receives model diagnostics. Defaults to a no-op logger.
	Logger logging.Logger
}

// Simulation wraps one population model run.
type Simulation struct {
	model *model.Model
}

// New constructs a simulation, failing fast on invalid configuration.
func New(cfg model.Config, optFns ...func(o *Options)) (*Simulation, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	m, err := model.New(cfg, func(o *model.Options) {
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}
	return &Simulation{model: m}, nil
}

// Step advances the simulation by one day and returns its snapshot.
func (s *Simulation) Step() model.Snapshot {
	return s.model.Step()
}

// Run advances the simulation up to days steps, stopping early when the
// model's own day bound clears the running flag or the context is cancelled
// between steps. It returns the full snapshot series including day zero.
func (s *Simulation) Run(ctx context.Context, days int) ([]model.Snapshot, error) {
	for i := 0; i < days && s.model.Running(); i++ {
		if err := ctx.Err(); err != nil {
			return s.model.Snapshots(), err
		}
		s.model.Step()
	}
	return s.model.Snapshots(), nil
}

// Model exposes the underlying coordinator for inspection.
func (s *Simulation) Model() *model.Model { return s.model }

// Snapshots returns the time-ordered snapshot series collected so far.
func (s *Simulation) Snapshots() []model.Snapshot { return s.model.Snapshots() }
