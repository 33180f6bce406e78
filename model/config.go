package model

import (
	"errors"
	"fmt"

	"github.com/epiforge/episim/params"
)

// Config is the full parameter set accepted at construction. The zero value
// is not runnable; start from DefaultConfig.
type Config struct {
	// PopulationSize is the number of agents created at construction.
	PopulationSize int `yaml:"population_size"`
	// GridWidth and GridHeight size the toroidal community grid; cells can
	// hold any number of agents.
	GridWidth  int `yaml:"grid_width"`
	GridHeight int `yaml:"grid_height"`

	// BaseTransmissionProbability is the per-contact infection probability
	// before layer, age and vaccine scaling.
	BaseTransmissionProbability float64 `yaml:"base_transmission_probability"`
	// ReinfectionRateMultiplier further scales transmission against
	// recovered agents.
	ReinfectionRateMultiplier float64 `yaml:"reinfection_rate_multiplier"`
	// SevereCaseFractionHint is the probability an initially seeded
	// infection starts severe.
	SevereCaseFractionHint float64 `yaml:"severe_case_fraction_hint"`
	// BaseDeathRate is the population-level reference death rate reported in
	// aggregates; individual death rolls use the age-stratified IFR.
	BaseDeathRate float64 `yaml:"base_death_rate"`
	// MeanRecoveryDays and RecoveryDaysStddev parameterize the recovery time
	// of initially seeded infections.
	MeanRecoveryDays   float64 `yaml:"mean_recovery_days"`
	RecoveryDaysStddev float64 `yaml:"recovery_days_stddev"`
	// InitialInfectedFraction is the per-agent probability of being seeded
	// infected at construction.
	InitialInfectedFraction float64 `yaml:"initial_infected_fraction"`
	// HospitalCapacityFraction of the population can be severe before the
	// overload feedback triples death probabilities.
	HospitalCapacityFraction float64 `yaml:"hospital_capacity_fraction"`

	// Intervention toggles.
	LockdownEnabled        bool `yaml:"lockdown_enabled"`
	ScreeningEnabled       bool `yaml:"screening_enabled"`
	PublicAwarenessEnabled bool `yaml:"public_awareness_enabled"`
	MandatoryMasksEnabled  bool `yaml:"mandatory_masks_enabled"`
	VaccinationEnabled     bool `yaml:"vaccination_enabled"`
	// DailyVaccinationRate is the fraction of susceptible unvaccinated
	// agents receiving a first dose per day when vaccination is enabled.
	DailyVaccinationRate float64 `yaml:"daily_vaccination_rate"`

	// RandomSeed seeds the single random source shared by network
	// construction and every agent.
	RandomSeed int64 `yaml:"random_seed"`

	// MaxDays clears the running flag once reached; zero means unbounded and
	// the host stops the loop itself.
	MaxDays int `yaml:"max_days"`

	// Tables overrides the disease parameter tables; nil uses params.Default.
	Tables *params.Tables `yaml:"-"`
}

// DefaultConfig returns the baseline parameterization: a small population on
// a 10x10 grid with no interventions.
func DefaultConfig() Config {
	return Config{
		PopulationSize:              10,
		GridWidth:                   10,
		GridHeight:                  10,
		BaseTransmissionProbability: 0.05,
		ReinfectionRateMultiplier:   0.02,
		SevereCaseFractionHint:      0.18,
		BaseDeathRate:               0.0193,
		MeanRecoveryDays:            21,
		RecoveryDaysStddev:          7,
		InitialInfectedFraction:     0.1,
		HospitalCapacityFraction:    0.01,
		DailyVaccinationRate:        0.01,
	}
}

// ErrInvalidConfig wraps all configuration validation failures.
var ErrInvalidConfig = errors.New("invalid model config")

// Validate fails fast on parameters that cannot produce a meaningful run.
func (c Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("%w: population_size must be positive, got %d", ErrInvalidConfig, c.PopulationSize)
	}
	if c.GridWidth <= 0 || c.GridHeight <= 0 {
		return fmt.Errorf("%w: grid %dx%d has no cells to place the population", ErrInvalidConfig, c.GridWidth, c.GridHeight)
	}
	if c.MeanRecoveryDays <= 0 {
		return fmt.Errorf("%w: mean_recovery_days must be positive, got %g", ErrInvalidConfig, c.MeanRecoveryDays)
	}
	if c.RecoveryDaysStddev < 0 {
		return fmt.Errorf("%w: recovery_days_stddev must be non-negative, got %g", ErrInvalidConfig, c.RecoveryDaysStddev)
	}
	if c.MaxDays < 0 {
		return fmt.Errorf("%w: max_days must be non-negative, got %d", ErrInvalidConfig, c.MaxDays)
	}
	probs := []struct {
		name  string
		value float64
	}{
		{"base_transmission_probability", c.BaseTransmissionProbability},
		{"reinfection_rate_multiplier", c.ReinfectionRateMultiplier},
		{"severe_case_fraction_hint", c.SevereCaseFractionHint},
		{"base_death_rate", c.BaseDeathRate},
		{"initial_infected_fraction", c.InitialInfectedFraction},
		{"hospital_capacity_fraction", c.HospitalCapacityFraction},
		{"daily_vaccination_rate", c.DailyVaccinationRate},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrInvalidConfig, p.name, p.value)
		}
	}
	return nil
}

func (c Config) tables() *params.Tables {
	if c.Tables != nil {
		return c.Tables
	}
	return params.Default()
}
