package sweep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/epiforge/episim/model"
)

// Scenario names one model configuration to run.
type Scenario struct {
	Name   string       `yaml:"name"`
	Config model.Config `yaml:"config"`
}

// scenarioFile is the on-disk layout of a scenario YAML document.
type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios reads scenarios from a YAML file. Zero-valued config fields
// fall back to model.DefaultConfig before validation.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sweep: read scenarios: %w", err)
	}

	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("sweep: parse scenarios %s: %w", path, err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("sweep: %s contains no scenarios", path)
	}

	for i := range file.Scenarios {
		s := &file.Scenarios[i]
		if s.Name == "" {
			return nil, fmt.Errorf("sweep: scenario %d in %s has no name", i, path)
		}
		applyDefaults(&s.Config)
		if err := s.Config.Validate(); err != nil {
			return nil, fmt.Errorf("sweep: scenario %q: %w", s.Name, err)
		}
	}
	return file.Scenarios, nil
}

// applyDefaults fills zero-valued required fields so scenario files only
// spell out what they change.
func applyDefaults(cfg *model.Config) {
	def := model.DefaultConfig()
	if cfg.PopulationSize == 0 {
		cfg.PopulationSize = def.PopulationSize
	}
	if cfg.GridWidth == 0 {
		cfg.GridWidth = def.GridWidth
	}
	if cfg.GridHeight == 0 {
		cfg.GridHeight = def.GridHeight
	}
	if cfg.BaseTransmissionProbability == 0 {
		cfg.BaseTransmissionProbability = def.BaseTransmissionProbability
	}
	if cfg.MeanRecoveryDays == 0 {
		cfg.MeanRecoveryDays = def.MeanRecoveryDays
		if cfg.RecoveryDaysStddev == 0 {
			cfg.RecoveryDaysStddev = def.RecoveryDaysStddev
		}
	}
	if cfg.SevereCaseFractionHint == 0 {
		cfg.SevereCaseFractionHint = def.SevereCaseFractionHint
	}
	if cfg.BaseDeathRate == 0 {
		cfg.BaseDeathRate = def.BaseDeathRate
	}
	if cfg.ReinfectionRateMultiplier == 0 {
		cfg.ReinfectionRateMultiplier = def.ReinfectionRateMultiplier
	}
	if cfg.InitialInfectedFraction == 0 {
		cfg.InitialInfectedFraction = def.InitialInfectedFraction
	}
	if cfg.HospitalCapacityFraction == 0 {
		cfg.HospitalCapacityFraction = def.HospitalCapacityFraction
	}
	if cfg.VaccinationEnabled && cfg.DailyVaccinationRate == 0 {
		cfg.DailyVaccinationRate = def.DailyVaccinationRate
	}
}

// baselineConfig is the shared starting point of the canonical scenarios.
func baselineConfig() model.Config {
	cfg := model.DefaultConfig()
	cfg.PopulationSize = 200
	cfg.GridWidth = 15
	cfg.GridHeight = 15
	cfg.InitialInfectedFraction = 0.05
	return cfg
}

// DefaultScenarios returns the canonical intervention comparison set.
func DefaultScenarios() []Scenario {
	noIntervention := baselineConfig()

	lockdown := baselineConfig()
	lockdown.LockdownEnabled = true

	masksAwareness := baselineConfig()
	masksAwareness.PublicAwarenessEnabled = true
	masksAwareness.MandatoryMasksEnabled = true

	vaccination := baselineConfig()
	vaccination.VaccinationEnabled = true
	vaccination.DailyVaccinationRate = 0.02

	full := baselineConfig()
	full.LockdownEnabled = true
	full.ScreeningEnabled = true
	full.PublicAwarenessEnabled = true
	full.MandatoryMasksEnabled = true
	full.VaccinationEnabled = true
	full.DailyVaccinationRate = 0.03

	return []Scenario{
		{Name: "No Intervention", Config: noIntervention},
		{Name: "Lockdown Only", Config: lockdown},
		{Name: "Masks + Awareness", Config: masksAwareness},
		{Name: "Vaccination Only", Config: vaccination},
		{Name: "Full Response", Config: full},
	}
}

// Grid spans a cartesian product of parameter values over a base
// configuration; nil slices keep the base value.
type Grid struct {
	BaseTransmissionProbability []float64
	InitialInfectedFraction     []float64
	BaseDeathRate               []float64
	SevereCaseFractionHint      []float64
	DailyVaccinationRate        []float64
	Lockdown                    []bool
	Vaccination                 []bool
}

// DefaultGrid mirrors the default sensitivity sweep ranges.
func DefaultGrid() Grid {
	return Grid{
		BaseTransmissionProbability: []float64{0.02, 0.05, 0.08, 0.12},
		InitialInfectedFraction:     []float64{0.02, 0.05, 0.10},
		BaseDeathRate:               []float64{0.01, 0.02, 0.04},
		SevereCaseFractionHint:      []float64{0.10, 0.18, 0.25},
		DailyVaccinationRate:        []float64{0.01, 0.03},
		Lockdown:                    []bool{false, true},
		Vaccination:                 []bool{false, true},
	}
}

// Scenarios expands the grid into one scenario per parameter combination.
func (g Grid) Scenarios(base model.Config) []Scenario {
	scenarios := []Scenario{{Name: "", Config: base}}

	expandFloat := func(name string, values []float64, set func(*model.Config, float64)) {
		if len(values) == 0 {
			return
		}
		var out []Scenario
		for _, s := range scenarios {
			for _, v := range values {
				cfg := s.Config
				set(&cfg, v)
				out = append(out, Scenario{
					Name:   appendParam(s.Name, name, fmt.Sprintf("%g", v)),
					Config: cfg,
				})
			}
		}
		scenarios = out
	}
	expandBool := func(name string, values []bool, set func(*model.Config, bool)) {
		if len(values) == 0 {
			return
		}
		var out []Scenario
		for _, s := range scenarios {
			for _, v := range values {
				cfg := s.Config
				set(&cfg, v)
				out = append(out, Scenario{
					Name:   appendParam(s.Name, name, fmt.Sprintf("%t", v)),
					Config: cfg,
				})
			}
		}
		scenarios = out
	}

	expandFloat("ptrans", g.BaseTransmissionProbability, func(c *model.Config, v float64) { c.BaseTransmissionProbability = v })
	expandFloat("initial_infected", g.InitialInfectedFraction, func(c *model.Config, v float64) { c.InitialInfectedFraction = v })
	expandFloat("death_rate", g.BaseDeathRate, func(c *model.Config, v float64) { c.BaseDeathRate = v })
	expandFloat("severe", g.SevereCaseFractionHint, func(c *model.Config, v float64) { c.SevereCaseFractionHint = v })
	expandFloat("vacc_rate", g.DailyVaccinationRate, func(c *model.Config, v float64) { c.DailyVaccinationRate = v })
	expandBool("lockdown", g.Lockdown, func(c *model.Config, v bool) { c.LockdownEnabled = v })
	expandBool("vaccination", g.Vaccination, func(c *model.Config, v bool) { c.VaccinationEnabled = v })

	return scenarios
}

func appendParam(prefix, name, value string) string {
	if prefix == "" {
		return name + "=" + value
	}
	return prefix + " " + name + "=" + value
}
