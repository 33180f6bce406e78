package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiforge/episim/agent"
	"github.com/epiforge/episim/contact"
	"github.com/epiforge/episim/params"
)

// scenarioConfig is the reference setup used across behavior tests.
func scenarioConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 200
	cfg.GridWidth = 15
	cfg.GridHeight = 15
	cfg.InitialInfectedFraction = 0.05
	cfg.RandomSeed = 42
	return cfg
}

func mustNew(t *testing.T, cfg Config) *Model {
	t.Helper()
	m, err := New(cfg)
	require.NoError(t, err)
	return m
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero population", func(c *Config) { c.PopulationSize = 0 }},
		{"negative population", func(c *Config) { c.PopulationSize = -5 }},
		{"zero width grid", func(c *Config) { c.GridWidth = 0 }},
		{"zero height grid", func(c *Config) { c.GridHeight = 0 }},
		{"transmission above one", func(c *Config) { c.BaseTransmissionProbability = 1.5 }},
		{"negative transmission", func(c *Config) { c.BaseTransmissionProbability = -0.1 }},
		{"reinfection above one", func(c *Config) { c.ReinfectionRateMultiplier = 2 }},
		{"initial infected above one", func(c *Config) { c.InitialInfectedFraction = 1.01 }},
		{"negative vaccination rate", func(c *Config) { c.DailyVaccinationRate = -0.5 }},
		{"zero recovery days", func(c *Config) { c.MeanRecoveryDays = 0 }},
		{"negative recovery stddev", func(c *Config) { c.RecoveryDaysStddev = -1 }},
		{"negative max days", func(c *Config) { c.MaxDays = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(DefaultConfig())
	assert.NoError(t, err)
}

func TestConstructionSeedsInfections(t *testing.T) {
	m := mustNew(t, scenarioConfig())

	agg := m.Aggregates()
	assert.Greater(t, agg.Infected, 0, "5%% of 200 should seed some infections")
	assert.Equal(t, 200, agg.Susceptible+agg.Exposed+agg.Infected+agg.Recovered+agg.Dead)

	// Day-zero snapshot reflects the seeded state.
	snaps := m.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, 0, snaps[0].Day)
	assert.Greater(t, snaps[0].InfectedPct, 0.0)
}

func TestDeterminismUnderFixedSeed(t *testing.T) {
	a := mustNew(t, scenarioConfig())
	b := mustNew(t, scenarioConfig())

	for i := 0; i < 30; i++ {
		a.Step()
		b.Step()
	}
	require.Equal(t, a.Snapshots(), b.Snapshots())
}

func TestDifferentSeedsDiverge(t *testing.T) {
	cfgA := scenarioConfig()
	cfgB := scenarioConfig()
	cfgB.RandomSeed = 43

	a := mustNew(t, cfgA)
	b := mustNew(t, cfgB)
	for i := 0; i < 20; i++ {
		a.Step()
		b.Step()
	}
	assert.NotEqual(t, a.Snapshots(), b.Snapshots())
}

func TestPopulationConservation(t *testing.T) {
	m := mustNew(t, scenarioConfig())

	for day := 0; day < 60; day++ {
		m.Step()
		agg := m.Aggregates()
		total := agg.Susceptible + agg.Exposed + agg.Infected + agg.Recovered + agg.Dead
		require.Equal(t, 200, total, "day %d", day)
	}
}

func TestTerminalAbsorptionAndStateClosure(t *testing.T) {
	// Fatal parameterization: every seeded case starts severe and the IFR is
	// pinned to one, so the death path is exercised within the horizon.
	tables := params.Default()
	bands := tables.IFR.Bands()
	fatal := make([]float64, len(bands))
	for i := range fatal {
		fatal[i] = 1
	}
	tables.IFR = params.NewAgeTable(bands, fatal)

	cfg := scenarioConfig()
	cfg.SevereCaseFractionHint = 1
	cfg.Tables = tables
	m := mustNew(t, cfg)

	died := make(map[int]bool)
	for day := 0; day < 60; day++ {
		m.Step()
		for _, p := range m.Persons() {
			if died[p.ID] {
				require.Equal(t, agent.StateDied, p.State, "agent %d resurrected on day %d", p.ID, day)
			}
			if p.State == agent.StateDied {
				died[p.ID] = true
			}
			if p.State != agent.StateInfected {
				require.Equal(t, agent.SeverityAsymptomatic, p.Severity,
					"agent %d carries severity %s while %s", p.ID, p.Severity, p.State)
			}
		}
	}
	assert.NotEmpty(t, died, "seeded severe cases should produce at least one death in 60 days")
}

func TestTimerOrdering(t *testing.T) {
	m := mustNew(t, scenarioConfig())

	for day := 0; day < 60; day++ {
		m.Step()
		for _, p := range m.Persons() {
			if p.IncubationDays > 0 {
				require.GreaterOrEqual(t, p.IncubationDays, 1)
				require.GreaterOrEqual(t, p.RecoveryDays, p.IncubationDays,
					"agent %d: recovery %d < incubation %d", p.ID, p.RecoveryDays, p.IncubationDays)
			}
		}
	}
}

func TestEpidemicGrowsWithoutInterventions(t *testing.T) {
	m := mustNew(t, scenarioConfig())
	initial := m.Latest().InfectedPct

	peakInfected := initial
	peakR0 := 0.0
	for day := 0; day < 30; day++ {
		snap := m.Step()
		if snap.InfectedPct > peakInfected {
			peakInfected = snap.InfectedPct
		}
		if snap.R0 > peakR0 {
			peakR0 = snap.R0
		}
	}

	assert.Greater(t, peakInfected, initial, "infection should spread within 30 days")
	assert.Greater(t, peakR0, 1.0, "early growth phase should push R0 above 1")
}

// adultCohortTables builds a population of working-age adults with flat unit
// coefficients and no symptomatic or severe progression: every agent holds a
// workplace membership, newly infected agents stay mobile for their whole
// infectious period, and household transmission alone sustains the epidemic
// under any mobility tier. Infection curves then depend on contact structure
// and mobility only, which is what the lockdown comparison measures.
func adultCohortTables() *params.Tables {
	tables := params.Default()
	bands := tables.AgeDistribution.Bands()
	flat := func(v float64) params.AgeTable {
		values := make([]float64, len(bands))
		for i := range values {
			values[i] = v
		}
		return params.NewAgeTable(bands, values)
	}

	weights := make([]float64, len(bands))
	for i, b := range bands {
		if b.Lo > params.SchoolAgeMax && b.Hi <= params.WorkingAgeMax {
			weights[i] = 1
		}
	}

	tables.AgeDistribution = params.NewAgeTable(bands, weights)
	tables.Susceptibility = flat(1)
	tables.Transmissibility = flat(1)
	tables.Symptomatic = flat(0)
	tables.Hospitalization = flat(0)
	tables.IFR = flat(0)
	return tables
}

func TestLockdownFlattensTheCurve(t *testing.T) {
	cfg := scenarioConfig()
	cfg.BaseTransmissionProbability = 0.1
	cfg.Tables = adultCohortTables()
	baseline := mustNew(t, cfg)

	lockCfg := cfg
	lockCfg.LockdownEnabled = true
	lockdown := mustNew(t, lockCfg)

	peak := func(m *Model) (pct float64, day int) {
		for i := 0; i < 60; i++ {
			snap := m.Step()
			if snap.InfectedPct > pct {
				pct, day = snap.InfectedPct, snap.Day
			}
		}
		return
	}

	basePeak, basePeakDay := peak(baseline)
	lockPeak, lockPeakDay := peak(lockdown)

	assert.Less(t, lockPeak, basePeak, "lockdown must lower the peak")
	assert.GreaterOrEqual(t, lockPeakDay, basePeakDay, "lockdown must not accelerate the peak")
}

func TestLockdownReadsPreviousDayCount(t *testing.T) {
	cfg := scenarioConfig()
	cfg.LockdownEnabled = true
	cfg.InitialInfectedFraction = 1
	m := mustNew(t, cfg)

	// No count has been published before the first step, so day one runs at
	// full mobility even with the whole population seeded infected.
	m.Step()
	assert.Equal(t, 1.0, m.MobilityProb())

	// Day two reads day one's published count and drops to the lowest tier.
	m.Step()
	assert.Equal(t, 0.1, m.MobilityProb())
}

func TestScreeningAcceleratesQuarantine(t *testing.T) {
	cfg := scenarioConfig()
	cfg.ScreeningEnabled = true
	m := mustNew(t, cfg)
	m.Step()

	for _, p := range m.Persons() {
		if p.State == agent.StateInfected {
			assert.LessOrEqual(t, p.SymptomOnset, screeningOnsetDays)
		}
	}
}

func TestTransmissionDiscountsDoNotCompound(t *testing.T) {
	cfg := scenarioConfig()
	cfg.PublicAwarenessEnabled = true
	cfg.MandatoryMasksEnabled = true
	m := mustNew(t, cfg)

	want := cfg.BaseTransmissionProbability * awarenessDiscount * maskDiscount
	for day := 0; day < 10; day++ {
		m.Step()
		assert.InDelta(t, want, m.TransmissionProb(), 1e-12, "day %d", day)
	}
}

func TestVaccinationRollout(t *testing.T) {
	cfg := scenarioConfig()
	cfg.VaccinationEnabled = true
	cfg.DailyVaccinationRate = 0.02
	m := mustNew(t, cfg)

	prev := m.Latest().VaccinatedPct
	for day := 0; day < 90; day++ {
		snap := m.Step()
		require.GreaterOrEqual(t, snap.VaccinatedPct, prev, "vaccinated percentage regressed on day %d", day)
		prev = snap.VaccinatedPct
	}

	// Once no susceptible unvaccinated agents remain, coverage plateaus.
	unvaccinated := 0
	for _, p := range m.Persons() {
		if p.State == agent.StateSusceptible && !p.Vaccinated {
			unvaccinated++
		}
	}
	if unvaccinated == 0 {
		before := m.Latest().VaccinatedPct
		assert.Equal(t, before, m.Step().VaccinatedPct)
	}

	// Matured first doses get upgraded.
	upgraded := false
	for _, p := range m.Persons() {
		if p.Dose == params.Dose2 {
			upgraded = true
			break
		}
	}
	assert.True(t, upgraded, "some first doses should mature to second doses in 90 days")
}

func TestVaccinationPrioritizesOldest(t *testing.T) {
	cfg := scenarioConfig()
	cfg.VaccinationEnabled = true
	cfg.DailyVaccinationRate = 0.02
	m := mustNew(t, cfg)
	m.Step()

	var maxUnvaccinated, minVaccinated float64
	minVaccinated = 200
	for _, p := range m.Persons() {
		if p.State != agent.StateSusceptible {
			continue
		}
		if p.Vaccinated && p.Age < minVaccinated {
			minVaccinated = p.Age
		}
		if !p.Vaccinated && p.Age > maxUnvaccinated {
			maxUnvaccinated = p.Age
		}
	}
	assert.GreaterOrEqual(t, minVaccinated, maxUnvaccinated,
		"every vaccinated susceptible agent should be older than every unvaccinated one")
}

func TestLockdownMobilitySteps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PopulationSize = 100
	cfg.LockdownEnabled = true
	cfg.InitialInfectedFraction = 0
	m := mustNew(t, cfg)

	tests := []struct {
		infected int
		want     float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 0.5},
		{5, 0.3},
		{10, 0.1},
		{50, 0.1},
	}
	for _, tt := range tests {
		m.reportedInfected = tt.infected
		m.applyInterventions()
		assert.Equal(t, tt.want, m.MobilityProb(), "infected=%d", tt.infected)
	}
}

func TestIsolatedAgentPopulation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PopulationSize = 1
	cfg.InitialInfectedFraction = 0
	m := mustNew(t, cfg)

	p := m.Persons()[0]
	for _, layer := range []contact.Layer{contact.LayerHousehold, contact.LayerWorkplace, contact.LayerSchool} {
		assert.Empty(t, m.Contacts(p, layer, m.rng), "%s of one has no contacts", layer)
	}

	// A lone agent stays susceptible forever.
	for day := 0; day < 30; day++ {
		m.Step()
	}
	assert.Equal(t, agent.StateSusceptible, p.State)
}

func TestHospitalOverloadFeedback(t *testing.T) {
	cfg := scenarioConfig()
	cfg.HospitalCapacityFraction = 0 // any severe case overloads
	cfg.SevereCaseFractionHint = 1
	m := mustNew(t, cfg)

	assert.True(t, m.HospitalOverloaded())
	assert.Equal(t, cfg.BaseDeathRate*3, m.Aggregates().DeathRate)
}

func TestRunningFlagHonorsMaxDays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDays = 5
	m := mustNew(t, cfg)

	for i := 0; i < 5; i++ {
		assert.True(t, m.Running())
		m.Step()
	}
	assert.False(t, m.Running())

	// Without a bound the model never self-terminates.
	unbounded := mustNew(t, DefaultConfig())
	for i := 0; i < 100; i++ {
		unbounded.Step()
	}
	assert.True(t, unbounded.Running())
}

func TestWealthDistributionAndAggregation(t *testing.T) {
	m := mustNew(t, scenarioConfig())

	var total float64
	for _, w := range m.Latest().WealthByStratum {
		total += w
	}
	// Strata without adults keep nothing; everything else sums to the pot.
	assert.LessOrEqual(t, total, initialTotalWealth+1e-6)
	assert.Greater(t, total, initialTotalWealth*0.5)

	m.Step()
	var after float64
	for _, w := range m.Latest().WealthByStratum {
		after += w
	}
	assert.NotEqual(t, total, after, "incomes and expenditures should move wealth")
}

func TestSnapshotSeriesIsAppendOnly(t *testing.T) {
	m := mustNew(t, scenarioConfig())
	for i := 0; i < 10; i++ {
		m.Step()
	}

	snaps := m.Snapshots()
	require.Len(t, snaps, 11)
	for i, snap := range snaps {
		assert.Equal(t, i, snap.Day)
		assert.InDelta(t, 2.0, snap.HospitalCapacity, 1e-12)
	}
}
