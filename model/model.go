package model

import (
	"math/rand"
	"sort"

	"github.com/epiforge/episim/agent"
	"github.com/epiforge/episim/contact"
	"github.com/epiforge/episim/logging"
	"github.com/epiforge/episim/params"
)

// Graduated lockdown thresholds: infected fraction -> mobility probability.
var lockdownSteps = []struct {
	infectedFraction float64
	mobility         float64
}{
	{0.10, 0.1},
	{0.05, 0.3},
	{0.02, 0.5},
}

const (
	awarenessDiscount = 0.7
	maskDiscount      = 0.5
	// Screening clamps symptom detection to this many days after exposure.
	screeningOnsetDays = 3
	// Days after a first dose before the second is administered.
	doseUpgradeDays = 21
	// Total wealth distributed across the population at construction.
	initialTotalWealth = 1e4
)

// Options holds dependency overrides passed to New.
type Options struct {
	// Logger receives construction and per-step diagnostics.
	Logger logging.Logger
}

// Aggregates are the coordinator's per-step counters, recomputed from a
// single pass over all agents.
type Aggregates struct {
	Susceptible int
	Exposed     int
	Infected    int
	Recovered   int
	Dead        int
	Severe      int
	Vaccinated  int

	R0 float64
	// DeathRate is the reported population-level death rate, tripled while
	// hospitals are over capacity.
	DeathRate float64

	WealthByStratum [agent.NumStrata]float64
}

// Model is the population coordinator. Step is the sole externally invoked
// mutator; none of the methods are safe for concurrent use.
type Model struct {
	cfg    Config
	tables *params.Tables
	rng    *rand.Rand
	logger logging.Logger

	persons []*agent.Person
	network *contact.Network
	grid    *grid

	day              int
	running          bool
	initialPtrans    float64
	ptrans           float64
	movProb          float64
	hospitalCapacity float64
	overloaded       bool

	// reportedInfected is the infected count published by the previous
	// step's aggregation; the lockdown policy reads it instead of the live
	// aggregate. It is zero until the first step completes, so the first
	// day always runs at full mobility.
	reportedInfected int

	agg       Aggregates
	snapshots []Snapshot
}

// New constructs a run: validates the configuration, creates and places the
// agents, seeds initial infections, builds the static contact network and
// distributes initial wealth, then emits the day-zero snapshot.
func New(cfg Config, optFns ...func(o *Options)) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := &Model{
		cfg:              cfg,
		tables:           cfg.tables(),
		rng:              rand.New(rand.NewSource(cfg.RandomSeed)),
		logger:           opts.Logger,
		grid:             newGrid(cfg.GridWidth, cfg.GridHeight),
		running:          true,
		initialPtrans:    cfg.BaseTransmissionProbability,
		ptrans:           cfg.BaseTransmissionProbability,
		movProb:          1.0,
		hospitalCapacity: cfg.HospitalCapacityFraction * float64(cfg.PopulationSize),
	}

	m.persons = make([]*agent.Person, cfg.PopulationSize)
	ages := make([]float64, cfg.PopulationSize)
	for i := range m.persons {
		p := agent.NewPerson(i, m.tables, m.rng)
		pos := m.grid.randomCell(m.rng)
		p.X, p.Y = pos.x, pos.y
		m.grid.place(p.ID, p.X, p.Y)

		if m.rng.Float64() < cfg.InitialInfectedFraction {
			recovery := int(cfg.MeanRecoveryDays + cfg.RecoveryDaysStddev*m.rng.NormFloat64())
			p.SeedInfection(recovery, m.rng.Float64() < cfg.SevereCaseFractionHint)
		}

		m.persons[i] = p
		ages[i] = p.Age
	}

	m.network = contact.Build(ages, m.rng)
	m.distributeWealth()

	hh, wp, sc := m.network.Counts()
	m.logger.Info("model constructed",
		"population", cfg.PopulationSize,
		"households", hh, "workplaces", wp, "schools", sc,
		"lockdown", cfg.LockdownEnabled,
		"screening", cfg.ScreeningEnabled,
		"public_awareness", cfg.PublicAwarenessEnabled,
		"masks", cfg.MandatoryMasksEnabled,
		"vaccination", cfg.VaccinationEnabled,
	)

	m.aggregate()
	m.collect()
	return m, nil
}

// distributeWealth splits the initial total wealth across strata along the
// Lorenz curve, evenly among each stratum's adults.
func (m *Model) distributeWealth() {
	for stratum := 0; stratum < agent.NumStrata; stratum++ {
		var adults []*agent.Person
		for _, p := range m.persons {
			if p.Stratum == agent.SocialStratum(stratum) && p.Age >= params.WorkingAgeMin {
				adults = append(adults, p)
			}
		}
		if len(adults) == 0 {
			continue
		}
		share := agent.LorenzCurve[stratum] * initialTotalWealth / float64(len(adults))
		for _, p := range adults {
			p.Wealth = share
		}
	}
}

// Step advances the simulation by exactly one day: intervention policy,
// every agent's step in re-randomized order, aggregation, snapshot.
func (m *Model) Step() Snapshot {
	m.day++
	m.applyInterventions()

	for _, i := range m.rng.Perm(len(m.persons)) {
		m.persons[i].Step(m, m.rng)
	}

	m.aggregate()
	m.reportedInfected = m.agg.Infected
	m.collect()

	if m.cfg.MaxDays > 0 && m.day >= m.cfg.MaxDays {
		m.running = false
	}

	m.logger.Debug("step complete",
		"day", m.day,
		"infected", m.agg.Infected,
		"severe", m.agg.Severe,
		"dead", m.agg.Dead,
		"r0", m.agg.R0,
	)
	return m.snapshots[len(m.snapshots)-1]
}

// applyInterventions runs before any agent acts. Transmission discounts are
// recomputed from the initial base probability every step rather than
// compounding across steps.
func (m *Model) applyInterventions() {
	m.movProb = 1.0
	if m.cfg.LockdownEnabled {
		infectedFraction := float64(m.reportedInfected) / float64(m.cfg.PopulationSize)
		for _, step := range lockdownSteps {
			if infectedFraction >= step.infectedFraction {
				m.movProb = step.mobility
				break
			}
		}
	}

	if m.cfg.ScreeningEnabled {
		for _, p := range m.persons {
			if p.State == agent.StateInfected {
				p.AccelerateSymptomOnset(screeningOnsetDays)
			}
		}
	}

	m.ptrans = m.initialPtrans
	if m.cfg.PublicAwarenessEnabled {
		m.ptrans *= awarenessDiscount
	}
	if m.cfg.MandatoryMasksEnabled {
		m.ptrans *= maskDiscount
	}

	if m.cfg.VaccinationEnabled {
		m.vaccinate()
	}
}

// vaccinate administers first doses to a fraction of the susceptible
// unvaccinated population, oldest first, and upgrades matured first doses.
func (m *Model) vaccinate() {
	var candidates []*agent.Person
	for _, p := range m.persons {
		if p.State == agent.StateSusceptible && !p.Vaccinated {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Age != candidates[j].Age {
				return candidates[i].Age > candidates[j].Age
			}
			return candidates[i].ID < candidates[j].ID
		})
		n := int(m.cfg.DailyVaccinationRate * float64(len(candidates)))
		if n < 1 {
			n = 1
		}
		if n > len(candidates) {
			n = len(candidates)
		}
		for _, p := range candidates[:n] {
			p.Vaccinate(params.Dose1, m.day)
		}
	}

	for _, p := range m.persons {
		if p.Vaccinated && p.Dose == params.Dose1 && m.day-p.VaccinationDay >= doseUpgradeDays {
			p.Vaccinate(params.Dose2, m.day)
		}
	}
}

// aggregate recomputes all counters from a single pass over the agents and
// publishes the hospital-overload flag consumed by the next day's death
// rolls.
func (m *Model) aggregate() {
	agg := Aggregates{DeathRate: m.cfg.BaseDeathRate}
	var induced []int

	for _, p := range m.persons {
		if p.Severity != agent.SeverityAsymptomatic && p.State != agent.StateInfected {
			panic("model: invariant violation: severity " + p.Severity.String() +
				" on " + p.State.String() + " agent")
		}

		switch p.State {
		case agent.StateSusceptible:
			agg.Susceptible++
		case agent.StateExposed:
			agg.Exposed++
		case agent.StateInfected:
			agg.Infected++
			if p.Severity == agent.SeveritySevere {
				agg.Severe++
			}
		case agent.StateRecovered:
			agg.Recovered++
		case agent.StateDied:
			agg.Dead++
		}

		if p.Vaccinated {
			agg.Vaccinated++
		}
		if p.InfectedOthers {
			induced = append(induced, p.InducedInfections)
		}
		agg.WealthByStratum[p.Stratum] += p.Wealth
	}

	if len(induced) > 0 {
		total := 0
		for _, n := range induced {
			total += n
		}
		agg.R0 = float64(total) / float64(len(induced))
	}

	m.overloaded = float64(agg.Severe) >= m.hospitalCapacity
	if m.overloaded {
		agg.DeathRate = m.cfg.BaseDeathRate * 3
	}
	m.agg = agg
}

// collect appends the current aggregates as a snapshot.
func (m *Model) collect() {
	pop := float64(m.cfg.PopulationSize)
	m.snapshots = append(m.snapshots, Snapshot{
		Day:              m.day,
		SusceptiblePct:   float64(m.agg.Susceptible) / pop * 100,
		ExposedPct:       float64(m.agg.Exposed) / pop * 100,
		InfectedPct:      float64(m.agg.Infected) / pop * 100,
		RecoveredPct:     float64(m.agg.Recovered) / pop * 100,
		Dead:             m.agg.Dead,
		Severe:           m.agg.Severe,
		HospitalCapacity: m.hospitalCapacity,
		VaccinatedPct:    float64(m.agg.Vaccinated) / pop * 100,
		R0:               m.agg.R0,
		WealthByStratum:  m.agg.WealthByStratum,
	})
}

// Day returns the current simulation day.
func (m *Model) Day() int { return m.day }

// Running reports whether the configured day bound, if any, has been
// reached. The host owns the decision to stop stepping.
func (m *Model) Running() bool { return m.running }

// Snapshots returns the time-ordered snapshot series including the day-zero
// record. The slice is owned by the model; callers must not mutate it.
func (m *Model) Snapshots() []Snapshot { return m.snapshots }

// Latest returns the most recent snapshot.
func (m *Model) Latest() Snapshot { return m.snapshots[len(m.snapshots)-1] }

// Aggregates returns the counters from the last aggregation pass.
func (m *Model) Aggregates() Aggregates { return m.agg }

// Persons exposes the agent collection for inspection.
func (m *Model) Persons() []*agent.Person { return m.persons }

// Network exposes the static contact topology.
func (m *Model) Network() *contact.Network { return m.network }

// Config returns the configuration the model was constructed with.
func (m *Model) Config() Config { return m.cfg }

// TransmissionProb implements agent.Env.
func (m *Model) TransmissionProb() float64 { return m.ptrans }

// MobilityProb implements agent.Env.
func (m *Model) MobilityProb() float64 { return m.movProb }

// ReinfectionRate implements agent.Env.
func (m *Model) ReinfectionRate() float64 { return m.cfg.ReinfectionRateMultiplier }

// HospitalOverloaded implements agent.Env.
func (m *Model) HospitalOverloaded() bool { return m.overloaded }

// Contacts implements agent.Env. Static layers resolve through the contact
// network; the community layer resolves from current grid co-location.
func (m *Model) Contacts(p *agent.Person, layer contact.Layer, rng *rand.Rand) []*agent.Person {
	ids, static := m.network.Contacts(p.ID, layer, rng, 0)
	if !static {
		ids = m.grid.cellmates(p.ID, p.X, p.Y)
	}
	out := make([]*agent.Person, len(ids))
	for i, id := range ids {
		out[i] = m.persons[id]
	}
	return out
}

// Relocate implements agent.Env: a uniformly random Moore-adjacent cell,
// including the current one.
func (m *Model) Relocate(p *agent.Person, rng *rand.Rand) {
	cells := m.grid.neighborhood(p.X, p.Y)
	next := cells[rng.Intn(len(cells))]
	m.grid.move(p.ID, p.X, p.Y, next.x, next.y)
	p.X, p.Y = next.x, next.y
}
