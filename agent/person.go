package agent

import (
	"math/rand"

	"github.com/epiforge/episim/contact"
	"github.com/epiforge/episim/params"
)

// asymptomaticOnset is the symptom-onset sentinel for agents that will never
// develop symptoms, far beyond any recovery time so quarantine never triggers.
const asymptomaticOnset = 999

// Env is everything a Person needs from the population coordinator during a
// step. The coordinator implements it; agents never hold a back-reference to
// the coordinator itself.
type Env interface {
	// Day is the current simulation day.
	Day() int
	// TransmissionProb is the current effective base transmission probability.
	TransmissionProb() float64
	// MobilityProb is the current mobility probability set by interventions.
	MobilityProb() float64
	// ReinfectionRate scales transmission probability against recovered agents.
	ReinfectionRate() float64
	// HospitalOverloaded reports whether severe cases met hospital capacity
	// as of the last aggregation pass.
	HospitalOverloaded() bool
	// Contacts resolves the agents p meets today in the given layer,
	// including the grid-resolved community layer.
	Contacts(p *Person, layer contact.Layer, rng *rand.Rand) []*Person
	// Relocate moves p to a uniformly random adjacent grid cell, including
	// staying put.
	Relocate(p *Person, rng *rand.Rand)
}

// Person is one simulated individual.
type Person struct {
	ID      int
	Age     float64
	Stratum SocialStratum

	State    State
	Severity Severity

	// Timers, in simulation days. InfectionDay is the day of last exposure;
	// RecoveryDays counts from exposure to resolution and is always at least
	// IncubationDays; SymptomOnset is the offset after exposure at which
	// quarantine triggers; ImmunityWaneDay is the absolute day a recovered
	// agent reverts to susceptible.
	InfectionDay    int
	IncubationDays  int
	RecoveryDays    int
	SymptomOnset    int
	ImmunityWaneDay int

	// Age-stratified coefficients, resolved once at creation.
	Susceptibility      float64
	Transmissibility    float64
	IFR                 float64
	HospitalizationRate float64
	SymptomaticRate     float64

	// Vaccination record.
	Vaccinated     bool
	Dose           params.DoseLevel
	VaccinationDay int

	// Secondary infections caused by this agent.
	InducedInfections int
	InfectedOthers    bool

	// Economic scalars, consumed by external collaborators.
	Wealth      float64
	Income      float64
	Expenditure float64

	// Grid position, owned jointly with the coordinator's grid index.
	X, Y int

	tables *params.Tables
}

// NewPerson creates a susceptible individual with a sampled age, a random
// social stratum and age-resolved disease coefficients.
func NewPerson(id int, tables *params.Tables, rng *rand.Rand) *Person {
	age := tables.SampleAge(rng)
	return &Person{
		ID:                  id,
		Age:                 age,
		Stratum:             SocialStratum(rng.Intn(NumStrata)),
		State:               StateSusceptible,
		Severity:            SeverityAsymptomatic,
		SymptomOnset:        int(10 + 4*rng.NormFloat64()),
		Susceptibility:      tables.Susceptibility.Lookup(age),
		Transmissibility:    tables.Transmissibility.Lookup(age),
		IFR:                 tables.IFR.Lookup(age),
		HospitalizationRate: tables.Hospitalization.Lookup(age),
		SymptomaticRate:     tables.Symptomatic.Lookup(age),
		tables:              tables,
	}
}

// SeedInfection makes the person infected at construction time, before the
// first step. Recovery is recoveryDays from day zero; severe cases start
// hospitalized.
func (p *Person) SeedInfection(recoveryDays int, severe bool) {
	invariant(p.State == StateSusceptible, "seeding infection on %s agent %d", p.State, p.ID)
	p.State = StateInfected
	p.InfectionDay = 0
	if recoveryDays < 1 {
		recoveryDays = 1
	}
	p.RecoveryDays = recoveryDays
	if severe {
		p.setSeverity(SeveritySevere)
	}
}

// Vaccinate administers a dose on the given day.
func (p *Person) Vaccinate(dose params.DoseLevel, day int) {
	p.Vaccinated = true
	p.Dose = dose
	p.VaccinationDay = day
}

// VaccineProtection returns the person's current vaccine efficacy along one
// dimension, accounting for onset ramp and waning. Unvaccinated agents have
// zero protection.
func (p *Person) VaccineProtection(day int, dim params.EfficacyDimension) float64 {
	if !p.Vaccinated {
		return 0
	}
	return p.tables.Vaccine.Efficacy(p.Dose, day-p.VaccinationDay, dim)
}

// AccelerateSymptomOnset clamps the symptom-onset offset down to maxDelay,
// used by the screening intervention to speed up quarantine.
func (p *Person) AccelerateSymptomOnset(maxDelay int) {
	if p.SymptomOnset > maxDelay {
		p.SymptomOnset = maxDelay
	}
}

// setSeverity guards the invariant that severity is only meaningful while
// infected.
func (p *Person) setSeverity(sev Severity) {
	invariant(sev == SeverityAsymptomatic || p.State == StateInfected,
		"severity %s set while agent %d is %s", sev, p.ID, p.State)
	p.Severity = sev
}

// Step advances the person by one simulated day: status transition, grid
// movement, contact interaction, wealth update. Dead agents are a no-op.
func (p *Person) Step(env Env, rng *rand.Rand) {
	if p.State == StateDied {
		return
	}
	p.status(env, rng)
	p.move(env, rng)
	p.interact(env, rng)
	p.updateWealth(env, rng)
}

// status runs the daily state transition rules.
func (p *Person) status(env Env, rng *rand.Rand) {
	day := env.Day()
	switch p.State {
	case StateExposed:
		if day-p.InfectionDay >= p.IncubationDays {
			p.State = StateInfected
			if rng.Float64() < p.SymptomaticRate {
				onset := int(5 + 2*rng.NormFloat64())
				if onset < 1 {
					onset = 1
				}
				p.SymptomOnset = onset
			} else {
				p.SymptomOnset = asymptomaticOnset
			}
		}

	case StateInfected:
		if p.Severity == SeveritySevere {
			if rng.Float64() < p.dailyDeathProb(env) {
				p.State = StateDied
				p.Severity = SeverityAsymptomatic
				return
			}
		} else {
			// Non-severe cases may deteriorate, scaled down by vaccine
			// protection against severe disease.
			rate := p.HospitalizationRate * (1 - p.VaccineProtection(day, params.EfficacySevere))
			if rng.Float64() < rate/float64(max(1, p.RecoveryDays)) {
				p.setSeverity(SeveritySevere)
			}
		}

		timeInfected := day - p.InfectionDay
		if timeInfected >= p.SymptomOnset && p.Severity != SeveritySevere {
			p.setSeverity(SeverityQuarantined)
		}
		if timeInfected >= p.RecoveryDays {
			p.State = StateRecovered
			p.Severity = SeverityAsymptomatic
			p.ImmunityWaneDay = day + params.SampleImmunityDuration(rng)
		}

	case StateRecovered:
		if day >= p.ImmunityWaneDay {
			p.State = StateSusceptible
		}

	case StateDied:
		// Terminal.
	}
}

// dailyDeathProb spreads the age-stratified IFR over the expected remaining
// severe duration, triples it when hospitals are over capacity, and scales
// it down by vaccine protection against death.
func (p *Person) dailyDeathProb(env Env) float64 {
	severeDuration := max(1, p.RecoveryDays-p.SymptomOnset)
	prob := min(0.99, p.IFR/float64(severeDuration))
	if env.HospitalOverloaded() {
		prob = min(0.99, prob*3)
	}
	return prob * (1 - p.VaccineProtection(env.Day(), params.EfficacyDeath))
}

// move relocates the agent on the grid. Dead and hospitalized agents stay
// put; everyone else moves with the current mobility probability.
func (p *Person) move(env Env, rng *rand.Rand) {
	if p.State == StateDied || p.Severity == SeveritySevere {
		return
	}
	if rng.Float64() < env.MobilityProb() {
		env.Relocate(p, rng)
	}
}

// interact attempts transmission across the contact layers. Household
// contacts are always attempted; a quarantined agent stops there; the other
// layers are each gated by an independent mobility coin flip.
func (p *Person) interact(env Env, rng *rand.Rand) {
	if p.State != StateInfected || p.Severity == SeveritySevere {
		return
	}

	p.infectAll(env.Contacts(p, contact.LayerHousehold, rng), contact.LayerHousehold, env, rng)

	if p.Severity == SeverityQuarantined {
		return
	}

	for _, layer := range []contact.Layer{contact.LayerWorkplace, contact.LayerSchool, contact.LayerCommunity} {
		if rng.Float64() < env.MobilityProb() {
			p.infectAll(env.Contacts(p, layer, rng), layer, env, rng)
		}
	}
}

func (p *Person) infectAll(others []*Person, layer contact.Layer, env Env, rng *rand.Rand) {
	for _, other := range others {
		if other.State != StateDied {
			p.Infect(other, layer, env, rng)
		}
	}
}

// Infect attempts to transmit to one other agent through the given layer.
// The effective probability combines the current base probability, the layer
// multiplier, the sender's transmissibility, the receiver's susceptibility
// and the receiver's vaccine protection; against recovered receivers it is
// further scaled by the reinfection rate. A successful roll turns a
// susceptible or recovered receiver exposed and sets its timers; a roll
// against an already-exposed receiver is absorbed.
func (p *Person) Infect(other *Person, layer contact.Layer, env Env, rng *rand.Rand) {
	if p.State != StateInfected {
		return
	}

	ptrans := env.TransmissionProb() *
		layer.TransmissionMultiplier() *
		p.Transmissibility *
		other.Susceptibility *
		(1 - other.VaccineProtection(env.Day(), params.EfficacyInfection))

	switch other.State {
	case StateSusceptible, StateExposed:
		if rng.Float64() < ptrans && other.State == StateSusceptible {
			p.expose(other, env, rng)
		}
	case StateRecovered:
		if rng.Float64() < ptrans*env.ReinfectionRate() {
			p.expose(other, env, rng)
		}
	}
}

func (p *Person) expose(other *Person, env Env, rng *rand.Rand) {
	other.State = StateExposed
	other.InfectionDay = env.Day()
	other.IncubationDays = params.SampleIncubationPeriod(rng)
	other.RecoveryDays = other.IncubationDays + params.SampleInfectiousDuration(rng)
	p.InducedInfections++
	p.InfectedOthers = true
}

// updateWealth earns income for working-age agents that are symptom-free and
// actually went out today, and spends a random share of the stratum's base
// income regardless.
func (p *Person) updateWealth(env Env, rng *rand.Rand) {
	base := BasicIncome(p.Stratum)
	p.Income = 0
	if p.State != StateDied && p.Severity == SeverityAsymptomatic && p.Age >= params.WorkingAgeMin {
		if rng.Float64() < env.MobilityProb() {
			p.Income = base + rng.Float64()*rng.Float64()*base
		}
	}
	p.Expenditure = rng.Float64() * base
	p.Wealth += p.Income - p.Expenditure
}
