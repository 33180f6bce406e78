package model

import "github.com/epiforge/episim/agent"

// Snapshot is the per-step aggregate record consumed by external
// visualization and reporting collaborators. It carries no references into
// agent state and appends to a time-ordered table.
type Snapshot struct {
	Day int

	SusceptiblePct float64
	ExposedPct     float64
	InfectedPct    float64
	RecoveredPct   float64

	Dead   int
	Severe int

	// HospitalCapacity is the absolute severe-case capacity.
	HospitalCapacity float64

	VaccinatedPct float64

	// R0 is the mean number of secondary infections over agents that caused
	// at least one.
	R0 float64

	// WealthByStratum is the total wealth per social stratum, poorest first.
	WealthByStratum [agent.NumStrata]float64
}
