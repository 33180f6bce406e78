package agent

import "fmt"

// State is an individual's position in the disease progression. Transitions
// only move forward along Susceptible → Exposed → Infected → {Recovered,
// Died}; Recovered may re-enter Susceptible when immunity wanes; Died is
// terminal.
type State int

const (
	StateSusceptible State = iota
	StateExposed
	StateInfected
	StateRecovered
	StateDied
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateSusceptible:
		return "susceptible"
	case StateExposed:
		return "exposed"
	case StateInfected:
		return "infected"
	case StateRecovered:
		return "recovered"
	case StateDied:
		return "died"
	default:
		return "unknown"
	}
}

// Severity sub-classifies the Infected state: asymptomatic agents move and
// interact freely, quarantined agents stay home beyond household contacts,
// severe agents are hospitalized and isolated. It is meaningful only while
// Infected and resets to Asymptomatic on recovery.
type Severity int

const (
	SeverityAsymptomatic Severity = iota
	SeverityQuarantined
	SeveritySevere
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityAsymptomatic:
		return "asymptomatic"
	case SeverityQuarantined:
		return "quarantined"
	case SeveritySevere:
		return "severe"
	default:
		return "unknown"
	}
}

// SocialStratum is the five-level ordinal wealth class of an agent.
type SocialStratum int

const (
	StratumMostPoor SocialStratum = iota
	StratumPoor
	StratumWorkingClass
	StratumRich
	StratumMostRich
)

// NumStrata is the number of social strata.
const NumStrata = 5

// String returns the string representation of the stratum.
func (s SocialStratum) String() string {
	switch s {
	case StratumMostPoor:
		return "most_poor"
	case StratumPoor:
		return "poor"
	case StratumWorkingClass:
		return "working_class"
	case StratumRich:
		return "rich"
	case StratumMostRich:
		return "most_rich"
	default:
		return "unknown"
	}
}

// LorenzCurve is the wealth share per stratum, poorest first.
var LorenzCurve = [NumStrata]float64{0.04, 0.08, 0.13, 0.20, 0.55}

// BasicIncome returns the per-step base income of a stratum, normalized so
// the poorest stratum earns one unit.
func BasicIncome(s SocialStratum) float64 {
	return LorenzCurve[s] / LorenzCurve[StratumMostPoor]
}

func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic("agent: invariant violation: " + fmt.Sprintf(format, args...))
	}
}
