package params

import "math"

// DoseLevel identifies how far along the vaccination schedule an agent is.
type DoseLevel int

const (
	DoseNone DoseLevel = iota
	Dose1
	Dose2
	DoseBooster
)

// String returns the string representation of the dose level.
func (d DoseLevel) String() string {
	switch d {
	case DoseNone:
		return "none"
	case Dose1:
		return "dose_1"
	case Dose2:
		return "dose_2"
	case DoseBooster:
		return "booster"
	default:
		return "unknown"
	}
}

// EfficacyDimension selects which protective effect of a vaccine dose is
// being queried.
type EfficacyDimension int

const (
	// EfficacyInfection is the reduction in infection probability.
	EfficacyInfection EfficacyDimension = iota
	// EfficacySymptomatic is the reduction in symptomatic disease.
	EfficacySymptomatic
	// EfficacySevere is the reduction in severe disease.
	EfficacySevere
	// EfficacyDeath is the reduction in death.
	EfficacyDeath
)

// DoseParams holds the peak efficacies of one dose level and the number of
// days after administration needed to reach them.
type DoseParams struct {
	Infection    float64
	Symptomatic  float64
	Severe       float64
	Death        float64
	DaysToEffect int
}

func (p DoseParams) value(dim EfficacyDimension) float64 {
	switch dim {
	case EfficacyInfection:
		return p.Infection
	case EfficacySymptomatic:
		return p.Symptomatic
	case EfficacySevere:
		return p.Severe
	case EfficacyDeath:
		return p.Death
	default:
		return 0
	}
}

// VaccineSchedule maps dose levels to their peak efficacies and carries the
// waning half-life shared across all dose levels and dimensions.
type VaccineSchedule struct {
	Doses              map[DoseLevel]DoseParams
	WaningHalfLifeDays float64
}

// DefaultVaccineSchedule returns the calibrated two-dose-plus-booster
// schedule with a 120-day waning half-life.
func DefaultVaccineSchedule() VaccineSchedule {
	return VaccineSchedule{
		Doses: map[DoseLevel]DoseParams{
			Dose1:       {Infection: 0.52, Symptomatic: 0.65, Severe: 0.80, Death: 0.85, DaysToEffect: 14},
			Dose2:       {Infection: 0.79, Symptomatic: 0.90, Severe: 0.95, Death: 0.98, DaysToEffect: 7},
			DoseBooster: {Infection: 0.85, Symptomatic: 0.95, Severe: 0.98, Death: 0.99, DaysToEffect: 7},
		},
		WaningHalfLifeDays: 120,
	}
}

// Efficacy returns the current protection of a dose along one dimension,
// given the days elapsed since administration: a linear ramp up to the peak
// value during the onset window, then exponential decay with the schedule's
// half-life. DoseNone always yields zero.
func (s VaccineSchedule) Efficacy(dose DoseLevel, daysSince int, dim EfficacyDimension) float64 {
	p, ok := s.Doses[dose]
	if !ok || daysSince < 0 {
		return 0
	}
	peak := p.value(dim)
	if daysSince < p.DaysToEffect {
		return peak * float64(daysSince) / float64(p.DaysToEffect)
	}
	waningDays := float64(daysSince - p.DaysToEffect)
	return peak * math.Pow(0.5, waningDays/s.WaningHalfLifeDays)
}
