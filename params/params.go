package params

import (
	"fmt"
	"math"
	"math/rand"
)

// Age thresholds for the static contact layers.
const (
	SchoolAgeMin  = 5.0
	SchoolAgeMax  = 22.0
	WorkingAgeMin = 18.0
	WorkingAgeMax = 65.0
)

// Incubation and infectious period distribution parameters.
const (
	IncubationMeanDays    = 5.1
	incubationSigma       = 0.3
	InfectiousMeanDays    = 10.0
	InfectiousStddevDays  = 3.0
	minIncubationDays     = 1
	minInfectiousDays     = 3
	NaturalImmunityMean   = 180
	NaturalImmunityStddev = 30
	minImmunityDays       = 30
)

// Band is a half-open age interval [Lo, Hi). The final band of a table is
// treated as open-ended: any age at or above its lower bound resolves to it.
type Band struct {
	Lo, Hi float64
}

func (b Band) contains(age float64) bool { return age >= b.Lo && age < b.Hi }

// AgeTable maps age bands to a rate. Bands must be sorted, contiguous and
// non-empty; NewAgeTable panics otherwise since the tables are compiled-in
// configuration, not user input.
type AgeTable struct {
	bands  []Band
	values []float64
}

// NewAgeTable builds a table from parallel band and value slices.
func NewAgeTable(bands []Band, values []float64) AgeTable {
	if len(bands) == 0 || len(bands) != len(values) {
		panic(fmt.Sprintf("params: malformed age table: %d bands, %d values", len(bands), len(values)))
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].Lo != bands[i-1].Hi {
			panic(fmt.Sprintf("params: age bands not contiguous at index %d", i))
		}
	}
	return AgeTable{bands: bands, values: values}
}

// Lookup resolves the band containing age and returns its value. Ages beyond
// the last boundary fall into the final band.
func (t AgeTable) Lookup(age float64) float64 {
	for i, b := range t.bands {
		if b.contains(age) {
			return t.values[i]
		}
	}
	return t.values[len(t.values)-1]
}

// Bands returns the table's age bands.
func (t AgeTable) Bands() []Band { return t.bands }

// Tables bundles all age-stratified rates, the population age distribution
// and the vaccine schedule for one simulation run.
type Tables struct {
	Susceptibility   AgeTable
	Transmissibility AgeTable
	IFR              AgeTable
	Hospitalization  AgeTable
	Symptomatic      AgeTable

	// AgeDistribution holds categorical sampling weights per band.
	AgeDistribution AgeTable

	Vaccine VaccineSchedule
}

var defaultBands = []Band{
	{0, 10}, {10, 20}, {20, 30}, {30, 40}, {40, 50},
	{50, 60}, {60, 70}, {70, 80}, {80, 120},
}

// Default returns the calibrated parameter set (IFR after Verity/Levin 2020,
// hospitalization after the CDC planning scenarios, susceptibility after
// Davies 2020, contact-survey-derived transmissibility).
func Default() *Tables {
	return &Tables{
		IFR: NewAgeTable(defaultBands, []float64{
			0.00002, 0.00006, 0.0002, 0.0005, 0.002, 0.006, 0.02, 0.06, 0.10,
		}),
		Hospitalization: NewAgeTable(defaultBands, []float64{
			0.001, 0.003, 0.012, 0.032, 0.049, 0.102, 0.166, 0.243, 0.273,
		}),
		Symptomatic: NewAgeTable(defaultBands, []float64{
			0.50, 0.55, 0.60, 0.65, 0.70, 0.75, 0.80, 0.85, 0.90,
		}),
		Susceptibility: NewAgeTable(defaultBands, []float64{
			0.34, 0.67, 1.00, 1.00, 1.00, 1.00, 1.24, 1.47, 1.47,
		}),
		Transmissibility: NewAgeTable(defaultBands, []float64{
			0.50, 0.75, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00, 1.00,
		}),
		AgeDistribution: NewAgeTable(defaultBands, []float64{
			0.12, 0.13, 0.14, 0.13, 0.12, 0.13, 0.12, 0.07, 0.04,
		}),
		Vaccine: DefaultVaccineSchedule(),
	}
}

// SampleAge draws an age band by its categorical weight, then a uniform age
// within the band.
func (t *Tables) SampleAge(rng *rand.Rand) float64 {
	weights := t.AgeDistribution.values
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			b := t.AgeDistribution.bands[i]
			return b.Lo + rng.Float64()*(b.Hi-b.Lo)
		}
	}
	// Floating point slack: fall into the last band.
	b := t.AgeDistribution.bands[len(t.AgeDistribution.bands)-1]
	return b.Lo + rng.Float64()*(b.Hi-b.Lo)
}

// SampleIncubationPeriod draws days from exposure to infectiousness from a
// log-normal distribution, truncated to at least one day.
func SampleIncubationPeriod(rng *rand.Rand) int {
	d := int(math.Exp(math.Log(IncubationMeanDays) + incubationSigma*rng.NormFloat64()))
	if d < minIncubationDays {
		return minIncubationDays
	}
	return d
}

// SampleInfectiousDuration draws the infectious period length from a normal
// distribution, truncated to at least three days.
func SampleInfectiousDuration(rng *rand.Rand) int {
	d := int(InfectiousMeanDays + InfectiousStddevDays*rng.NormFloat64())
	if d < minInfectiousDays {
		return minInfectiousDays
	}
	return d
}

// SampleImmunityDuration draws how long natural immunity lasts after
// recovery, floored at thirty days.
func SampleImmunityDuration(rng *rand.Rand) int {
	d := int(float64(NaturalImmunityMean) + float64(NaturalImmunityStddev)*rng.NormFloat64())
	if d < minImmunityDays {
		return minImmunityDays
	}
	return d
}
