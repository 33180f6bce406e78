package sweep

import (
	"sort"

	"github.com/epiforge/episim/model"
)

// Metric extracts the analyzed output from a run summary.
type Metric func(Summary) float64

// Canonical metrics.
var (
	PeakInfected Metric = func(s Summary) float64 { return s.PeakInfectedPct }
	TotalDead    Metric = func(s Summary) float64 { return float64(s.FinalDead) }
	PeakR0       Metric = func(s Summary) float64 { return s.PeakR0 }
)

// SensitivityResult reports how much of the output variance one swept
// parameter explains, plus the spread between its best and worst group mean.
type SensitivityResult struct {
	Parameter            string
	VarianceExplainedPct float64
	MeanEffect           float64
	ValuesTested         []float64
}

// parameter extractors, booleans encoded as 0/1.
var sweepParameters = []struct {
	name  string
	value func(model.Config) float64
}{
	{"base_transmission_probability", func(c model.Config) float64 { return c.BaseTransmissionProbability }},
	{"initial_infected_fraction", func(c model.Config) float64 { return c.InitialInfectedFraction }},
	{"base_death_rate", func(c model.Config) float64 { return c.BaseDeathRate }},
	{"severe_case_fraction_hint", func(c model.Config) float64 { return c.SevereCaseFractionHint }},
	{"daily_vaccination_rate", func(c model.Config) float64 { return c.DailyVaccinationRate }},
	{"lockdown_enabled", func(c model.Config) float64 { return boolToFloat(c.LockdownEnabled) }},
	{"vaccination_enabled", func(c model.Config) float64 { return boolToFloat(c.VaccinationEnabled) }},
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Sensitivity performs a one-at-a-time variance decomposition over sweep
// results: for each swept parameter with at least two distinct values, the
// between-group variance of the metric's per-value means, relative to the
// total variance. Results are sorted by variance explained, descending.
// A nil result means the output had zero variance.
func Sensitivity(results []Result, metric Metric) []SensitivityResult {
	if len(results) < 2 {
		return nil
	}

	outputs := make([]float64, len(results))
	for i, r := range results {
		outputs[i] = metric(r.Summary)
	}
	totalVar := variance(outputs)
	if totalVar == 0 {
		return nil
	}

	var out []SensitivityResult
	for _, param := range sweepParameters {
		groups := make(map[float64][]float64)
		for i, r := range results {
			groups[param.value(r.Config)] = append(groups[param.value(r.Config)], outputs[i])
		}
		if len(groups) <= 1 {
			continue
		}

		values := make([]float64, 0, len(groups))
		means := make([]float64, 0, len(groups))
		for v, outs := range groups {
			values = append(values, v)
			means = append(means, mean(outs))
		}
		sort.Float64s(values)

		betweenVar := variance(means) * float64(len(means))
		minMean, maxMean := means[0], means[0]
		for _, m := range means[1:] {
			if m < minMean {
				minMean = m
			}
			if m > maxMean {
				maxMean = m
			}
		}

		out = append(out, SensitivityResult{
			Parameter:            param.name,
			VarianceExplainedPct: betweenVar / totalVar * 100,
			MeanEffect:           maxMean - minMean,
			ValuesTested:         values,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].VarianceExplainedPct > out[j].VarianceExplainedPct
	})
	return out
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance is the sample variance, matching the estimator the summary
// analysis was calibrated against.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs)-1)
}
