package sweep

import "github.com/epiforge/episim/model"

// Summary condenses one run's snapshot series into the metrics compared
// across scenarios.
type Summary struct {
	PeakInfectedPct    float64
	PeakDay            int
	PeakR0             float64
	MeanR0             float64
	FinalDead          int
	FinalRecoveredPct  float64
	FinalVaccinatedPct float64
}

// Summarize computes the summary metrics over a snapshot series.
func Summarize(snapshots []model.Snapshot) Summary {
	var s Summary
	if len(snapshots) == 0 {
		return s
	}

	var r0Sum float64
	for _, snap := range snapshots {
		if snap.InfectedPct > s.PeakInfectedPct {
			s.PeakInfectedPct = snap.InfectedPct
			s.PeakDay = snap.Day
		}
		if snap.R0 > s.PeakR0 {
			s.PeakR0 = snap.R0
		}
		r0Sum += snap.R0
	}
	s.MeanR0 = r0Sum / float64(len(snapshots))

	final := snapshots[len(snapshots)-1]
	s.FinalDead = final.Dead
	s.FinalRecoveredPct = final.RecoveredPct
	s.FinalVaccinatedPct = final.VaccinatedPct
	return s
}
