// Package params holds the age-stratified disease parameter tables and the
// stochastic samplers the simulation draws from: relative susceptibility and
// transmissibility, infection fatality rate, hospitalization and symptomatic
// rates, the population age distribution, incubation/infectious-duration
// samplers and the vaccine efficacy schedule (onset ramp plus exponential
// waning).
//
// Tables are immutable configuration data injected into the components that
// need them rather than referenced as package globals; Default() returns the
// calibrated set. Every sampler takes its *rand.Rand explicitly so a run is
// deterministic under a fixed seed.
package params
