// Package agent implements the per-individual epidemiological state machine.
// A Person owns its disease state, severity substate, timers, vaccination
// record and economic scalars, and advances once per simulated day through
// status transition, movement, multi-layer interaction and a wealth update.
//
// The package deliberately knows nothing about the population: everything a
// Person needs from its surroundings (current day, effective probabilities,
// contact resolution, grid movement) flows through the Env interface, which
// the coordinator implements. Randomness is an explicit *rand.Rand argument
// on every stochastic operation.
package agent
