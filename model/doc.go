// Package model implements the population coordinator: it owns the agent
// collection, the spatial grid, the static contact network and the seeded
// random source, applies intervention policy, advances every agent once per
// simulated day in re-randomized order, and aggregates the per-step snapshot
// consumed by external collaborators.
//
// The step loop is strictly sequential and synchronous. A run is
// deterministic given identical configuration and seed; the caller decides
// when to stop calling Step.
package model
