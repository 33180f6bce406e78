// Package sweep runs batches of independent simulation instances: named
// intervention scenarios, cartesian parameter grids, per-run summary
// metrics, one-at-a-time sensitivity analysis and optional SQLite
// persistence of results.
//
// Instances may execute in parallel; each instance's internal step loop
// stays strictly sequential and shares no mutable state with any other
// instance.
package sweep
