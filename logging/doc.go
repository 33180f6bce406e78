// Package logging provides a tiny abstraction over slog so the simulation
// packages can depend on a minimal interface (Logger) while allowing hosts
// to plug any structured logger. The default everywhere is NoOpLogger: a
// simulation run is a closed numeric loop and stays silent unless the host
// asks for diagnostics.
package logging
