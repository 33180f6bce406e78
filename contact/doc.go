// Package contact builds and queries the static multi-layer contact
// topology: households, workplaces and school classes are partitioned once
// over the agent set and stay immutable for the run; the community layer has
// no persistent structure and is resolved by the coordinator from current
// grid co-location.
//
// Groups and memberships are stored arena style as integer agent indices so
// the network never holds references into agent state.
package contact
