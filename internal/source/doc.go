// Package source implements the seismic source typology: point, area and
// simple-fault sources, the ruptures they enumerate, and the
// distance-based source/site filter that keeps the calculation scoped to
// sites the source can actually affect.
package source
