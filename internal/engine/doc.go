// Package engine orchestrates a hazard calculation: it builds the site
// collection and seismic sources from the job model, resolves the logic
// trees into realizations, fans the event-based pipeline out over a
// worker pool, and aggregates the simulated ground motion into hazard
// curves and maps, persisting every product to the datastore.
package engine
