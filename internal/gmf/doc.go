// Package gmf implements the ground-motion field simulator: for each
// sampled event it turns the GMPE's lognormal prediction into concrete
// intensity values at every site, splitting the aleatory variability
// into one inter-event residual per event and per-site intra-event
// residuals that may be spatially correlated.
package gmf
