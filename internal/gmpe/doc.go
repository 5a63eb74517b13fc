// Package gmpe defines the contract between the hazard engine and
// ground-motion prediction equations: the intensity measure types, the
// rupture and site parameters an equation may consume, and the
// Prediction (log-space mean plus inter/intra-event standard deviations)
// it must produce. Concrete equations live under the top-level gmpes/
// directory and self-register through internal/registry.
package gmpe
