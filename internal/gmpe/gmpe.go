package gmpe

import "math"

// RuptureCtx carries the rupture-side parameters an equation may use.
type RuptureCtx struct {
	Mag       float64
	Rake      float64
	HypoDepth float64
}

// SiteCtx carries the site-side parameters, including the source-to-site
// distance metrics precomputed by the engine.
type SiteCtx struct {
	Vs30   float64
	Z1pt0  float64
	Z2pt5  float64
	RjbKm  float64 // Joyner-Boore distance
	RrupKm float64 // closest 3-D distance to the rupture
}

// Prediction is the ground-motion distribution at one site for one IMT:
// a lognormal with the given mean of ln(Y) and standard deviations split
// into the inter-event (between earthquakes) and intra-event (between
// sites for one earthquake) components.
type Prediction struct {
	MeanLnY    float64
	SigmaInter float64
	SigmaIntra float64
}

// SigmaTotal combines the two independent components.
func (p Prediction) SigmaTotal() float64 {
	return math.Sqrt(p.SigmaInter*p.SigmaInter + p.SigmaIntra*p.SigmaIntra)
}

// GMPE is a ground-motion prediction equation. Implementations must be
// safe for concurrent use; the engine calls them from many workers.
type GMPE interface {
	// Predict returns the ground-motion distribution, or an error when
	// the IMT is outside the equation's defined range.
	Predict(rup RuptureCtx, site SiteCtx, imt IMT) (Prediction, error)
}
