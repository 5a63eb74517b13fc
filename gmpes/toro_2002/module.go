// Package toro_2002 implements the Toro (2002) ground-motion prediction
// equation for stable continental regions (mid-continent rock), PGA only.
package toro_2002

import (
	"fmt"
	"math"

	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/specialistvlad/hazgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the equation with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGMPE("ToroEtAl2002", &Equation{})
}

// PGA coefficients for the mid-continent crustal model.
const (
	c1 = 2.20
	c2 = 0.81
	c3 = 0.00
	c4 = 1.27
	c5 = 1.16
	c6 = 0.0021
	c7 = 9.3
)

// Equation is the GMPE implementation. It is stateless and safe for
// concurrent use.
type Equation struct{}

// Predict implements gmpe.GMPE.
func (e *Equation) Predict(rup gmpe.RuptureCtx, site gmpe.SiteCtx, imt gmpe.IMT) (gmpe.Prediction, error) {
	if imt != gmpe.PGA {
		return gmpe.Prediction{}, fmt.Errorf("ToroEtAl2002: unsupported IMT %s (PGA only)", imt)
	}

	dm := rup.Mag - 6.0
	rm := math.Sqrt(site.RjbKm*site.RjbKm + c7*c7)

	mean := c1 + c2*dm + c3*dm*dm -
		c4*math.Log(rm) -
		(c5-c4)*math.Max(math.Log(rm/100), 0) -
		c6*rm

	// Aleatory sigma is roughly constant over the magnitudes sampled by
	// hazard models of stable regions.
	return gmpe.Prediction{
		MeanLnY:    mean,
		SigmaInter: 0.35,
		SigmaIntra: 0.663,
	}, nil
}
