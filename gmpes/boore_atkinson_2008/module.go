// Package boore_atkinson_2008 implements a Boore & Atkinson (2008) style
// ground-motion prediction equation for active shallow crust, with the
// standard magnitude, geometric-spreading and linear vs30 site terms.
// The coefficient tables are simplified (unspecified-mechanism branch,
// linear site response only).
package boore_atkinson_2008

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
	r.RegisterGMPE("BooreAtkinson2008", &Equation{})
}

// coeffs holds the per-IMT coefficient row.
type coeffs struct {
	e1, e5, e6, e7 float64 // magnitude scaling
	mh             float64 // hinge magnitude
	c1, c2, c3, h  float64 // distance scaling
	blin           float64 // linear site amplification
	sigma, tau     float64 // intra-event, inter-event
}

const (
	mRef = 4.5
	rRef = 1.0
	vRef = 760.0
)

var table = map[gmpe.IMT]coeffs{
	gmpe.PGA: {
		e1: -0.53804, e5: 0.28805, e6: -0.10164, e7: 0.0, mh: 6.75,
		c1: -0.66050, c2: 0.11970, c3: -0.01151, h: 1.35,
		blin: -0.360, sigma: 0.502, tau: 0.265,
	},
	gmpe.SA(0.2): {
		e1: 0.20594, e5: 0.08940, e6: -0.11077, e7: 0.0, mh: 6.75,
		c1: -0.59660, c2: 0.04932, c3: -0.00984, h: 4.52,
		blin: -0.310, sigma: 0.524, tau: 0.288,
	},
	gmpe.SA(1.0): {
		e1: -0.89700, e5: 0.38816, e6: -0.12430, e7: 0.0, mh: 6.75,
		c1: -0.81000, c2: 0.09990, c3: -0.00334, h: 2.54,
		blin: -0.700, sigma: 0.568, tau: 0.320,
	},
}

// Equation is the GMPE implementation. It is stateless and safe for
// concurrent use.
type Equation struct{}

// Predict implements gmpe.GMPE.
func (e *Equation) Predict(rup gmpe.RuptureCtx, site gmpe.SiteCtx, imt gmpe.IMT) (gmpe.Prediction, error) {
	c, ok := table[imt]
	if !ok {
		return gmpe.Prediction{}, fmt.Errorf("BooreAtkinson2008: unsupported IMT %s", imt)
	}

	// Magnitude scaling with a hinge at mh.
	var fm float64
	if rup.Mag <= c.mh {
		dm := rup.Mag - c.mh
		fm = c.e1 + c.e5*dm + c.e6*dm*dm
	} else {
		fm = c.e1 + c.e7*(rup.Mag-c.mh)
	}

	// Geometric spreading and anelastic attenuation.
	r := math.Sqrt(site.RjbKm*site.RjbKm + c.h*c.h)
	fd := (c.c1+c.c2*(rup.Mag-mRef))*math.Log(r/rRef) + c.c3*(r-rRef)

	// Linear site amplification relative to the reference rock velocity.
	fs := c.blin * math.Log(site.Vs30/vRef)

	return gmpe.Prediction{
		MeanLnY:    fm + fd + fs,
		SigmaInter: c.tau,
		SigmaIntra: c.sigma,
	}, nil
}
