// Package msr implements magnitude-scaling relationships: models mapping
// an earthquake magnitude (and rupture mechanism, via the rake angle) to
// a median rupture area in square kilometers.
package msr

import (
	"fmt"
	"math"
	"sort"
)

// MSR is a magnitude-scaling relationship. Rake is the rupture
// propagation direction in degrees, from -180 to 180.
type MSR interface {
	// MedianArea returns the median rupture area in km^2 for the given
	// magnitude and rake.
	MedianArea(mag, rake float64) float64
	// StdDev returns the standard deviation of log10(area) for the given
	// rake. Zero means the relationship is deterministic.
	StdDev(rake float64) float64
}

// WC1994 is the Wells & Coppersmith (1994) relationship,
// log10(area) = a + b * mag, with rake-dependent coefficients for
// strike-slip, reverse and normal mechanisms.
type WC1994 struct{}

// wcCoeffs holds the (a, b, sigma) triple for one mechanism class.
type wcCoeffs struct{ a, b, sigma float64 }

func (WC1994) coeffs(rake float64) wcCoeffs {
	switch {
	case (rake > -45 && rake <= 45) || rake > 135 || rake <= -135:
		// strike slip
		return wcCoeffs{a: -3.42, b: 0.90, sigma: 0.22}
	case rake > 0:
		// thrust/reverse
		return wcCoeffs{a: -3.99, b: 0.98, sigma: 0.26}
	default:
		// normal
		return wcCoeffs{a: -2.87, b: 0.82, sigma: 0.22}
	}
}

// MedianArea implements MSR.
func (w WC1994) MedianArea(mag, rake float64) float64 {
	c := w.coeffs(rake)
	return math.Pow(10, c.a+c.b*mag)
}

// StdDev implements MSR.
func (w WC1994) StdDev(rake float64) float64 {
	return w.coeffs(rake).sigma
}

// PointMSR models every rupture as a tiny square, effectively collapsing
// rupture geometry to the hypocenter. Useful for low-resolution models
// and for tests.
type PointMSR struct{}

// MedianArea implements MSR. The area corresponds to a 25 m side square,
// small enough that rupture extent never matters.
func (PointMSR) MedianArea(mag, rake float64) float64 { return 1e-4 }

// StdDev implements MSR.
func (PointMSR) StdDev(rake float64) float64 { return 0 }

var known = map[string]MSR{
	"WC1994":   WC1994{},
	"PointMSR": PointMSR{},
}

// Get resolves a relationship by its configuration name. Unknown names
// report the known ones.
func Get(name string) (MSR, error) {
	if m, ok := known[name]; ok {
		return m, nil
	}
	names := make([]string, 0, len(known))
	for n := range known {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("unknown magnitude scaling relationship %q (known: %v)", name, names)
}
