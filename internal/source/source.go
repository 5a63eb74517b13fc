package source

import (
	"fmt"
	"math"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/msr"
)

// Source is a seismic source: something that can enumerate the ruptures
// it may produce, each with an annual occurrence rate.
type Source interface {
	// ID returns the source identifier from the model.
	ID() string
	// TRT returns the tectonic region type.
	TRT() string
	// Ruptures enumerates every potential rupture with its rate.
	Ruptures() ([]*Rupture, error)
	// Footprint returns surface points spanning the source extent, used
	// by the distance filter to bound the affected area.
	Footprint() *geo.Mesh
	// CountRuptures returns the number of ruptures Ruptures would
	// enumerate, used to weight work distribution.
	CountRuptures() int
}

// NodalPlane is one weighted rupture orientation of a point or area
// source.
type NodalPlane struct {
	Strike float64
	Dip    float64
	Rake   float64
	Weight float64
}

// HypoDepth is one weighted hypocentral depth of a point or area source.
type HypoDepth struct {
	DepthKm float64
	Weight  float64
}

// checkWeights verifies that a probability mass function sums to one.
func checkWeights(what string, weights []float64) error {
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s weights must be non-negative", what)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%s weights must sum to 1, got %v", what, sum)
	}
	return nil
}

// ruptureDims derives rupture length and width (km) from the scaling
// relationship, clamping the width so the plane fits in the seismogenic
// layer for the given dip.
func ruptureDims(scaling msr.MSR, mag, rake, aspect, dip, upper, lower float64) (length, width float64) {
	area := scaling.MedianArea(mag, rake)
	width = math.Sqrt(area / aspect)
	maxWidth := (lower - upper) / math.Sin(dip*math.Pi/180)
	if width > maxWidth {
		width = maxWidth
	}
	length = area / width
	return length, width
}
