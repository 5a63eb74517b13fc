package geo

import (
	"fmt"
	"math"
)

// PlanarSurface is a rectangular rupture surface embedded in the earth,
// defined by the center of its top edge, the strike and dip angles and
// its along-strike length and down-dip width (both km).
type PlanarSurface struct {
	TopCenter Point
	Strike    float64
	Dip       float64
	LengthKm  float64
	WidthKm   float64
}

// NewPlanarSurface builds a rupture plane centered on the hypocenter,
// shifted vertically as needed so it stays inside the seismogenic layer
// [upperDepth, lowerDepth]. The caller must have clamped the width so
// the plane fits in the layer.
func NewPlanarSurface(hypo Point, strike, dip, lengthKm, widthKm, upperDepth, lowerDepth float64) (*PlanarSurface, error) {
	if dip <= 0 || dip > 90 {
		return nil, fmt.Errorf("dip %v out of range (0, 90]", dip)
	}
	if lengthKm <= 0 || widthKm <= 0 {
		return nil, fmt.Errorf("rupture dimensions must be positive (length=%v width=%v)", lengthKm, widthKm)
	}
	halfVert := widthKm * math.Sin(radians(dip)) / 2
	if 2*halfVert > lowerDepth-upperDepth+1e-9 {
		return nil, fmt.Errorf("rupture width %v km does not fit the seismogenic layer [%v, %v]", widthKm, upperDepth, lowerDepth)
	}

	center := hypo
	if top := center.Depth - halfVert; top < upperDepth {
		center.Depth += upperDepth - top
	}
	if bottom := center.Depth + halfVert; bottom > lowerDepth {
		center.Depth -= bottom - lowerDepth
	}

	upDipAz := math.Mod(strike+270, 360)
	horizHalfWidth := (widthKm / 2) * math.Cos(radians(dip))

	topCenter := center.Shift(upDipAz, horizHalfWidth, -halfVert)
	return &PlanarSurface{
		TopCenter: topCenter,
		Strike:    strike,
		Dip:       dip,
		LengthKm:  lengthKm,
		WidthKm:   widthKm,
	}, nil
}

// Discretize returns a mesh of points covering the plane with roughly
// the given spacing in km.
func (s *PlanarSurface) Discretize(spacingKm float64) *Mesh {
	nAlong := int(math.Round(s.LengthKm/spacingKm)) + 1
	if nAlong < 2 {
		nAlong = 2
	}
	nDown := int(math.Round(s.WidthKm/spacingKm)) + 1
	if nDown < 2 {
		nDown = 2
	}

	dipAz := math.Mod(s.Strike+90, 360)
	backAz := math.Mod(s.Strike+180, 360)
	topLeft := s.TopCenter.Shift(backAz, s.LengthKm/2, 0)

	cosDip := math.Cos(radians(s.Dip))
	sinDip := math.Sin(radians(s.Dip))

	points := make([]Point, 0, nAlong*nDown)
	for j := 0; j < nDown; j++ {
		w := s.WidthKm * float64(j) / float64(nDown-1)
		rowStart := topLeft.Shift(dipAz, w*cosDip, w*sinDip)
		for i := 0; i < nAlong; i++ {
			l := s.LengthKm * float64(i) / float64(nAlong-1)
			points = append(points, rowStart.Shift(s.Strike, l, 0))
		}
	}
	return &Mesh{Points: points}
}
