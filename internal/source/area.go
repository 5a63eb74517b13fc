package source

import (
	"fmt"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/mfd"
	"github.com/specialistvlad/hazgridgo/internal/msr"
)

// AreaSource spreads a point-source rupture model uniformly over a
// polygonal region: the polygon is discretized into a grid of point
// sources, each carrying an equal share of the total occurrence rates.
type AreaSource struct {
	id     string
	trt    string
	Region *geo.Polygon
	points []*PointSource
}

// NewAreaSource discretizes the polygon with the given spacing and
// builds the underlying grid of point sources.
func NewAreaSource(id, trt string, region *geo.Polygon, dist *mfd.TruncatedGR, scaling msr.MSR,
	aspect, upper, lower float64, planes []NodalPlane, depths []HypoDepth,
	meshSpacing, discretizationKm float64) (*AreaSource, error) {
	if discretizationKm <= 0 {
		discretizationKm = 10
	}
	grid, err := region.Discretize(discretizationKm)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", id, err)
	}

	points := make([]*PointSource, 0, grid.Len())
	for i, loc := range grid.Points {
		ps, err := NewPointSource(fmt.Sprintf("%s:%d", id, i), trt, loc, dist, scaling,
			aspect, upper, lower, planes, depths, meshSpacing)
		if err != nil {
			return nil, err
		}
		ps.rateScale = float64(grid.Len())
		points = append(points, ps)
	}
	return &AreaSource{id: id, trt: trt, Region: region, points: points}, nil
}

// ID implements Source.
func (s *AreaSource) ID() string { return s.id }

// TRT implements Source.
func (s *AreaSource) TRT() string { return s.trt }

// CountRuptures implements Source.
func (s *AreaSource) CountRuptures() int {
	n := 0
	for _, p := range s.points {
		n += p.CountRuptures()
	}
	return n
}

// Footprint implements Source.
func (s *AreaSource) Footprint() *geo.Mesh {
	return &geo.Mesh{Points: s.Region.Corners}
}

// Ruptures implements Source.
func (s *AreaSource) Ruptures() ([]*Rupture, error) {
	ruptures := make([]*Rupture, 0, s.CountRuptures())
	for _, p := range s.points {
		rups, err := p.Ruptures()
		if err != nil {
			return nil, err
		}
		// Ruptures keep the area source's id: the grid points are an
		// internal discretization detail.
		for _, r := range rups {
			r.SourceID = s.id
		}
		ruptures = append(ruptures, rups...)
	}
	return ruptures, nil
}
