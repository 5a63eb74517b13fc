package source

import (
	"fmt"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/mfd"
	"github.com/specialistvlad/hazgridgo/internal/msr"
)

// PointSource generates ruptures at a single location, enumerating the
// magnitude bins of its MFD crossed with its nodal-plane and
// hypocentral-depth distributions.
type PointSource struct {
	id          string
	trt         string
	Location    geo.Point
	MFD         *mfd.TruncatedGR
	Scaling     msr.MSR
	AspectRatio float64
	UpperDepth  float64
	LowerDepth  float64
	NodalPlanes []NodalPlane
	HypoDepths  []HypoDepth
	MeshSpacing float64

	// rateScale divides all rates; area sources use it to spread their
	// MFD over the points of the discretized polygon.
	rateScale float64
}

// NewPointSource validates the distributions and geometry.
func NewPointSource(id, trt string, loc geo.Point, dist *mfd.TruncatedGR, scaling msr.MSR,
	aspect, upper, lower float64, planes []NodalPlane, depths []HypoDepth, meshSpacing float64) (*PointSource, error) {
	if aspect <= 0 {
		return nil, fmt.Errorf("source %s: rupture aspect ratio must be positive", id)
	}
	if upper < 0 || lower <= upper {
		return nil, fmt.Errorf("source %s: seismogenic depths must satisfy 0 <= upper < lower", id)
	}
	if len(planes) == 0 || len(depths) == 0 {
		return nil, fmt.Errorf("source %s: nodal plane and hypocentral depth distributions are required", id)
	}
	npWeights := make([]float64, len(planes))
	for i, p := range planes {
		if p.Dip <= 0 || p.Dip > 90 {
			return nil, fmt.Errorf("source %s: nodal plane dip %v out of range (0, 90]", id, p.Dip)
		}
		npWeights[i] = p.Weight
	}
	if err := checkWeights(fmt.Sprintf("source %s nodal plane", id), npWeights); err != nil {
		return nil, err
	}
	hdWeights := make([]float64, len(depths))
	for i, d := range depths {
		if d.DepthKm < upper || d.DepthKm > lower {
			return nil, fmt.Errorf("source %s: hypocentral depth %v outside the seismogenic layer [%v, %v]", id, d.DepthKm, upper, lower)
		}
		hdWeights[i] = d.Weight
	}
	if err := checkWeights(fmt.Sprintf("source %s hypocentral depth", id), hdWeights); err != nil {
		return nil, err
	}
	if meshSpacing <= 0 {
		meshSpacing = 5
	}
	return &PointSource{
		id: id, trt: trt, Location: loc, MFD: dist, Scaling: scaling,
		AspectRatio: aspect, UpperDepth: upper, LowerDepth: lower,
		NodalPlanes: planes, HypoDepths: depths, MeshSpacing: meshSpacing,
		rateScale: 1,
	}, nil
}

// ID implements Source.
func (s *PointSource) ID() string { return s.id }

// TRT implements Source.
func (s *PointSource) TRT() string { return s.trt }

// CountRuptures implements Source.
func (s *PointSource) CountRuptures() int {
	return len(s.MFD.Bins()) * len(s.NodalPlanes) * len(s.HypoDepths)
}

// Footprint implements Source.
func (s *PointSource) Footprint() *geo.Mesh {
	return &geo.Mesh{Points: []geo.Point{{Lon: s.Location.Lon, Lat: s.Location.Lat}}}
}

// Ruptures implements Source.
func (s *PointSource) Ruptures() ([]*Rupture, error) {
	bins := s.MFD.Bins()
	ruptures := make([]*Rupture, 0, s.CountRuptures())
	for _, bin := range bins {
		for _, np := range s.NodalPlanes {
			length, width := ruptureDims(s.Scaling, bin.Mag, np.Rake, s.AspectRatio, np.Dip, s.UpperDepth, s.LowerDepth)
			for _, hd := range s.HypoDepths {
				hypo := geo.Point{Lon: s.Location.Lon, Lat: s.Location.Lat, Depth: hd.DepthKm}
				surf, err := geo.NewPlanarSurface(hypo, np.Strike, np.Dip, length, width, s.UpperDepth, s.LowerDepth)
				if err != nil {
					return nil, fmt.Errorf("source %s, mag %v: %w", s.id, bin.Mag, err)
				}
				ruptures = append(ruptures, &Rupture{
					SourceID:   s.id,
					TRT:        s.trt,
					Mag:        bin.Mag,
					Rake:       np.Rake,
					Hypocenter: hypo,
					Surface:    surf.Discretize(s.MeshSpacing),
					Rate:       bin.Rate * np.Weight * hd.Weight / s.rateScale,
				})
			}
		}
	}
	return ruptures, nil
}
