package source

import "github.com/specialistvlad/hazgridgo/internal/geo"

// Rupture is one potential earthquake: a magnitude, a mechanism, a
// discretized surface and an annual occurrence rate. Ruptures are
// enumerated by sources; the event-set generator samples how often each
// one occurs within the investigation time.
type Rupture struct {
	SourceID   string
	TRT        string
	Mag        float64
	Rake       float64
	Hypocenter geo.Point
	Surface    *geo.Mesh
	Rate       float64
}

// JoynerBooreDistance returns the horizontal distance in km from the
// site to the surface projection of the rupture.
func (r *Rupture) JoynerBooreDistance(site geo.Point) float64 {
	return r.Surface.MinHorizontalDistance(site)
}

// RuptureDistance returns the closest 3-D distance in km from the site
// to the rupture surface.
func (r *Rupture) RuptureDistance(site geo.Point) float64 {
	return r.Surface.MinDistance(site)
}
