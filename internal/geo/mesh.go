package geo

import "math"

// Mesh is a collection of points, typically the discretization of a
// surface or a region.
type Mesh struct {
	Points []Point
}

// Len returns the number of points in the mesh.
func (m *Mesh) Len() int { return len(m.Points) }

// MinHorizontalDistance returns the smallest great-circle distance from
// pt to the surface projection of any mesh point. This is the
// Joyner-Boore distance when the mesh discretizes a rupture surface.
func (m *Mesh) MinHorizontalDistance(pt Point) float64 {
	min := math.Inf(1)
	for _, p := range m.Points {
		if d := pt.HorizontalDistance(p); d < min {
			min = d
		}
	}
	return min
}

// MinDistance returns the smallest 3-D distance from pt to any mesh
// point. This is the rupture distance (Rrup) when the mesh discretizes
// a rupture surface.
func (m *Mesh) MinDistance(pt Point) float64 {
	min := math.Inf(1)
	for _, p := range m.Points {
		if d := pt.Distance(p); d < min {
			min = d
		}
	}
	return min
}

// BoundingBox returns the lon/lat envelope of the mesh enlarged by
// delta km in every direction. Used to cheaply pre-filter sites before
// exact distance checks.
func (m *Mesh) BoundingBox(deltaKm float64) (minLon, minLat, maxLon, maxLat float64) {
	minLon, maxLon = math.Inf(1), math.Inf(-1)
	minLat, maxLat = math.Inf(1), math.Inf(-1)
	for _, p := range m.Points {
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
	}
	dLat := deltaKm / KmPerDegree
	// Widen longitude at the latitude extreme closest to the pole.
	maxAbsLat := math.Max(math.Abs(minLat), math.Abs(maxLat))
	dLon := deltaKm / (KmPerDegree * math.Cos(radians(math.Min(maxAbsLat, 89))))
	return minLon - dLon, minLat - dLat, maxLon + dLon, maxLat + dLat
}
