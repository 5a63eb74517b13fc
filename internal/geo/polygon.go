package geo

import (
	"fmt"
	"math"
)

// Polygon is a closed region on the earth surface defined by its corner
// points in order. The closing edge from the last corner back to the
// first is implicit.
type Polygon struct {
	Corners []Point
}

// NewPolygon validates that at least three corners are given.
func NewPolygon(corners []Point) (*Polygon, error) {
	if len(corners) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 corners, got %d", len(corners))
	}
	return &Polygon{Corners: corners}, nil
}

// BoundingBox returns (minLon, minLat, maxLon, maxLat) of the corners.
func (p *Polygon) BoundingBox() (minLon, minLat, maxLon, maxLat float64) {
	minLon, maxLon = math.Inf(1), math.Inf(-1)
	minLat, maxLat = math.Inf(1), math.Inf(-1)
	for _, c := range p.Corners {
		minLon = math.Min(minLon, c.Lon)
		maxLon = math.Max(maxLon, c.Lon)
		minLat = math.Min(minLat, c.Lat)
		maxLat = math.Max(maxLat, c.Lat)
	}
	return minLon, minLat, maxLon, maxLat
}

// Contains reports whether the surface projection of pt lies inside the
// polygon, using even-odd ray casting in lon/lat space. Adequate for the
// region sizes hazard models use; not valid across the antimeridian.
func (p *Polygon) Contains(pt Point) bool {
	inside := false
	n := len(p.Corners)
	j := n - 1
	for i := 0; i < n; i++ {
		ci, cj := p.Corners[i], p.Corners[j]
		if (ci.Lat > pt.Lat) != (cj.Lat > pt.Lat) {
			xCross := (cj.Lon-ci.Lon)*(pt.Lat-ci.Lat)/(cj.Lat-ci.Lat) + ci.Lon
			if pt.Lon < xCross {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// Discretize returns a mesh of surface points covering the polygon
// interior on a regular grid with the given spacing in km.
func (p *Polygon) Discretize(spacingKm float64) (*Mesh, error) {
	if spacingKm <= 0 {
		return nil, fmt.Errorf("discretization spacing must be positive, got %v", spacingKm)
	}
	minLon, minLat, maxLon, maxLat := p.BoundingBox()

	dLat := spacingKm / KmPerDegree
	var points []Point
	for lat := minLat; lat <= maxLat+1e-12; lat += dLat {
		// Longitude step shrinks with latitude so spacing stays metric.
		dLon := spacingKm / (KmPerDegree * math.Cos(radians(lat)))
		for lon := minLon; lon <= maxLon+1e-12; lon += dLon {
			pt := Point{Lon: lon, Lat: lat}
			if p.Contains(pt) {
				points = append(points, pt)
			}
		}
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("polygon discretization at %v km produced no points", spacingKm)
	}
	return &Mesh{Points: points}, nil
}
