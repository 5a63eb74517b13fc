package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean earth radius used for all spherical geometry.
const EarthRadiusKm = 6371.0

// KmPerDegree is the length of one degree of latitude (or of longitude at
// the equator) on the spherical earth.
const KmPerDegree = EarthRadiusKm * math.Pi / 180.0

// Point is a geographic location. Depth is in km, positive downwards;
// surface points have Depth == 0.
type Point struct {
	Lon   float64
	Lat   float64
	Depth float64
}

// NewPoint validates coordinates and returns a surface point.
func NewPoint(lon, lat float64) (Point, error) {
	if lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("longitude %v out of range [-180, 180]", lon)
	}
	if lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("latitude %v out of range [-90, 90]", lat)
	}
	return Point{Lon: lon, Lat: lat}, nil
}

// HorizontalDistance returns the great-circle distance in km between the
// surface projections of p and other, via the haversine formula.
func (p Point) HorizontalDistance(other Point) float64 {
	lat1 := radians(p.Lat)
	lat2 := radians(other.Lat)
	dLat := lat2 - lat1
	dLon := radians(other.Lon - p.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Distance returns the 3-D distance in km between p and other, combining
// the great-circle horizontal distance with the depth difference.
func (p Point) Distance(other Point) float64 {
	h := p.HorizontalDistance(other)
	v := p.Depth - other.Depth
	return math.Sqrt(h*h + v*v)
}

// Shift returns the point reached by travelling hdist km along the given
// azimuth (degrees clockwise from north) and vdist km downwards.
func (p Point) Shift(azimuth, hdist, vdist float64) Point {
	if hdist == 0 {
		return Point{Lon: p.Lon, Lat: p.Lat, Depth: p.Depth + vdist}
	}
	az := radians(azimuth)
	lat1 := radians(p.Lat)
	lon1 := radians(p.Lon)
	ad := hdist / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ad) +
		math.Cos(lat1)*math.Sin(ad)*math.Cos(az))
	lon2 := lon1 + math.Atan2(
		math.Sin(az)*math.Sin(ad)*math.Cos(lat1),
		math.Cos(ad)-math.Sin(lat1)*math.Sin(lat2))

	return Point{
		Lon:   normalizeLon(degrees(lon2)),
		Lat:   degrees(lat2),
		Depth: p.Depth + vdist,
	}
}

// Azimuth returns the initial bearing in degrees [0, 360) from p to other.
func (p Point) Azimuth(other Point) float64 {
	lat1 := radians(p.Lat)
	lat2 := radians(other.Lat)
	dLon := radians(other.Lon - p.Lon)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	az := degrees(math.Atan2(y, x))
	return math.Mod(az+360, 360)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}
