package source

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/site"
)

// DefaultMaxDistanceKm is the integration distance used when the job
// does not configure one.
const DefaultMaxDistanceKm = 200.0

// MaxDistance is the integration distance in km, optionally varying by
// tectonic region type.
type MaxDistance struct {
	DefaultKm float64
	ByTRT     map[string]float64
}

// For returns the integration distance for a tectonic region type.
func (m MaxDistance) For(trt string) float64 {
	if d, ok := m.ByTRT[trt]; ok {
		return d
	}
	if m.DefaultKm > 0 {
		return m.DefaultKm
	}
	return DefaultMaxDistanceKm
}

// FilteredSource pairs a source with the ordinals of the sites within
// its integration distance.
type FilteredSource struct {
	Source      Source
	SiteIndices []int
}

// Filter scopes the calculation: for each source it selects the sites
// within the integration distance, dropping sources that affect no site.
// Instantiate it once per calculation, after the site collection is
// known.
type Filter struct {
	Sites   *site.Collection
	MaxDist MaxDistance
}

// NewFilter builds a source/site filter over the collection.
func NewFilter(sites *site.Collection, maxDist MaxDistance) *Filter {
	return &Filter{Sites: sites, MaxDist: maxDist}
}

// Apply returns the sources that affect at least one site, each with its
// filtered site ordinals. Errors are wrapped with the offending source
// id, since filtering can fail on tricky geometries.
func (f *Filter) Apply(ctx context.Context, sources []Source) ([]FilteredSource, error) {
	logger := ctxlog.FromContext(ctx)

	var out []FilteredSource
	for _, src := range sources {
		indices, err := f.closeSites(src)
		if err != nil {
			return nil, fmt.Errorf("an error occurred with source id=%s: %w", src.ID(), err)
		}
		if len(indices) == 0 {
			logger.Debug("Source affects no sites, skipping.", "sourceID", src.ID(), "maxDistanceKm", f.MaxDist.For(src.TRT()))
			continue
		}
		out = append(out, FilteredSource{Source: src, SiteIndices: indices})
	}
	logger.Debug("Source filtering complete.", "kept", len(out), "total", len(sources))
	return out, nil
}

// closeSites selects site ordinals within the integration distance of
// the source footprint, using the enlarged bounding box as a cheap
// pre-filter before exact distance checks.
func (f *Filter) closeSites(src Source) ([]int, error) {
	footprint := src.Footprint()
	if footprint == nil || footprint.Len() == 0 {
		return nil, fmt.Errorf("source has an empty footprint")
	}
	maxDist := f.MaxDist.For(src.TRT())
	minLon, minLat, maxLon, maxLat := footprint.BoundingBox(maxDist)

	var indices []int
	for i, s := range f.Sites.Sites {
		loc := s.Location
		if loc.Lon < minLon || loc.Lon > maxLon || loc.Lat < minLat || loc.Lat > maxLat {
			continue
		}
		if footprint.MinHorizontalDistance(loc) <= maxDist {
			indices = append(indices, i)
		}
	}
	return indices, nil
}
