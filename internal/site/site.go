// Package site models the locations where ground motion is computed:
// individual sites with their soil parameters, and collections built
// either from an explicit YAML site file or from a gridded region.
package site

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/hazgridgo/internal/geo"
)

// Site is one calculation location with its site conditions.
type Site struct {
	Location     geo.Point
	Vs30         float64
	Vs30Measured bool
	Z1pt0        float64
	Z2pt5        float64
}

// Collection is an ordered, immutable set of sites. Site ordinals (the
// slice indices) identify sites everywhere else in the engine.
type Collection struct {
	Sites []Site
}

// Len returns the number of sites.
func (c *Collection) Len() int { return len(c.Sites) }

// Vs30Clustered reports whether the collection's vs30 values should be
// treated as clustered for spatial correlation. Inferred vs30 comes
// from geology proxies and clusters spatially; a single measured value
// breaks the assumption.
func (c *Collection) Vs30Clustered() bool {
	for _, s := range c.Sites {
		if s.Vs30Measured {
			return false
		}
	}
	return len(c.Sites) > 0
}

// yamlSite is the on-disk shape of one entry in a sites file.
type yamlSite struct {
	Lon          float64 `yaml:"lon"`
	Lat          float64 `yaml:"lat"`
	Vs30         float64 `yaml:"vs30"`
	Vs30Measured bool    `yaml:"vs30measured"`
	Z1pt0        float64 `yaml:"z1pt0"`
	Z2pt5        float64 `yaml:"z2pt5"`
}

// FromFile loads a site collection from a YAML sites file: a list of
// {lon, lat, vs30, ...} entries.
func FromFile(path string) (*Collection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sites file: %w", err)
	}
	var entries []yamlSite
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing sites file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("sites file %s contains no sites", path)
	}

	sites := make([]Site, 0, len(entries))
	for i, e := range entries {
		pt, err := geo.NewPoint(e.Lon, e.Lat)
		if err != nil {
			return nil, fmt.Errorf("sites file %s, entry %d: %w", path, i, err)
		}
		if e.Vs30 <= 0 {
			return nil, fmt.Errorf("sites file %s, entry %d: vs30 must be positive, got %v", path, i, e.Vs30)
		}
		sites = append(sites, Site{
			Location:     pt,
			Vs30:         e.Vs30,
			Vs30Measured: e.Vs30Measured,
			Z1pt0:        e.Z1pt0,
			Z2pt5:        e.Z2pt5,
		})
	}
	return &Collection{Sites: sites}, nil
}

// FromGrid builds a uniform collection by discretizing a region polygon
// with the given spacing, assigning the same reference site conditions
// to every grid node.
func FromGrid(region *geo.Polygon, spacingKm, vs30, z1pt0, z2pt5 float64) (*Collection, error) {
	if vs30 <= 0 {
		return nil, fmt.Errorf("grid vs30 must be positive, got %v", vs30)
	}
	mesh, err := region.Discretize(spacingKm)
	if err != nil {
		return nil, fmt.Errorf("discretizing site region: %w", err)
	}
	sites := make([]Site, 0, mesh.Len())
	for _, p := range mesh.Points {
		sites = append(sites, Site{
			Location: p,
			Vs30:     vs30,
			Z1pt0:    z1pt0,
			Z2pt5:    z2pt5,
		})
	}
	return &Collection{Sites: sites}, nil
}
