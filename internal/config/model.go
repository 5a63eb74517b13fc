package config

import (
	"context"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
)

// Loader is the interface for a format-specific job loader. Load reads
// configuration from the given paths (files or directories), translates
// it into the format-agnostic model, and validates it.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Model is the unified representation of one hazard job.
type Model struct {
	Calculation     Calculation
	Sites           SiteCollection
	Sources         []Source
	SourceModelTree logictree.SourceModelTree
	GMPETree        logictree.GMPETree
}

// Calculation holds the run-wide parameters.
type Calculation struct {
	Name              string
	Description       string
	InvestigationTime float64
	SESPerPath        int
	Samples           int // 0 enumerates the logic trees
	TruncationLevel   float64
	RandomSeed        int64
	IMLs              map[string][]float64 // intensity levels per IMT spelling
	PoEs              []float64            // hazard-map probability levels
	Quantiles         []float64
	Correlation       string // "none" or "jb2009"
	ExportDir         string
	StorePath         string
	MaxDistanceKm     float64
	MaxDistanceByTRT  map[string]float64
}

// SiteCollection declares the sites of interest: exactly one of
// SitesFile or Grid is set.
type SiteCollection struct {
	SitesFile string
	Grid      *SiteGrid
}

// SiteGrid is an inline site grid over a region polygon with uniform
// reference site parameters.
type SiteGrid struct {
	Region       []geo.Point
	SpacingKm    float64
	Vs30         float64
	Vs30Measured bool
	Z1pt0        float64
	Z2pt5        float64
}

// Source kinds.
const (
	SourcePoint       = "point"
	SourceArea        = "area"
	SourceSimpleFault = "simple_fault"
)

// Source is the format-agnostic description of one seismic source. The
// geometry fields used depend on Kind.
type Source struct {
	Kind  string
	ID    string
	Group string
	TRT   string

	MFD         MFD
	MSR         string
	AspectRatio float64
	UpperDepth  float64
	LowerDepth  float64

	NodalPlanes []NodalPlane
	HypoDepths  []HypoDepth

	Location geo.Point // point

	Polygon          []geo.Point // area
	DiscretizationKm float64

	Trace         []geo.Point // simple_fault
	Dip           float64
	Rake          float64
	MeshSpacingKm float64
}

// MFD is a truncated Gutenberg-Richter distribution.
type MFD struct {
	A        float64
	B        float64
	MinMag   float64
	MaxMag   float64
	BinWidth float64
}

// NodalPlane is one weighted rupture orientation.
type NodalPlane struct {
	Strike float64
	Dip    float64
	Rake   float64
	Weight float64
}

// HypoDepth is one weighted hypocentral depth.
type HypoDepth struct {
	DepthKm float64
	Weight  float64
}
