// Package schema defines the HCL shapes of a job definition. These
// structs carry the hcl tags only; the hcl package translates them into
// the format-agnostic model in the config package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// Job is the top-level structure of a job file. A job may be split
// across several files; blocks from all files are merged.
type Job struct {
	Calculations   []*Calculation  `hcl:"calculation,block"`
	SiteCollection *SiteCollection `hcl:"site_collection,block"`
	Sources        []*Source       `hcl:"source,block"`
	LogicTrees     []*LogicTree    `hcl:"logic_tree,block"`
	Remain         hcl.Body        `hcl:",remain"`
}

// Calculation holds the run-wide parameters of the hazard calculation.
type Calculation struct {
	Name              string       `hcl:"name,label"`
	Description       string       `hcl:"description,optional"`
	InvestigationTime float64      `hcl:"investigation_time"`
	SESPerPath        int          `hcl:"ses_per_logic_tree_path"`
	Samples           int          `hcl:"number_of_logic_tree_samples,optional"`
	TruncationLevel   float64      `hcl:"truncation_level,optional"`
	RandomSeed        int64        `hcl:"random_seed"`
	IMLs              []*IMLBlock  `hcl:"iml,block"`
	PoEs              []float64    `hcl:"poes,optional"`
	Quantiles         []float64    `hcl:"quantiles,optional"`
	Correlation       string       `hcl:"ground_motion_correlation,optional"`
	ExportDir         string       `hcl:"export_dir,optional"`
	StorePath         string       `hcl:"store_path,optional"`
	MaxDistance       *MaxDistance `hcl:"maximum_distance,block"`
}

// IMLBlock lists the intensity levels for one intensity measure type,
// e.g. iml "SA(0.2)" { levels = [0.01, 0.1, 1.0] }.
type IMLBlock struct {
	IMT    string    `hcl:"imt,label"`
	Levels []float64 `hcl:"levels"`
}

// MaxDistance is the source integration distance: a default in km, with
// optional per-tectonic-region overrides.
type MaxDistance struct {
	DefaultKm float64        `hcl:"default,optional"`
	TRTs      []*TRTDistance `hcl:"trt,block"`
}

// TRTDistance overrides the integration distance for one region type.
type TRTDistance struct {
	TRT string  `hcl:"trt,label"`
	Km  float64 `hcl:"km"`
}

// SiteCollection declares where the sites of interest come from: an
// external YAML file or an inline grid over a region polygon.
type SiteCollection struct {
	SitesFile string    `hcl:"sites_file,optional"`
	Grid      *SiteGrid `hcl:"grid,block"`
}

// SiteGrid discretizes a region polygon into equally spaced sites that
// share the reference site parameters.
type SiteGrid struct {
	Region       [][]float64 `hcl:"region"` // [lon, lat] corners
	SpacingKm    float64     `hcl:"spacing_km"`
	Vs30         float64     `hcl:"vs30"`
	Vs30Measured bool        `hcl:"vs30measured,optional"`
	Z1pt0        float64     `hcl:"z1pt0,optional"`
	Z2pt5        float64     `hcl:"z2pt5,optional"`
}

// Source is one seismic source. The first label selects the geometry
// kind (point, area, simple_fault); attributes not applicable to the
// kind are rejected during translation.
type Source struct {
	Kind string `hcl:"kind,label"`
	ID   string `hcl:"id,label"`

	// Group ties the source to a sourceModel logic-tree branch.
	// Ungrouped sources belong to every source model.
	Group string `hcl:"group,optional"`

	TRT         string  `hcl:"tectonic_region_type"`
	MFD         *MFD    `hcl:"mfd,block"`
	MSR         string  `hcl:"magnitude_scaling_relationship,optional"`
	AspectRatio float64 `hcl:"rupture_aspect_ratio,optional"`
	UpperDepth  float64 `hcl:"upper_seismogenic_depth,optional"`
	LowerDepth  float64 `hcl:"lower_seismogenic_depth"`

	// point and area kinds
	NodalPlanes []*NodalPlane `hcl:"nodal_plane,block"`
	HypoDepths  []*HypoDepth  `hcl:"hypocentral_depth,block"`

	// point kind
	Location []float64 `hcl:"location,optional"` // [lon, lat]

	// area kind
	Polygon          [][]float64 `hcl:"polygon,optional"` // [lon, lat] corners
	DiscretizationKm float64     `hcl:"area_discretization_km,optional"`

	// simple_fault kind
	Trace         [][]float64 `hcl:"trace,optional"` // [lon, lat] along strike
	Dip           float64     `hcl:"dip,optional"`
	Rake          float64     `hcl:"rake,optional"`
	MeshSpacingKm float64     `hcl:"mesh_spacing_km,optional"`
}

// MFD is a truncated Gutenberg-Richter magnitude-frequency
// distribution.
type MFD struct {
	A        float64 `hcl:"a"`
	B        float64 `hcl:"b"`
	MinMag   float64 `hcl:"min_mag"`
	MaxMag   float64 `hcl:"max_mag"`
	BinWidth float64 `hcl:"bin_width"`
}

// NodalPlane is one weighted rupture orientation of a point or area
// source.
type NodalPlane struct {
	Strike float64 `hcl:"strike"`
	Dip    float64 `hcl:"dip"`
	Rake   float64 `hcl:"rake"`
	Weight float64 `hcl:"weight"`
}

// HypoDepth is one weighted hypocentral depth of a point or area
// source.
type HypoDepth struct {
	DepthKm float64 `hcl:"depth_km"`
	Weight  float64 `hcl:"weight"`
}

// LogicTree is either the source-model tree or the ground-motion tree,
// selected by its label.
type LogicTree struct {
	Kind       string       `hcl:"kind,label"` // "source_model" or "gmpe"
	BranchSets []*BranchSet `hcl:"branch_set,block"`
}

// BranchSet groups mutually exclusive branches. Source-model sets carry
// an uncertainty type; ground-motion sets name the tectonic region type
// they apply to.
type BranchSet struct {
	ID              string    `hcl:"id,label"`
	UncertaintyType string    `hcl:"uncertainty_type,optional"`
	TRT             string    `hcl:"applies_to_tectonic_region_type,optional"`
	Branches        []*Branch `hcl:"branch,block"`
}

// Branch is one weighted alternative within a branch set.
type Branch struct {
	ID     string  `hcl:"id,label"`
	Weight float64 `hcl:"weight"`

	// gmpe tree
	GMPE string `hcl:"gmpe,optional"`

	// source-model tree uncertainty values
	SourceGroup string  `hcl:"source_group,optional"`
	BValueDelta float64 `hcl:"b_value_delta,optional"`
	MaxMag      float64 `hcl:"max_mag,optional"`
}
