package config

import (
	"fmt"
	"math"

	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/msr"
)

// Validate checks the model semantically: parameter ranges, geometry
// completeness per source kind, distribution weights, and logic-tree
// consistency. Format-level problems (missing required attributes,
// wrong types) are caught earlier by the loader.
func (m *Model) Validate() error {
	if err := m.Calculation.validate(); err != nil {
		return err
	}
	if err := m.Sites.validate(); err != nil {
		return err
	}
	if len(m.Sources) == 0 {
		return fmt.Errorf("job defines no sources")
	}
	groups := map[string]bool{}
	seen := map[string]bool{}
	for i := range m.Sources {
		src := &m.Sources[i]
		if seen[src.ID] {
			return fmt.Errorf("duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
		if src.Group != "" {
			groups[src.Group] = true
		}
		if err := src.validate(); err != nil {
			return fmt.Errorf("source %q: %w", src.ID, err)
		}
	}
	if err := logictree.Validate(&m.SourceModelTree, &m.GMPETree); err != nil {
		return err
	}
	coveredTRTs := map[string]bool{}
	for _, bs := range m.GMPETree.BranchSets {
		coveredTRTs[bs.TRT] = true
	}
	for i := range m.Sources {
		src := &m.Sources[i]
		if !coveredTRTs[src.TRT] {
			return fmt.Errorf("source %q: no gmpe branch set covers tectonic region type %q", src.ID, src.TRT)
		}
	}
	for _, bs := range m.SourceModelTree.BranchSets {
		if bs.UncertaintyType != logictree.UncSourceModel {
			continue
		}
		for _, b := range bs.Branches {
			if !groups[b.Group] {
				return fmt.Errorf("branch %s of branch set %s selects unknown source group %q", b.ID, bs.ID, b.Group)
			}
		}
	}
	return nil
}

func (c *Calculation) validate() error {
	if c.InvestigationTime <= 0 {
		return fmt.Errorf("investigation_time must be positive, got %v", c.InvestigationTime)
	}
	if c.SESPerPath < 1 {
		return fmt.Errorf("ses_per_logic_tree_path must be at least 1, got %d", c.SESPerPath)
	}
	if c.Samples < 0 {
		return fmt.Errorf("number_of_logic_tree_samples must not be negative, got %d", c.Samples)
	}
	if c.TruncationLevel < 0 {
		return fmt.Errorf("truncation_level must not be negative, got %v", c.TruncationLevel)
	}
	if len(c.IMLs) == 0 {
		return fmt.Errorf("at least one iml block is required")
	}
	for imt, levels := range c.IMLs {
		if len(levels) < 2 {
			return fmt.Errorf("iml %q: need at least 2 levels", imt)
		}
		for i, v := range levels {
			if v <= 0 {
				return fmt.Errorf("iml %q: levels must be positive", imt)
			}
			if i > 0 && v <= levels[i-1] {
				return fmt.Errorf("iml %q: levels must be strictly increasing", imt)
			}
		}
	}
	for _, p := range c.PoEs {
		if p <= 0 || p >= 1 {
			return fmt.Errorf("poes must be in (0, 1), got %v", p)
		}
	}
	for _, q := range c.Quantiles {
		if q <= 0 || q >= 1 {
			return fmt.Errorf("quantiles must be in (0, 1), got %v", q)
		}
	}
	switch c.Correlation {
	case "", "none", "jb2009":
	default:
		return fmt.Errorf("unknown ground_motion_correlation %q (want none or jb2009)", c.Correlation)
	}
	if c.MaxDistanceKm < 0 {
		return fmt.Errorf("maximum_distance must not be negative")
	}
	for trt, km := range c.MaxDistanceByTRT {
		if km <= 0 {
			return fmt.Errorf("maximum_distance for %q must be positive", trt)
		}
	}
	return nil
}

func (sc *SiteCollection) validate() error {
	if (sc.SitesFile == "") == (sc.Grid == nil) {
		return fmt.Errorf("site_collection needs exactly one of sites_file or grid")
	}
	if sc.Grid != nil {
		if len(sc.Grid.Region) < 3 {
			return fmt.Errorf("site grid region needs at least 3 corners, got %d", len(sc.Grid.Region))
		}
		if sc.Grid.SpacingKm <= 0 {
			return fmt.Errorf("site grid spacing_km must be positive")
		}
		if sc.Grid.Vs30 <= 0 {
			return fmt.Errorf("site grid vs30 must be positive")
		}
	}
	return nil
}

func (s *Source) validate() error {
	if s.TRT == "" {
		return fmt.Errorf("tectonic_region_type is required")
	}
	if err := s.MFD.validate(); err != nil {
		return err
	}
	if s.MSR != "" {
		if _, err := msr.Get(s.MSR); err != nil {
			return err
		}
	}
	if s.AspectRatio < 0 {
		return fmt.Errorf("rupture_aspect_ratio must not be negative")
	}
	if s.LowerDepth <= s.UpperDepth {
		return fmt.Errorf("lower_seismogenic_depth must exceed upper_seismogenic_depth")
	}

	switch s.Kind {
	case SourcePoint:
		return s.validateDistributions()
	case SourceArea:
		if len(s.Polygon) < 3 {
			return fmt.Errorf("area source needs a polygon with at least 3 corners")
		}
		if s.DiscretizationKm < 0 {
			return fmt.Errorf("area_discretization_km must not be negative")
		}
		return s.validateDistributions()
	case SourceSimpleFault:
		if len(s.Trace) < 2 {
			return fmt.Errorf("simple_fault source needs a trace with at least 2 points")
		}
		if s.Dip <= 0 || s.Dip > 90 {
			return fmt.Errorf("dip must be in (0, 90], got %v", s.Dip)
		}
		return nil
	default:
		return fmt.Errorf("unknown source kind %q (want point, area or simple_fault)", s.Kind)
	}
}

func (s *Source) validateDistributions() error {
	if len(s.NodalPlanes) == 0 {
		return fmt.Errorf("%s source needs at least one nodal_plane", s.Kind)
	}
	if len(s.HypoDepths) == 0 {
		return fmt.Errorf("%s source needs at least one hypocentral_depth", s.Kind)
	}
	sum := 0.0
	for _, np := range s.NodalPlanes {
		if np.Weight <= 0 {
			return fmt.Errorf("nodal plane weights must be positive")
		}
		sum += np.Weight
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("nodal plane weights must sum to 1, got %v", sum)
	}
	sum = 0
	for _, hd := range s.HypoDepths {
		if hd.Weight <= 0 {
			return fmt.Errorf("hypocentral depth weights must be positive")
		}
		if hd.DepthKm < s.UpperDepth || hd.DepthKm > s.LowerDepth {
			return fmt.Errorf("hypocentral depth %v outside the seismogenic layer [%v, %v]",
				hd.DepthKm, s.UpperDepth, s.LowerDepth)
		}
		sum += hd.Weight
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("hypocentral depth weights must sum to 1, got %v", sum)
	}
	return nil
}

func (d *MFD) validate() error {
	if d.B <= 0 {
		return fmt.Errorf("mfd b value must be positive, got %v", d.B)
	}
	if d.MinMag >= d.MaxMag {
		return fmt.Errorf("mfd min_mag %v must be below max_mag %v", d.MinMag, d.MaxMag)
	}
	if d.BinWidth <= 0 {
		return fmt.Errorf("mfd bin_width must be positive, got %v", d.BinWidth)
	}
	return nil
}
