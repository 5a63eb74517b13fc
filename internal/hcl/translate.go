package hcl

import (
	"fmt"

	"github.com/specialistvlad/hazgridgo/internal/config"
	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/schema"
)

// translate converts the merged HCL schema into the format-agnostic
// model. Semantic validation happens afterwards on the model; here we
// only reject what cannot be represented.
func (l *Loader) translate(job *schema.Job) (*config.Model, error) {
	if len(job.Calculations) != 1 {
		return nil, fmt.Errorf("job needs exactly one calculation block, got %d", len(job.Calculations))
	}
	if job.SiteCollection == nil {
		return nil, fmt.Errorf("job needs a site_collection block")
	}

	model := &config.Model{}

	calc, err := translateCalculation(job.Calculations[0])
	if err != nil {
		return nil, err
	}
	model.Calculation = *calc

	sites, err := translateSites(job.SiteCollection)
	if err != nil {
		return nil, err
	}
	model.Sites = *sites

	for _, s := range job.Sources {
		src, err := translateSource(s)
		if err != nil {
			return nil, fmt.Errorf("source %q %q: %w", s.Kind, s.ID, err)
		}
		model.Sources = append(model.Sources, *src)
	}

	if err := translateLogicTrees(job.LogicTrees, model); err != nil {
		return nil, err
	}
	return model, nil
}

func translateCalculation(c *schema.Calculation) (*config.Calculation, error) {
	out := &config.Calculation{
		Name:              c.Name,
		Description:       c.Description,
		InvestigationTime: c.InvestigationTime,
		SESPerPath:        c.SESPerPath,
		Samples:           c.Samples,
		TruncationLevel:   c.TruncationLevel,
		RandomSeed:        c.RandomSeed,
		IMLs:              make(map[string][]float64, len(c.IMLs)),
		PoEs:              c.PoEs,
		Quantiles:         c.Quantiles,
		Correlation:       c.Correlation,
		ExportDir:         c.ExportDir,
		StorePath:         c.StorePath,
	}
	for _, block := range c.IMLs {
		imt, err := gmpe.ParseIMT(block.IMT)
		if err != nil {
			return nil, err
		}
		key := imt.String()
		if _, dup := out.IMLs[key]; dup {
			return nil, fmt.Errorf("duplicate iml block for %s", key)
		}
		out.IMLs[key] = block.Levels
	}
	if c.MaxDistance != nil {
		out.MaxDistanceKm = c.MaxDistance.DefaultKm
		if len(c.MaxDistance.TRTs) > 0 {
			out.MaxDistanceByTRT = make(map[string]float64, len(c.MaxDistance.TRTs))
			for _, t := range c.MaxDistance.TRTs {
				if _, dup := out.MaxDistanceByTRT[t.TRT]; dup {
					return nil, fmt.Errorf("duplicate maximum_distance override for %q", t.TRT)
				}
				out.MaxDistanceByTRT[t.TRT] = t.Km
			}
		}
	}
	return out, nil
}

func translateSites(sc *schema.SiteCollection) (*config.SiteCollection, error) {
	out := &config.SiteCollection{SitesFile: sc.SitesFile}
	if sc.Grid == nil {
		return out, nil
	}
	region, err := lonLatPoints(sc.Grid.Region)
	if err != nil {
		return nil, fmt.Errorf("site grid region: %w", err)
	}
	out.Grid = &config.SiteGrid{
		Region:       region,
		SpacingKm:    sc.Grid.SpacingKm,
		Vs30:         sc.Grid.Vs30,
		Vs30Measured: sc.Grid.Vs30Measured,
		Z1pt0:        sc.Grid.Z1pt0,
		Z2pt5:        sc.Grid.Z2pt5,
	}
	return out, nil
}

func translateSource(s *schema.Source) (*config.Source, error) {
	out := &config.Source{
		Kind:             s.Kind,
		ID:               s.ID,
		Group:            s.Group,
		TRT:              s.TRT,
		MSR:              s.MSR,
		AspectRatio:      s.AspectRatio,
		UpperDepth:       s.UpperDepth,
		LowerDepth:       s.LowerDepth,
		DiscretizationKm: s.DiscretizationKm,
		Dip:              s.Dip,
		Rake:             s.Rake,
		MeshSpacingKm:    s.MeshSpacingKm,
	}
	if s.MFD == nil {
		return nil, fmt.Errorf("mfd block is required")
	}
	out.MFD = config.MFD(*s.MFD)

	for _, np := range s.NodalPlanes {
		out.NodalPlanes = append(out.NodalPlanes, config.NodalPlane(*np))
	}
	for _, hd := range s.HypoDepths {
		out.HypoDepths = append(out.HypoDepths, config.HypoDepth(*hd))
	}

	switch s.Kind {
	case config.SourcePoint:
		if len(s.Location) != 2 {
			return nil, fmt.Errorf("point source needs location = [lon, lat]")
		}
		pts, err := lonLatPoints([][]float64{s.Location})
		if err != nil {
			return nil, err
		}
		out.Location = pts[0]
		if len(s.Polygon) > 0 || len(s.Trace) > 0 {
			return nil, fmt.Errorf("point source must not declare polygon or trace")
		}
	case config.SourceArea:
		polygon, err := lonLatPoints(s.Polygon)
		if err != nil {
			return nil, fmt.Errorf("polygon: %w", err)
		}
		out.Polygon = polygon
		if len(s.Location) > 0 || len(s.Trace) > 0 {
			return nil, fmt.Errorf("area source must not declare location or trace")
		}
	case config.SourceSimpleFault:
		trace, err := lonLatPoints(s.Trace)
		if err != nil {
			return nil, fmt.Errorf("trace: %w", err)
		}
		out.Trace = trace
		if len(s.Location) > 0 || len(s.Polygon) > 0 || len(s.NodalPlanes) > 0 || len(s.HypoDepths) > 0 {
			return nil, fmt.Errorf("simple_fault source takes only trace geometry")
		}
	}
	return out, nil
}

func translateLogicTrees(trees []*schema.LogicTree, model *config.Model) error {
	seen := map[string]bool{}
	for _, lt := range trees {
		if seen[lt.Kind] {
			return fmt.Errorf("duplicate logic_tree %q", lt.Kind)
		}
		seen[lt.Kind] = true
		switch lt.Kind {
		case "source_model":
			for _, bs := range lt.BranchSets {
				set := logictree.SMBranchSet{ID: bs.ID, UncertaintyType: bs.UncertaintyType}
				for _, b := range bs.Branches {
					set.Branches = append(set.Branches, logictree.SMBranch{
						ID:     b.ID,
						Weight: b.Weight,
						Group:  b.SourceGroup,
						BDelta: b.BValueDelta,
						MaxMag: b.MaxMag,
					})
				}
				model.SourceModelTree.BranchSets = append(model.SourceModelTree.BranchSets, set)
			}
		case "gmpe":
			for _, bs := range lt.BranchSets {
				if bs.TRT == "" {
					return fmt.Errorf("gmpe branch set %s needs applies_to_tectonic_region_type", bs.ID)
				}
				set := logictree.GMPEBranchSet{TRT: bs.TRT}
				for _, b := range bs.Branches {
					if b.GMPE == "" {
						return fmt.Errorf("gmpe branch %s of set %s needs a gmpe name", b.ID, bs.ID)
					}
					set.Branches = append(set.Branches, logictree.GMPEBranch{
						ID:     b.ID,
						GMPE:   b.GMPE,
						Weight: b.Weight,
					})
				}
				model.GMPETree.BranchSets = append(model.GMPETree.BranchSets, set)
			}
		default:
			return fmt.Errorf("unknown logic_tree kind %q (want source_model or gmpe)", lt.Kind)
		}
	}
	return nil
}

// lonLatPoints converts [lon, lat] pairs, checking coordinate ranges.
func lonLatPoints(pairs [][]float64) ([]geo.Point, error) {
	out := make([]geo.Point, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("point %d: want [lon, lat], got %d values", i, len(p))
		}
		lon, lat := p[0], p[1]
		if lon < -180 || lon > 180 {
			return nil, fmt.Errorf("point %d: longitude %v out of [-180, 180]", i, lon)
		}
		if lat < -90 || lat > 90 {
			return nil, fmt.Errorf("point %d: latitude %v out of [-90, 90]", i, lat)
		}
		out = append(out, geo.Point{Lon: lon, Lat: lat})
	}
	return out, nil
}
