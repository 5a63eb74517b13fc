package engine

import (
	"fmt"

	"github.com/specialistvlad/hazgridgo/internal/config"
	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/mfd"
	"github.com/specialistvlad/hazgridgo/internal/msr"
	"github.com/specialistvlad/hazgridgo/internal/site"
	"github.com/specialistvlad/hazgridgo/internal/source"
)

const defaultAspectRatio = 1.5

// buildSites materializes the job's site collection.
func buildSites(sc config.SiteCollection) (*site.Collection, error) {
	if sc.SitesFile != "" {
		return site.FromFile(sc.SitesFile)
	}
	region, err := geo.NewPolygon(sc.Grid.Region)
	if err != nil {
		return nil, fmt.Errorf("site grid region: %w", err)
	}
	coll, err := site.FromGrid(region, sc.Grid.SpacingKm, sc.Grid.Vs30, sc.Grid.Z1pt0, sc.Grid.Z2pt5)
	if err != nil {
		return nil, err
	}
	for i := range coll.Sites {
		coll.Sites[i].Vs30Measured = sc.Grid.Vs30Measured
	}
	return coll, nil
}

// buildSources materializes the seismic sources of one source-model
// path: sourceModel branches select the source groups, and the
// Gutenberg-Richter branches adjust the distributions.
func buildSources(model *config.Model, path []logictree.SMBranch) ([]source.Source, error) {
	groups := map[string]bool{}
	bDelta := 0.0
	maxMag := 0.0
	for _, b := range path {
		switch {
		case b.Group != "":
			groups[b.Group] = true
		case b.BDelta != 0:
			bDelta += b.BDelta
		case b.MaxMag > 0:
			maxMag = b.MaxMag
		}
	}

	var out []source.Source
	for i := range model.Sources {
		cfg := &model.Sources[i]
		if cfg.Group != "" && !groups[cfg.Group] {
			continue
		}
		src, err := buildSource(cfg, bDelta, maxMag)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("source-model path selects no sources")
	}
	return out, nil
}

func buildSource(cfg *config.Source, bDelta, maxMag float64) (source.Source, error) {
	dist, err := mfd.NewTruncatedGR(cfg.MFD.A, cfg.MFD.B, cfg.MFD.MinMag, cfg.MFD.MaxMag, cfg.MFD.BinWidth)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", cfg.ID, err)
	}
	if bDelta != 0 || maxMag > 0 {
		dist, err = dist.WithAdjustments(bDelta, maxMag)
		if err != nil {
			return nil, fmt.Errorf("source %s: applying logic-tree adjustments: %w", cfg.ID, err)
		}
	}

	scalingName := cfg.MSR
	if scalingName == "" {
		scalingName = "WC1994"
	}
	scaling, err := msr.Get(scalingName)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", cfg.ID, err)
	}

	aspect := cfg.AspectRatio
	if aspect <= 0 {
		aspect = defaultAspectRatio
	}

	switch cfg.Kind {
	case config.SourcePoint:
		return source.NewPointSource(cfg.ID, cfg.TRT, cfg.Location, dist, scaling,
			aspect, cfg.UpperDepth, cfg.LowerDepth,
			nodalPlanes(cfg), hypoDepths(cfg), cfg.MeshSpacingKm)
	case config.SourceArea:
		region, err := geo.NewPolygon(cfg.Polygon)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", cfg.ID, err)
		}
		return source.NewAreaSource(cfg.ID, cfg.TRT, region, dist, scaling,
			aspect, cfg.UpperDepth, cfg.LowerDepth,
			nodalPlanes(cfg), hypoDepths(cfg), cfg.MeshSpacingKm, cfg.DiscretizationKm)
	case config.SourceSimpleFault:
		return source.NewSimpleFaultSource(cfg.ID, cfg.TRT, cfg.Trace, cfg.Dip, cfg.Rake,
			cfg.UpperDepth, cfg.LowerDepth, dist, scaling, aspect, cfg.MeshSpacingKm)
	default:
		return nil, fmt.Errorf("source %s: unknown kind %q", cfg.ID, cfg.Kind)
	}
}

func nodalPlanes(cfg *config.Source) []source.NodalPlane {
	out := make([]source.NodalPlane, len(cfg.NodalPlanes))
	for i, np := range cfg.NodalPlanes {
		out[i] = source.NodalPlane(np)
	}
	return out
}

func hypoDepths(cfg *config.Source) []source.HypoDepth {
	out := make([]source.HypoDepth, len(cfg.HypoDepths))
	for i, hd := range cfg.HypoDepths {
		out[i] = source.HypoDepth(hd)
	}
	return out
}
