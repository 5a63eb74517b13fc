package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/hazgridgo/internal/config"
	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/curves"
	"github.com/specialistvlad/hazgridgo/internal/datastore"
	"github.com/specialistvlad/hazgridgo/internal/executor"
	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/gmf"
	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/registry"
	"github.com/specialistvlad/hazgridgo/internal/ses"
	"github.com/specialistvlad/hazgridgo/internal/site"
	"github.com/specialistvlad/hazgridgo/internal/source"
)

// Progress tracks where a running calculation is; the healthcheck
// endpoint exposes a snapshot of it.
type Progress struct {
	mu    sync.Mutex
	phase string

	realizations     atomic.Int64
	realizationsDone atomic.Int64
	events           atomic.Int64
	fields           atomic.Int64
}

// ProgressSnapshot is a point-in-time copy of the counters.
type ProgressSnapshot struct {
	Phase            string `json:"phase"`
	Realizations     int64  `json:"realizations"`
	RealizationsDone int64  `json:"realizations_done"`
	Events           int64  `json:"events"`
	Fields           int64  `json:"fields"`
}

func (p *Progress) setPhase(phase string) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
}

// Snapshot returns the current phase and counters.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.Lock()
	phase := p.phase
	p.mu.Unlock()
	return ProgressSnapshot{
		Phase:            phase,
		Realizations:     p.realizations.Load(),
		RealizationsDone: p.realizationsDone.Load(),
		Events:           p.events.Load(),
		Fields:           p.fields.Load(),
	}
}

// Engine runs one hazard calculation end to end.
type Engine struct {
	model    *config.Model
	registry *registry.Registry
	store    *datastore.Store
	workers  int
	progress *Progress

	// sourceCache shares built source models between realizations with
	// the same logic-tree path.
	cacheMu     sync.Mutex
	sourceCache map[string][]source.Source
}

// Result summarizes a finished calculation.
type Result struct {
	CalculationID string
	Realizations  int
	Events        int64
	CurveFiles    []string
	MapFiles      []string
}

// New prepares an engine over a loaded job model. The registry must
// already contain every GMPE the job references.
func New(model *config.Model, reg *registry.Registry, store *datastore.Store, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		model:       model,
		registry:    reg,
		store:       store,
		workers:     workers,
		progress:    &Progress{},
		sourceCache: map[string][]source.Source{},
	}
}

// Progress returns the live progress tracker.
func (e *Engine) Progress() *Progress { return e.progress }

// Run executes the pipeline: load, sample, event sets, ground-motion
// fields, curves and maps, export.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	calc := e.model.Calculation

	e.progress.setPhase("load")
	sites, err := buildSites(e.model.Sites)
	if err != nil {
		return nil, fmt.Errorf("building site collection: %w", err)
	}
	if sites.Len() == 0 {
		return nil, fmt.Errorf("site collection is empty")
	}
	logger.Info("Site collection ready.", "sites", sites.Len())

	imts, err := parseIMTs(calc.IMLs)
	if err != nil {
		return nil, err
	}
	correlation, err := gmf.NewCorrelationModel(calc.Correlation, sites.Vs30Clustered())
	if err != nil {
		return nil, err
	}
	simulator, err := gmf.NewSimulator(sites, calc.TruncationLevel, correlation)
	if err != nil {
		return nil, err
	}
	generator, err := ses.NewGenerator(calc.InvestigationTime, calc.SESPerPath)
	if err != nil {
		return nil, err
	}
	filter := source.NewFilter(sites, source.MaxDistance{
		DefaultKm: calc.MaxDistanceKm,
		ByTRT:     calc.MaxDistanceByTRT,
	})

	e.progress.setPhase("sample")
	var rlzs []logictree.Realization
	if calc.Samples > 0 {
		rlzs = logictree.Sample(&e.model.SourceModelTree, &e.model.GMPETree, calc.Samples, calc.RandomSeed)
	} else {
		rlzs = logictree.Enumerate(&e.model.SourceModelTree, &e.model.GMPETree, calc.RandomSeed)
	}
	e.progress.realizations.Store(int64(len(rlzs)))
	logger.Info("Logic trees resolved.", "realizations", len(rlzs), "sampled", calc.Samples > 0)

	calcID := uuid.NewString()
	if err := e.store.WriteCalculation(ctx, datastore.Calculation{
		ID:                calcID,
		JobPath:           calc.Name,
		Seed:              calc.RandomSeed,
		InvestigationTime: calc.InvestigationTime,
		SESPerPath:        calc.SESPerPath,
	}); err != nil {
		return nil, err
	}
	if err := e.store.WriteRealizations(ctx, calcID, rlzs); err != nil {
		return nil, err
	}

	e.progress.setPhase("events")
	tasks := make([]*executor.Task, len(rlzs))
	for i, rlz := range rlzs {
		rlz := rlz
		tasks[i] = &executor.Task{
			ID: fmt.Sprintf("realization-%d", rlz.Ordinal),
			Run: func(taskCtx context.Context) error {
				return e.runRealization(taskCtx, calcID, rlz, filter, generator, simulator, imts, calc)
			},
		}
	}
	if err := executor.New(e.workers).Run(ctx, tasks); err != nil {
		return nil, err
	}

	e.progress.setPhase("curves")
	if err := e.aggregate(ctx, calcID, rlzs, calc); err != nil {
		return nil, err
	}

	result := &Result{
		CalculationID: calcID,
		Realizations:  len(rlzs),
		Events:        e.progress.events.Load(),
	}

	e.progress.setPhase("export")
	if calc.ExportDir != "" {
		siteLocations := locations(sites)
		for _, kind := range []string{"rlz", "mean", "quantile"} {
			files, err := e.store.ExportCurves(ctx, calc.ExportDir, calcID, kind, siteLocations)
			if err != nil {
				return nil, fmt.Errorf("exporting %s curves: %w", kind, err)
			}
			result.CurveFiles = append(result.CurveFiles, files...)
		}
		for _, kind := range []string{"mean", "quantile"} {
			files, err := e.store.ExportMaps(ctx, calc.ExportDir, calcID, kind, siteLocations)
			if err != nil {
				return nil, fmt.Errorf("exporting %s maps: %w", kind, err)
			}
			result.MapFiles = append(result.MapFiles, files...)
		}
		logger.Info("Export complete.", "curveFiles", len(result.CurveFiles), "mapFiles", len(result.MapFiles))
	}

	e.progress.setPhase("done")
	return result, nil
}

// sourcesFor builds (or reuses) the source model of a realization path.
func (e *Engine) sourcesFor(rlz logictree.Realization) ([]source.Source, error) {
	key := rlz.PathKey()
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	if srcs, ok := e.sourceCache[key]; ok {
		return srcs, nil
	}
	srcs, err := buildSources(e.model, rlz.SMPath)
	if err != nil {
		return nil, err
	}
	e.sourceCache[key] = srcs
	return srcs, nil
}

// runRealization executes the event-set and ground-motion phases for
// one logic-tree realization and stores its hazard curves.
func (e *Engine) runRealization(ctx context.Context, calcID string, rlz logictree.Realization,
	filter *source.Filter, generator *ses.Generator, simulator *gmf.Simulator,
	imts []gmpe.IMT, calc config.Calculation) error {

	ctx = ctxlog.With(ctx, "realization", rlz.Ordinal)
	logger := ctxlog.FromContext(ctx)

	srcs, err := e.sourcesFor(rlz)
	if err != nil {
		return err
	}
	filtered, err := filter.Apply(ctx, srcs)
	if err != nil {
		return err
	}

	events, err := generator.Generate(ctx, rlz, filtered)
	if err != nil {
		return err
	}
	e.progress.events.Add(int64(len(events)))
	if err := e.store.WriteEvents(ctx, calcID, events); err != nil {
		return err
	}
	logger.Debug("Event sets sampled.", "events", len(events))

	equations := make(map[string]gmpe.GMPE, len(rlz.GMPEByTRT))
	for trt, name := range rlz.GMPEByTRT {
		eq, err := e.registry.GMPE(name)
		if err != nil {
			return err
		}
		equations[trt] = eq
	}

	accumulators := make(map[string]*curves.Accumulator, len(imts))
	for _, imt := range imts {
		acc, err := curves.NewAccumulator(simulator.Sites.Len(), calc.IMLs[imt.String()])
		if err != nil {
			return err
		}
		accumulators[imt.String()] = acc
	}

	// Events are independent given their per-event seeds, so they can
	// be simulated in any order; exceedance counting is commutative.
	var accMu sync.Mutex
	totalWeight := 0.0
	for _, ev := range events {
		totalWeight += float64(len(ev.SiteIndices))
	}
	blocks := executor.Blocks(events, func(ev *ses.Event) float64 {
		return float64(len(ev.SiteIndices))
	}, executor.BlockWeight(totalWeight, e.workers*4))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for _, block := range blocks {
		block := block
		g.Go(func() error {
			var blockFields []gmf.Field
			for _, ev := range block {
				eq, ok := equations[ev.Rupture.TRT]
				if !ok {
					return fmt.Errorf("no GMPE for tectonic region type %q", ev.Rupture.TRT)
				}
				fields, err := simulator.Simulate(ev, eq, imts)
				if err != nil {
					return err
				}
				for _, f := range fields {
					blockFields = append(blockFields, *f)
				}
			}
			accMu.Lock()
			for _, f := range blockFields {
				accumulators[f.IMT.String()].Add(f.SiteIndices, f.Values)
			}
			accMu.Unlock()
			e.progress.fields.Add(int64(len(blockFields)))
			return e.store.WriteFields(gctx, blockFields)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var records []datastore.CurveRecord
	for _, imt := range imts {
		siteCurves := accumulators[imt.String()].Curves(calc.SESPerPath, calc.InvestigationTime)
		for siteIdx, c := range siteCurves {
			records = append(records, datastore.CurveRecord{
				Kind:    "rlz",
				Ordinal: rlz.Ordinal,
				IMT:     imt.String(),
				Site:    siteIdx,
				Curve:   c,
			})
		}
	}
	if err := e.store.WriteCurves(ctx, calcID, records); err != nil {
		return err
	}

	e.progress.realizationsDone.Add(1)
	logger.Debug("Realization complete.", "fields", e.progress.fields.Load())
	return nil
}

// aggregate derives mean and quantile curves across realizations, and
// hazard maps at the configured probability levels.
func (e *Engine) aggregate(ctx context.Context, calcID string, rlzs []logictree.Realization, calc config.Calculation) error {
	logger := ctxlog.FromContext(ctx)

	weights := make([]float64, len(rlzs))
	for i, rlz := range rlzs {
		weights[i] = rlz.Weight
	}

	imts, err := e.store.CurveIMTs(ctx, calcID, "rlz")
	if err != nil {
		return err
	}
	var statRecords []datastore.CurveRecord
	var mapRecords []datastore.MapRecord
	for _, imt := range imts {
		records, err := e.store.ReadCurves(ctx, calcID, "rlz", imt)
		if err != nil {
			return err
		}
		bySite := map[int][]curves.Curve{}
		for _, rec := range records {
			bySite[rec.Site] = append(bySite[rec.Site], rec.Curve)
		}
		siteIndices := make([]int, 0, len(bySite))
		for siteIdx := range bySite {
			siteIndices = append(siteIndices, siteIdx)
		}
		sort.Ints(siteIndices)

		for _, siteIdx := range siteIndices {
			perRlz := bySite[siteIdx]
			if len(perRlz) != len(rlzs) {
				return fmt.Errorf("site %d has %d curves for %s, want %d", siteIdx, len(perRlz), imt, len(rlzs))
			}
			mean, err := curves.Mean(perRlz, weights)
			if err != nil {
				return err
			}
			statRecords = append(statRecords, datastore.CurveRecord{
				Kind: "mean", Ordinal: -1, IMT: imt, Site: siteIdx, Curve: mean,
			})
			maps, err := e.mapCells(ctx, "mean", 0, imt, siteIdx, mean, calc.PoEs)
			if err != nil {
				return err
			}
			mapRecords = append(mapRecords, maps...)

			for _, q := range calc.Quantiles {
				qc, err := curves.Quantile(perRlz, weights, q)
				if err != nil {
					return err
				}
				statRecords = append(statRecords, datastore.CurveRecord{
					Kind: "quantile", Ordinal: -1, Quantile: q, IMT: imt, Site: siteIdx, Curve: qc,
				})
				maps, err := e.mapCells(ctx, "quantile", q, imt, siteIdx, qc, calc.PoEs)
				if err != nil {
					return err
				}
				mapRecords = append(mapRecords, maps...)
			}
		}
	}

	if err := e.store.WriteCurves(ctx, calcID, statRecords); err != nil {
		return err
	}
	if err := e.store.WriteMaps(ctx, calcID, mapRecords); err != nil {
		return err
	}
	logger.Info("Aggregation complete.", "statCurves", len(statRecords), "mapCells", len(mapRecords))
	return nil
}

// mapCells interpolates the hazard-map values of one curve, warning
// when a requested probability falls outside the curve.
func (e *Engine) mapCells(ctx context.Context, kind string, quantile float64, imt string, siteIdx int,
	c curves.Curve, poes []float64) ([]datastore.MapRecord, error) {
	logger := ctxlog.FromContext(ctx)
	out := make([]datastore.MapRecord, 0, len(poes))
	for _, poe := range poes {
		iml, clamped, err := curves.MapValue(c, poe)
		if err != nil {
			return nil, fmt.Errorf("hazard map %s/%s site %d: %w", kind, imt, siteIdx, err)
		}
		if clamped {
			logger.Warn("Requested probability outside the hazard curve, clamping.",
				"kind", kind, "quantile", quantile, "imt", imt, "site", siteIdx, "poe", poe, "iml", iml)
		}
		out = append(out, datastore.MapRecord{
			Kind: kind, Quantile: quantile, PoE: poe, IMT: imt, Site: siteIdx, IML: iml, Clamped: clamped,
		})
	}
	return out, nil
}

func parseIMTs(imls map[string][]float64) ([]gmpe.IMT, error) {
	keys := make([]string, 0, len(imls))
	for k := range imls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]gmpe.IMT, 0, len(keys))
	for _, k := range keys {
		imt, err := gmpe.ParseIMT(k)
		if err != nil {
			return nil, err
		}
		out = append(out, imt)
	}
	return out, nil
}

func locations(sites *site.Collection) []geo.Point {
	out := make([]geo.Point, sites.Len())
	for i, s := range sites.Sites {
		out[i] = s.Location
	}
	return out
}
