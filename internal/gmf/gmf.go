package gmf

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/specialistvlad/hazgridgo/internal/ses"
	"github.com/specialistvlad/hazgridgo/internal/site"
)

// Field is the simulated ground motion of one event for one intensity
// measure: a value in g per affected site.
type Field struct {
	EventID     uuid.UUID
	Realization int
	IMT         gmpe.IMT
	SiteIndices []int
	Values      []float64 // parallel to SiteIndices
}

// Simulator computes ground-motion fields. It is safe for concurrent
// use: all per-event state lives on the stack.
type Simulator struct {
	Sites           *site.Collection
	TruncationLevel float64 // 0 forces median fields
	Correlation     CorrelationModel
}

// NewSimulator validates the simulation parameters.
func NewSimulator(sites *site.Collection, truncationLevel float64, correlation CorrelationModel) (*Simulator, error) {
	if sites == nil || sites.Len() == 0 {
		return nil, fmt.Errorf("simulator needs a non-empty site collection")
	}
	if truncationLevel < 0 {
		return nil, fmt.Errorf("truncation level must be non-negative, got %v", truncationLevel)
	}
	return &Simulator{Sites: sites, TruncationLevel: truncationLevel, Correlation: correlation}, nil
}

// Simulate computes one field per IMT for the event, using the given
// equation. The event seed drives all random draws, so fields are
// reproducible per event regardless of worker scheduling.
func (s *Simulator) Simulate(ev *ses.Event, eq gmpe.GMPE, imts []gmpe.IMT) ([]*Field, error) {
	n := len(ev.SiteIndices)
	if n == 0 {
		return nil, nil
	}
	rng := rand.New(rand.NewSource(ev.Seed))

	// Distance metrics are IMT-independent; compute them once.
	siteCtxs := make([]gmpe.SiteCtx, n)
	for i, siteIdx := range ev.SiteIndices {
		st := s.Sites.Sites[siteIdx]
		siteCtxs[i] = gmpe.SiteCtx{
			Vs30:   st.Vs30,
			Z1pt0:  st.Z1pt0,
			Z2pt5:  st.Z2pt5,
			RjbKm:  ev.Rupture.JoynerBooreDistance(st.Location),
			RrupKm: ev.Rupture.RuptureDistance(st.Location),
		}
	}
	rupCtx := gmpe.RuptureCtx{
		Mag:       ev.Rupture.Mag,
		Rake:      ev.Rupture.Rake,
		HypoDepth: ev.Rupture.Hypocenter.Depth,
	}

	fields := make([]*Field, 0, len(imts))
	for _, imt := range imts {
		preds := make([]gmpe.Prediction, n)
		for i, sctx := range siteCtxs {
			p, err := eq.Predict(rupCtx, sctx, imt)
			if err != nil {
				return nil, fmt.Errorf("event %s: %w", ev.ID, err)
			}
			preds[i] = p
		}

		epsInter := s.truncatedNormal(rng)
		epsIntra, err := s.intraResiduals(rng, ev.SiteIndices, imt)
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", ev.ID, err)
		}

		values := make([]float64, n)
		for i, p := range preds {
			lnY := p.MeanLnY + p.SigmaInter*epsInter + p.SigmaIntra*epsIntra[i]
			values[i] = math.Exp(lnY)
		}
		fields = append(fields, &Field{
			EventID:     ev.ID,
			Realization: ev.Realization,
			IMT:         imt,
			SiteIndices: ev.SiteIndices,
			Values:      values,
		})
	}
	return fields, nil
}

// intraResiduals draws the per-site intra-event residuals, correlating
// them through the configured model when one is set. Truncation is
// applied to the raw draws before correlation.
func (s *Simulator) intraResiduals(rng *rand.Rand, siteIndices []int, imt gmpe.IMT) ([]float64, error) {
	n := len(siteIndices)
	raw := make([]float64, n)
	for i := range raw {
		raw[i] = s.truncatedNormal(rng)
	}
	if s.Correlation == nil || n == 1 {
		return raw, nil
	}

	corr := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			c := s.Correlation.Correlation(s.Sites.Sites[siteIndices[i]], s.Sites.Sites[siteIndices[j]], imt)
			corr[i*n+j] = c
			corr[j*n+i] = c
		}
	}
	l, err := cholesky(corr, n)
	if err != nil {
		return nil, err
	}
	return lowerMulVec(l, n, raw), nil
}

// truncatedNormal draws a standard normal clamped to the truncation
// level. Level zero forces the median (zero residual).
func (s *Simulator) truncatedNormal(rng *rand.Rand) float64 {
	if s.TruncationLevel == 0 {
		return 0
	}
	v := rng.NormFloat64()
	if v > s.TruncationLevel {
		return s.TruncationLevel
	}
	if v < -s.TruncationLevel {
		return -s.TruncationLevel
	}
	return v
}
