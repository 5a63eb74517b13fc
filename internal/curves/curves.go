// Package curves derives the final hazard products from the simulated
// ground-motion fields: per-realization exceedance-probability curves,
// weighted mean and quantile curves across realizations, hazard maps at
// configured probability levels, and the classical loss-ratio-curve
// conversion used by risk calculations.
package curves

import (
	"fmt"
	"math"
	"sort"
)

// Curve is a hazard curve: the probability that ground motion exceeds
// each intensity level at least once in the investigation time. PoEs is
// parallel to IMLs and non-increasing.
type Curve struct {
	IMLs []float64
	PoEs []float64
}

// Accumulator counts, per site and intensity level, how many simulated
// events exceeded the level. One accumulator serves one (realization,
// IMT) pair.
type Accumulator struct {
	imls   []float64
	counts [][]int // [site][level]
}

// NewAccumulator prepares exceedance counting over nSites sites and the
// given intensity levels, which must be positive and strictly
// increasing.
func NewAccumulator(nSites int, imls []float64) (*Accumulator, error) {
	if nSites < 1 {
		return nil, fmt.Errorf("accumulator needs at least one site")
	}
	if len(imls) < 2 {
		return nil, fmt.Errorf("need at least 2 intensity levels, got %d", len(imls))
	}
	for i, v := range imls {
		if v <= 0 {
			return nil, fmt.Errorf("intensity levels must be positive, got %v", v)
		}
		if i > 0 && v <= imls[i-1] {
			return nil, fmt.Errorf("intensity levels must be strictly increasing")
		}
	}
	counts := make([][]int, nSites)
	for i := range counts {
		counts[i] = make([]int, len(imls))
	}
	return &Accumulator{imls: imls, counts: counts}, nil
}

// Add records the ground-motion values of one field. SiteIndices and
// values are parallel.
func (a *Accumulator) Add(siteIndices []int, values []float64) {
	for i, siteIdx := range siteIndices {
		v := values[i]
		row := a.counts[siteIdx]
		for lvl, iml := range a.imls {
			if v > iml {
				row[lvl]++
			} else {
				break
			}
		}
	}
}

// Curves converts the exceedance counts into hazard curves using the
// Poissonian estimator: poe = 1 - exp(-lambda*T) with the occurrence
// rate lambda estimated from the count over all event sets.
func (a *Accumulator) Curves(sesPerPath int, investigationTime float64) []Curve {
	out := make([]Curve, len(a.counts))
	for siteIdx, row := range a.counts {
		poes := make([]float64, len(a.imls))
		for lvl, count := range row {
			lambda := float64(count) / (float64(sesPerPath) * investigationTime)
			poes[lvl] = 1 - math.Exp(-lambda*investigationTime)
		}
		out[siteIdx] = Curve{IMLs: a.imls, PoEs: poes}
	}
	return out
}

// Mean returns the weighted mean curve across realizations. All curves
// must share the intensity levels; weights must sum to one.
func Mean(realizationCurves []Curve, weights []float64) (Curve, error) {
	if len(realizationCurves) == 0 {
		return Curve{}, fmt.Errorf("no curves to average")
	}
	if len(realizationCurves) != len(weights) {
		return Curve{}, fmt.Errorf("got %d curves but %d weights", len(realizationCurves), len(weights))
	}
	imls := realizationCurves[0].IMLs
	poes := make([]float64, len(imls))
	for i, c := range realizationCurves {
		if len(c.PoEs) != len(imls) {
			return Curve{}, fmt.Errorf("curve %d has %d levels, want %d", i, len(c.PoEs), len(imls))
		}
		for lvl, p := range c.PoEs {
			poes[lvl] += weights[i] * p
		}
	}
	return Curve{IMLs: imls, PoEs: poes}, nil
}

// Quantile returns the weighted q-quantile curve across realizations:
// per level, the smallest PoE whose cumulative weight reaches q.
func Quantile(realizationCurves []Curve, weights []float64, q float64) (Curve, error) {
	if q <= 0 || q >= 1 {
		return Curve{}, fmt.Errorf("quantile must be in (0, 1), got %v", q)
	}
	if len(realizationCurves) == 0 {
		return Curve{}, fmt.Errorf("no curves for quantile")
	}
	if len(realizationCurves) != len(weights) {
		return Curve{}, fmt.Errorf("got %d curves but %d weights", len(realizationCurves), len(weights))
	}
	imls := realizationCurves[0].IMLs
	poes := make([]float64, len(imls))

	type wv struct {
		value  float64
		weight float64
	}
	for lvl := range imls {
		pairs := make([]wv, len(realizationCurves))
		for i, c := range realizationCurves {
			pairs[i] = wv{value: c.PoEs[lvl], weight: weights[i]}
		}
		sort.Slice(pairs, func(a, b int) bool { return pairs[a].value < pairs[b].value })
		cum := 0.0
		poes[lvl] = pairs[len(pairs)-1].value
		for _, p := range pairs {
			cum += p.weight
			if cum >= q-1e-12 {
				poes[lvl] = p.value
				break
			}
		}
	}
	return Curve{IMLs: imls, PoEs: poes}, nil
}
