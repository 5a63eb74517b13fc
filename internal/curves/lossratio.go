package curves

import (
	"fmt"
	"math"
	"sort"
)

// stepsPerInterval is the refinement applied between consecutive mean
// loss ratios when building the loss-ratio grid.
const stepsPerInterval = 5

// VulnerabilityFunction maps intensity levels to a lognormal loss-ratio
// distribution: at IMLs[i] the mean loss ratio is Means[i] with
// coefficient of variation CoVs[i]. Slices are parallel.
type VulnerabilityFunction struct {
	IMLs  []float64
	Means []float64
	CoVs  []float64
}

// Validate checks the function shape.
func (v *VulnerabilityFunction) Validate() error {
	if len(v.IMLs) == 0 || len(v.IMLs) != len(v.Means) || len(v.IMLs) != len(v.CoVs) {
		return fmt.Errorf("vulnerability function needs parallel imls/means/covs, got %d/%d/%d",
			len(v.IMLs), len(v.Means), len(v.CoVs))
	}
	for i, m := range v.Means {
		if m <= 0 || m > 1 {
			return fmt.Errorf("mean loss ratio %v at level %d out of (0, 1]", m, i)
		}
		if v.CoVs[i] <= 0 {
			return fmt.Errorf("coefficient of variation must be positive at level %d", i)
		}
	}
	return nil
}

// LossRatioCurve computes a loss-ratio exceedance curve for one site by
// combining a vulnerability function with the site's hazard curve: the
// loss-ratio exceedance matrix (lognormal survival of each loss ratio
// conditioned on each intensity level) is weighted by the hazard
// curve's probabilities at the function's levels.
func LossRatioCurve(vuln *VulnerabilityFunction, hazard Curve) (Curve, error) {
	if err := vuln.Validate(); err != nil {
		return Curve{}, err
	}
	if len(hazard.IMLs) < 2 {
		return Curve{}, fmt.Errorf("hazard curve too short")
	}

	lossRatios := splitLossRatios(append([]float64{0}, vuln.Means...), stepsPerInterval)
	lrem := computeLREM(vuln, lossRatios)

	// Weight each column by the hazard probability at that level and
	// sum the rows; the last grid point (fixed ratio 1) is dropped.
	poes := make([]float64, len(lossRatios))
	for col := range vuln.IMLs {
		prob := hazardOrdinate(hazard, vuln.IMLs[col])
		for row := range poes {
			poes[row] += lrem[row][col] * prob
		}
	}
	return Curve{IMLs: lossRatios, PoEs: poes}, nil
}

// computeLREM builds the loss-ratio exceedance matrix: rows are the
// split loss ratios plus the fixed final ratio 1, columns the function
// levels. Entry (r, c) is the lognormal survival probability of ratio r
// under the distribution at level c. Probabilities below 1e-5 are
// flushed to zero.
func computeLREM(vuln *VulnerabilityFunction, lossRatios []float64) [][]float64 {
	grid := append(append([]float64{}, lossRatios...), 1.0)
	lrem := make([][]float64, len(grid))
	for r := range lrem {
		lrem[r] = make([]float64, len(vuln.IMLs))
	}
	for col := range vuln.IMLs {
		mean := vuln.Means[col]
		stddev := vuln.CoVs[col] * mean
		variance := stddev * stddev
		mu := math.Log(mean * mean / math.Sqrt(variance+mean*mean))
		sigma := math.Sqrt(math.Log(variance/(mean*mean) + 1))
		for row, ratio := range grid {
			p := lognormalSurvival(ratio, mu, sigma)
			if math.IsNaN(p) || p < 1e-5 {
				p = 0
			}
			lrem[row][col] = p
		}
	}
	return lrem[:len(lossRatios)]
}

// lognormalSurvival is P(X > x) for ln(X) ~ N(mu, sigma^2).
func lognormalSurvival(x, mu, sigma float64) float64 {
	if x <= 0 {
		return 1
	}
	z := (math.Log(x) - mu) / sigma
	return 0.5 * math.Erfc(z/math.Sqrt2)
}

// splitLossRatios refines the ratio grid, inserting steps-1 evenly
// spaced values between each consecutive pair.
func splitLossRatios(ratios []float64, steps int) []float64 {
	set := map[float64]bool{}
	for i := 0; i < len(ratios)-1; i++ {
		lo, hi := ratios[i], ratios[i+1]
		for s := 0; s <= steps; s++ {
			set[lo+(hi-lo)*float64(s)/float64(steps)] = true
		}
	}
	out := make([]float64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// hazardOrdinate linearly interpolates the hazard curve at an intensity
// level, clamping outside the curve range.
func hazardOrdinate(c Curve, iml float64) float64 {
	if iml <= c.IMLs[0] {
		return c.PoEs[0]
	}
	last := len(c.IMLs) - 1
	if iml >= c.IMLs[last] {
		return c.PoEs[last]
	}
	for i := 1; i <= last; i++ {
		if iml <= c.IMLs[i] {
			t := (iml - c.IMLs[i-1]) / (c.IMLs[i] - c.IMLs[i-1])
			return c.PoEs[i-1] + t*(c.PoEs[i]-c.PoEs[i-1])
		}
	}
	return c.PoEs[last]
}
