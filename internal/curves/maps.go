package curves

import (
	"fmt"
	"math"
)

// MapValue extracts the intensity level exceeded with the given
// probability from a hazard curve, interpolating log-linearly in the
// intensity levels. Probabilities outside the curve range clamp to the
// corresponding end level; the boolean reports whether clamping
// happened so callers can warn.
func MapValue(c Curve, poe float64) (iml float64, clamped bool, err error) {
	if len(c.IMLs) < 2 || len(c.IMLs) != len(c.PoEs) {
		return 0, false, fmt.Errorf("malformed hazard curve: %d levels, %d poes", len(c.IMLs), len(c.PoEs))
	}
	if poe <= 0 || poe >= 1 {
		return 0, false, fmt.Errorf("poe must be in (0, 1), got %v", poe)
	}

	// PoEs decrease with the level. A requested poe above the first
	// point means even the lowest level is exceeded more rarely than
	// asked: clamp to it. Below the last point, clamp to the highest.
	if poe >= c.PoEs[0] {
		return c.IMLs[0], poe > c.PoEs[0], nil
	}
	last := len(c.PoEs) - 1
	if poe <= c.PoEs[last] {
		return c.IMLs[last], poe < c.PoEs[last], nil
	}

	for i := 1; i <= last; i++ {
		hi, lo := c.PoEs[i-1], c.PoEs[i]
		if poe <= hi && poe >= lo {
			if hi == lo {
				return c.IMLs[i-1], false, nil
			}
			t := (hi - poe) / (hi - lo)
			lnIML := math.Log(c.IMLs[i-1]) + t*(math.Log(c.IMLs[i])-math.Log(c.IMLs[i-1]))
			return math.Exp(lnIML), false, nil
		}
	}
	return c.IMLs[last], true, nil
}
