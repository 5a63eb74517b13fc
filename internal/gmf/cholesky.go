package gmf

import (
	"fmt"
	"math"
)

// cholesky computes the lower-triangular factor L of a symmetric
// positive-definite matrix given in row-major order, so that L*L' = m.
// Correlation matrices built from valid models are positive definite;
// a tiny diagonal jitter absorbs floating-point degeneracy when sites
// coincide.
func cholesky(m []float64, n int) ([]float64, error) {
	const jitter = 1e-12
	l := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i*n+j]
			for k := 0; k < j; k++ {
				sum -= l[i*n+k] * l[j*n+k]
			}
			if i == j {
				if sum <= 0 {
					sum += jitter
					if sum <= 0 {
						return nil, fmt.Errorf("correlation matrix is not positive definite at row %d", i)
					}
				}
				l[i*n+i] = math.Sqrt(sum)
			} else {
				l[i*n+j] = sum / l[j*n+j]
			}
		}
	}
	return l, nil
}

// lowerMulVec computes y = L*x for a lower-triangular row-major L.
func lowerMulVec(l []float64, n int, x []float64) []float64 {
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j <= i; j++ {
			sum += l[i*n+j] * x[j]
		}
		y[i] = sum
	}
	return y
}
