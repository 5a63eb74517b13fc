package msr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWC1994MedianArea(t *testing.T) {
	w := WC1994{}

	// Strike slip, M7: 10^(-3.42 + 0.90*7) = 10^2.88.
	assert.InDelta(t, 758.58, w.MedianArea(7.0, 0), 0.1)

	// Reverse mechanisms scale differently.
	reverse := w.MedianArea(7.0, 90)
	normal := w.MedianArea(7.0, -90)
	ss := w.MedianArea(7.0, 0)
	assert.NotEqual(t, ss, reverse)
	assert.NotEqual(t, ss, normal)

	// Area grows monotonically with magnitude.
	assert.Greater(t, w.MedianArea(7.5, 0), w.MedianArea(6.5, 0))
}

func TestWC1994RakeClasses(t *testing.T) {
	w := WC1994{}
	// Rakes near pure strike slip (0 or ±180) share coefficients.
	assert.Equal(t, w.MedianArea(6, 0), w.MedianArea(6, 170))
	assert.Equal(t, w.MedianArea(6, 10), w.MedianArea(6, -170))
	// Sigma is defined for every mechanism.
	assert.InDelta(t, 0.22, w.StdDev(0), 1e-9)
	assert.InDelta(t, 0.26, w.StdDev(90), 1e-9)
	assert.InDelta(t, 0.22, w.StdDev(-90), 1e-9)
}

func TestPointMSR(t *testing.T) {
	p := PointMSR{}
	assert.Equal(t, 1e-4, p.MedianArea(8.0, 45))
	assert.Zero(t, p.StdDev(45))
}

func TestGet(t *testing.T) {
	t.Run("known names", func(t *testing.T) {
		m, err := Get("WC1994")
		require.NoError(t, err)
		assert.IsType(t, WC1994{}, m)

		m, err = Get("PointMSR")
		require.NoError(t, err)
		assert.IsType(t, PointMSR{}, m)
	})

	t.Run("unknown name lists known ones", func(t *testing.T) {
		_, err := Get("GarciaEtAl2999")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "WC1994")
		assert.Contains(t, err.Error(), "PointMSR")
	})
}
