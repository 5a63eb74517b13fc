package boore_atkinson_2008

import (
	"testing"

	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	eq := &Equation{}
	rup := gmpe.RuptureCtx{Mag: 6.5, Rake: 0}
	near := gmpe.SiteCtx{Vs30: 760, RjbKm: 10, RrupKm: 12}
	far := gmpe.SiteCtx{Vs30: 760, RjbKm: 100, RrupKm: 101}

	t.Run("attenuates with distance", func(t *testing.T) {
		pNear, err := eq.Predict(rup, near, gmpe.PGA)
		require.NoError(t, err)
		pFar, err := eq.Predict(rup, far, gmpe.PGA)
		require.NoError(t, err)
		assert.Greater(t, pNear.MeanLnY, pFar.MeanLnY)
	})

	t.Run("grows with magnitude", func(t *testing.T) {
		small, err := eq.Predict(gmpe.RuptureCtx{Mag: 5.0}, near, gmpe.PGA)
		require.NoError(t, err)
		large, err := eq.Predict(gmpe.RuptureCtx{Mag: 7.0}, near, gmpe.PGA)
		require.NoError(t, err)
		assert.Greater(t, large.MeanLnY, small.MeanLnY)
	})

	t.Run("soft soil amplifies", func(t *testing.T) {
		rock, err := eq.Predict(rup, near, gmpe.PGA)
		require.NoError(t, err)
		soil, err := eq.Predict(rup, gmpe.SiteCtx{Vs30: 300, RjbKm: 10, RrupKm: 12}, gmpe.PGA)
		require.NoError(t, err)
		// blin is negative, so lower vs30 means higher motion.
		assert.Greater(t, soil.MeanLnY, rock.MeanLnY)
	})

	t.Run("sigma components", func(t *testing.T) {
		p, err := eq.Predict(rup, near, gmpe.PGA)
		require.NoError(t, err)
		assert.Equal(t, 0.265, p.SigmaInter)
		assert.Equal(t, 0.502, p.SigmaIntra)
		assert.InDelta(t, 0.5676, p.SigmaTotal(), 1e-3)
	})

	t.Run("spectral accelerations supported", func(t *testing.T) {
		_, err := eq.Predict(rup, near, gmpe.SA(0.2))
		require.NoError(t, err)
		_, err = eq.Predict(rup, near, gmpe.SA(1.0))
		require.NoError(t, err)
	})

	t.Run("unsupported period", func(t *testing.T) {
		_, err := eq.Predict(rup, near, gmpe.SA(3.0))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported IMT")
	})
}
