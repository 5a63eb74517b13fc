package gmf

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/gmpe"
	"github.com/specialistvlad/hazgridgo/internal/ses"
	"github.com/specialistvlad/hazgridgo/internal/site"
	"github.com/specialistvlad/hazgridgo/internal/source"
)

// flatGMPE predicts a constant distribution everywhere, making the
// sampling behavior easy to assert.
type flatGMPE struct {
	mean, inter, intra float64
}

func (f flatGMPE) Predict(rup gmpe.RuptureCtx, st gmpe.SiteCtx, imt gmpe.IMT) (gmpe.Prediction, error) {
	return gmpe.Prediction{MeanLnY: f.mean, SigmaInter: f.inter, SigmaIntra: f.intra}, nil
}

func testSites() *site.Collection {
	return &site.Collection{Sites: []site.Site{
		{Location: geo.Point{Lon: 9.15, Lat: 45.16}, Vs30: 760},
		{Location: geo.Point{Lon: 9.16, Lat: 45.17}, Vs30: 760},
		{Location: geo.Point{Lon: 9.90, Lat: 45.80}, Vs30: 760},
	}}
}

func testEvent(seed int64) *ses.Event {
	rup := &source.Rupture{
		SourceID:   "p1",
		Mag:        6.0,
		Hypocenter: geo.Point{Lon: 9.15, Lat: 45.16, Depth: 10},
		Surface:    &geo.Mesh{Points: []geo.Point{{Lon: 9.15, Lat: 45.16, Depth: 10}}},
		Rate:       0.01,
	}
	return &ses.Event{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte("test-event")),
		Realization: 0,
		SES:         1,
		Rupture:     rup,
		SiteIndices: []int{0, 1, 2},
		Seed:        seed,
	}
}

func TestNewSimulator(t *testing.T) {
	_, err := NewSimulator(&site.Collection{}, 3, nil)
	require.Error(t, err)

	_, err = NewSimulator(testSites(), -1, nil)
	require.Error(t, err)

	s, err := NewSimulator(testSites(), 3, nil)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestSimulateMedianFields(t *testing.T) {
	// Truncation level zero forces epsilons to zero: values equal the
	// exponentiated mean.
	s, err := NewSimulator(testSites(), 0, nil)
	require.NoError(t, err)

	fields, err := s.Simulate(testEvent(1), flatGMPE{mean: -1, inter: 0.3, intra: 0.5}, []gmpe.IMT{gmpe.PGA})
	require.NoError(t, err)
	require.Len(t, fields, 1)
	for _, v := range fields[0].Values {
		assert.InDelta(t, math.Exp(-1), v, 1e-12)
	}
}

func TestSimulateDeterminism(t *testing.T) {
	s, err := NewSimulator(testSites(), 3, nil)
	require.NoError(t, err)
	eq := flatGMPE{mean: -1, inter: 0.3, intra: 0.5}

	a, err := s.Simulate(testEvent(42), eq, []gmpe.IMT{gmpe.PGA, gmpe.SA(1.0)})
	require.NoError(t, err)
	b, err := s.Simulate(testEvent(42), eq, []gmpe.IMT{gmpe.PGA, gmpe.SA(1.0)})
	require.NoError(t, err)

	require.Len(t, a, 2)
	for i := range a {
		assert.Equal(t, a[i].Values, b[i].Values)
	}

	c, err := s.Simulate(testEvent(43), eq, []gmpe.IMT{gmpe.PGA})
	require.NoError(t, err)
	assert.NotEqual(t, a[0].Values, c[0].Values)
}

func TestSimulateTruncationBounds(t *testing.T) {
	const trunc = 1.0
	s, err := NewSimulator(testSites(), trunc, nil)
	require.NoError(t, err)
	eq := flatGMPE{mean: 0, inter: 1, intra: 0}

	// With intra sigma 0 and inter sigma 1, ln(value) equals the single
	// inter-event epsilon, which must respect the truncation level.
	for seed := int64(0); seed < 200; seed++ {
		fields, err := s.Simulate(testEvent(seed), eq, []gmpe.IMT{gmpe.PGA})
		require.NoError(t, err)
		for _, v := range fields[0].Values {
			assert.LessOrEqual(t, math.Log(v), trunc+1e-12)
			assert.GreaterOrEqual(t, math.Log(v), -trunc-1e-12)
		}
	}
}

func TestSimulateCorrelation(t *testing.T) {
	// Under JB2009, residuals of nearby sites agree more often than
	// residuals of distant ones.
	s, err := NewSimulator(testSites(), 6, JB2009{})
	require.NoError(t, err)
	eq := flatGMPE{mean: 0, inter: 0, intra: 1}

	var sameNear, sameFar int
	const trials = 200
	for seed := int64(0); seed < trials; seed++ {
		fields, err := s.Simulate(testEvent(seed), eq, []gmpe.IMT{gmpe.PGA})
		require.NoError(t, err)
		v := fields[0].Values
		// Sites 0 and 1 are ~1.4 km apart; site 2 is ~90 km away.
		if math.Abs(math.Log(v[0])-math.Log(v[1])) < 0.5 {
			sameNear++
		}
		if math.Abs(math.Log(v[0])-math.Log(v[2])) < 0.5 {
			sameFar++
		}
	}
	assert.Greater(t, sameNear, sameFar, "correlation must decay with distance")
}

func TestSimulateNoSites(t *testing.T) {
	s, err := NewSimulator(testSites(), 3, nil)
	require.NoError(t, err)
	ev := testEvent(1)
	ev.SiteIndices = nil
	fields, err := s.Simulate(ev, flatGMPE{}, []gmpe.IMT{gmpe.PGA})
	require.NoError(t, err)
	assert.Nil(t, fields)
}

func TestNewCorrelationModel(t *testing.T) {
	m, err := NewCorrelationModel("", false)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = NewCorrelationModel("none", false)
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = NewCorrelationModel("jb2009", true)
	require.NoError(t, err)
	require.NotNil(t, m)

	_, err = NewCorrelationModel("magic", false)
	require.Error(t, err)
}

func TestJB2009Ranges(t *testing.T) {
	near := site.Site{Location: geo.Point{Lon: 0, Lat: 0}}
	far := site.Site{Location: geo.Point{Lon: 0, Lat: 0.5}}

	m := JB2009{}
	// Correlation decays with distance.
	assert.Greater(t, m.Correlation(near, near, gmpe.PGA), m.Correlation(near, far, gmpe.PGA))
	assert.InDelta(t, 1.0, m.Correlation(near, near, gmpe.PGA), 1e-12)

	// Longer periods correlate over longer ranges.
	assert.Greater(t, m.Correlation(near, far, gmpe.SA(2.0)), m.Correlation(near, far, gmpe.PGA))

	// Clustered vs30 widens the short-period range.
	clustered := JB2009{Vs30Clustered: true}
	assert.Greater(t, clustered.Correlation(near, far, gmpe.PGA), m.Correlation(near, far, gmpe.PGA))
}

func TestCholesky(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		m := []float64{1, 0, 0, 1}
		l, err := cholesky(m, 2)
		require.NoError(t, err)
		assert.InDelta(t, 1, l[0], 1e-12)
		assert.InDelta(t, 1, l[3], 1e-12)
	})

	t.Run("factor reproduces the matrix", func(t *testing.T) {
		m := []float64{1, 0.5, 0.2, 0.5, 1, 0.3, 0.2, 0.3, 1}
		l, err := cholesky(m, 3)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				sum := 0.0
				for k := 0; k < 3; k++ {
					sum += l[i*3+k] * l[j*3+k]
				}
				assert.InDelta(t, m[i*3+j], sum, 1e-9)
			}
		}
	})

	t.Run("non positive definite", func(t *testing.T) {
		m := []float64{1, 2, 2, 1}
		_, err := cholesky(m, 2)
		require.Error(t, err)
	})

	t.Run("duplicate sites tolerated via jitter", func(t *testing.T) {
		m := []float64{1, 1, 1, 1}
		_, err := cholesky(m, 2)
		require.NoError(t, err)
	})
}
