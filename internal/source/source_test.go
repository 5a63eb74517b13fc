package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/mfd"
	"github.com/specialistvlad/hazgridgo/internal/msr"
)

func testMFD(t *testing.T) *mfd.TruncatedGR {
	t.Helper()
	d, err := mfd.NewTruncatedGR(4.0, 1.0, 5.0, 6.0, 0.5)
	require.NoError(t, err)
	return d
}

var (
	testPlanes = []NodalPlane{
		{Strike: 0, Dip: 90, Rake: 0, Weight: 0.6},
		{Strike: 90, Dip: 45, Rake: 90, Weight: 0.4},
	}
	testDepths = []HypoDepth{
		{DepthKm: 5, Weight: 0.5},
		{DepthKm: 10, Weight: 0.5},
	}
)

func TestNewPointSource(t *testing.T) {
	loc := geo.Point{Lon: 9.15, Lat: 45.16}

	t.Run("valid", func(t *testing.T) {
		s, err := NewPointSource("p1", "Active Shallow Crust", loc, testMFD(t), msr.WC1994{},
			1.5, 0, 20, testPlanes, testDepths, 2)
		require.NoError(t, err)
		assert.Equal(t, "p1", s.ID())
		assert.Equal(t, "Active Shallow Crust", s.TRT())
	})

	t.Run("bad weights", func(t *testing.T) {
		planes := []NodalPlane{{Strike: 0, Dip: 90, Rake: 0, Weight: 0.7}}
		_, err := NewPointSource("p1", "trt", loc, testMFD(t), msr.WC1994{},
			1.5, 0, 20, planes, testDepths, 2)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sum to 1")
	})

	t.Run("hypocenter outside layer", func(t *testing.T) {
		depths := []HypoDepth{{DepthKm: 25, Weight: 1}}
		_, err := NewPointSource("p1", "trt", loc, testMFD(t), msr.WC1994{},
			1.5, 0, 20, testPlanes, depths, 2)
		require.Error(t, err)
	})

	t.Run("bad aspect ratio", func(t *testing.T) {
		_, err := NewPointSource("p1", "trt", loc, testMFD(t), msr.WC1994{},
			0, 0, 20, testPlanes, testDepths, 2)
		require.Error(t, err)
	})
}

func TestPointSourceRuptures(t *testing.T) {
	loc := geo.Point{Lon: 9.15, Lat: 45.16}
	s, err := NewPointSource("p1", "trt", loc, testMFD(t), msr.WC1994{},
		1.5, 0, 20, testPlanes, testDepths, 2)
	require.NoError(t, err)

	rups, err := s.Ruptures()
	require.NoError(t, err)

	// 2 magnitude bins x 2 nodal planes x 2 depths.
	require.Len(t, rups, 8)
	assert.Equal(t, s.CountRuptures(), len(rups))

	totalRate := 0.0
	for _, r := range rups {
		assert.Equal(t, "p1", r.SourceID)
		assert.NotZero(t, r.Surface.Len())
		assert.Positive(t, r.Rate)
		totalRate += r.Rate
	}
	// Rates factorize over the distributions, so they sum to the MFD total.
	assert.InDelta(t, testMFD(t).TotalRate(), totalRate, 1e-12)
}

func TestAreaSourceRuptures(t *testing.T) {
	region, err := geo.NewPolygon([]geo.Point{
		{Lon: 9.0, Lat: 45.0},
		{Lon: 9.6, Lat: 45.0},
		{Lon: 9.6, Lat: 45.6},
		{Lon: 9.0, Lat: 45.6},
	})
	require.NoError(t, err)

	s, err := NewAreaSource("a1", "trt", region, testMFD(t), msr.WC1994{},
		1.5, 0, 20, testPlanes, testDepths, 2, 20)
	require.NoError(t, err)

	rups, err := s.Ruptures()
	require.NoError(t, err)
	require.NotEmpty(t, rups)
	assert.Equal(t, s.CountRuptures(), len(rups))

	// The polygon grid spreads the rates: total stays the MFD total.
	totalRate := 0.0
	for _, r := range rups {
		assert.Equal(t, "a1", r.SourceID)
		totalRate += r.Rate
	}
	assert.InDelta(t, testMFD(t).TotalRate(), totalRate, 1e-9)
}

func TestSimpleFaultSource(t *testing.T) {
	trace := []geo.Point{{Lon: 9.0, Lat: 45.0}, {Lon: 9.0, Lat: 45.45}}

	t.Run("geometry validation", func(t *testing.T) {
		_, err := NewSimpleFaultSource("f1", "trt", trace[:1], 60, 0, 0, 15, testMFD(t), msr.WC1994{}, 1.5, 5)
		require.Error(t, err)

		_, err = NewSimpleFaultSource("f1", "trt", trace, 0, 0, 0, 15, testMFD(t), msr.WC1994{}, 1.5, 5)
		require.Error(t, err)

		_, err = NewSimpleFaultSource("f1", "trt", trace, 60, 0, 15, 10, testMFD(t), msr.WC1994{}, 1.5, 5)
		require.Error(t, err)
	})

	t.Run("ruptures float along the fault", func(t *testing.T) {
		s, err := NewSimpleFaultSource("f1", "trt", trace, 60, 0, 0, 15, testMFD(t), msr.WC1994{}, 1.5, 5)
		require.NoError(t, err)

		rups, err := s.Ruptures()
		require.NoError(t, err)
		require.NotEmpty(t, rups)
		assert.Equal(t, s.CountRuptures(), len(rups))

		totalRate := 0.0
		for _, r := range rups {
			assert.Equal(t, "f1", r.SourceID)
			assert.NotZero(t, r.Surface.Len())
			totalRate += r.Rate
		}
		assert.InDelta(t, testMFD(t).TotalRate(), totalRate, 1e-9)

		// Mesh depths stay inside the seismogenic layer.
		for _, r := range rups {
			for _, p := range r.Surface.Points {
				assert.GreaterOrEqual(t, p.Depth, -1e-9)
				assert.LessOrEqual(t, p.Depth, 15+1e-6)
			}
		}
	})

	t.Run("smaller magnitudes have more float positions", func(t *testing.T) {
		s, err := NewSimpleFaultSource("f1", "trt", trace, 60, 0, 0, 15, testMFD(t), msr.WC1994{}, 1.5, 5)
		require.NoError(t, err)
		_, _, posSmall := s.ruptureCells(5.25)
		_, _, posLarge := s.ruptureCells(5.75)
		assert.GreaterOrEqual(t, posSmall, posLarge)
	})
}
