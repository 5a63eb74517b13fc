package ses

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/geo"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/mfd"
	"github.com/specialistvlad/hazgridgo/internal/msr"
	"github.com/specialistvlad/hazgridgo/internal/source"
)

func testCtx() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return ctxlog.WithLogger(context.Background(), logger)
}

func testFiltered(t *testing.T) []source.FilteredSource {
	t.Helper()
	dist, err := mfd.NewTruncatedGR(4.8, 1.0, 5.0, 6.0, 0.5)
	require.NoError(t, err)
	src, err := source.NewPointSource("p1", "trt", geo.Point{Lon: 9.15, Lat: 45.16}, dist,
		msr.WC1994{}, 1.5, 0, 20,
		[]source.NodalPlane{{Strike: 0, Dip: 90, Rake: 0, Weight: 1}},
		[]source.HypoDepth{{DepthKm: 10, Weight: 1}}, 2)
	require.NoError(t, err)
	return []source.FilteredSource{{Source: src, SiteIndices: []int{0, 1}}}
}

func TestNewGenerator(t *testing.T) {
	_, err := NewGenerator(0, 10)
	require.Error(t, err)

	_, err = NewGenerator(50, 0)
	require.Error(t, err)

	g, err := NewGenerator(50, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, g.SESPerPath)
}

func TestGenerateDeterminism(t *testing.T) {
	g, err := NewGenerator(50, 10)
	require.NoError(t, err)
	rlz := logictree.Realization{Ordinal: 0, Seed: 42}

	a, err := g.Generate(testCtx(), rlz, testFiltered(t))
	require.NoError(t, err)
	b, err := g.Generate(testCtx(), rlz, testFiltered(t))
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].Seed, b[i].Seed)
		assert.Equal(t, a[i].SES, b[i].SES)
	}
}

func TestGenerateSeedSensitivity(t *testing.T) {
	g, err := NewGenerator(50, 10)
	require.NoError(t, err)

	a, err := g.Generate(testCtx(), logictree.Realization{Ordinal: 0, Seed: 42}, testFiltered(t))
	require.NoError(t, err)
	b, err := g.Generate(testCtx(), logictree.Realization{Ordinal: 0, Seed: 7}, testFiltered(t))
	require.NoError(t, err)

	// Different seeds should give a different catalog (lengths or IDs).
	if len(a) == len(b) {
		identical := true
		for i := range a {
			if a[i].ID != b[i].ID {
				identical = false
				break
			}
		}
		assert.False(t, identical)
	}
}

func TestGenerateEventShape(t *testing.T) {
	g, err := NewGenerator(50, 20)
	require.NoError(t, err)
	rlz := logictree.Realization{Ordinal: 3, Seed: 42}

	events, err := g.Generate(testCtx(), rlz, testFiltered(t))
	require.NoError(t, err)
	require.NotEmpty(t, events, "an a=4.8 source over 50 years must produce events")

	for _, ev := range events {
		assert.Equal(t, 3, ev.Realization)
		assert.GreaterOrEqual(t, ev.SES, 1)
		assert.LessOrEqual(t, ev.SES, 20)
		assert.Equal(t, []int{0, 1}, ev.SiteIndices)
		assert.NotNil(t, ev.Rupture)
	}
}

func TestGenerateMatchesRates(t *testing.T) {
	// With many event sets, the observed occurrence count per rupture
	// should approach rate * time * nSES.
	g, err := NewGenerator(50, 400)
	require.NoError(t, err)
	filtered := testFiltered(t)

	events, err := g.Generate(testCtx(), logictree.Realization{Ordinal: 0, Seed: 42}, filtered)
	require.NoError(t, err)

	totalRate := 0.0
	rups, err := filtered[0].Source.Ruptures()
	require.NoError(t, err)
	for _, r := range rups {
		totalRate += r.Rate
	}
	expected := totalRate * 50 * 400
	assert.InDelta(t, expected, float64(len(events)), 4*math.Sqrt(expected))
}

func TestPoisson(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	assert.Zero(t, poisson(rng, 0))
	assert.Zero(t, poisson(rng, -1))

	// Sample mean converges to the distribution mean.
	const mean, n = 2.5, 20000
	sum := 0
	for i := 0; i < n; i++ {
		sum += poisson(rng, mean)
	}
	assert.InDelta(t, mean, float64(sum)/n, 0.05)
}
