package integration_tests

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/app"
	"github.com/specialistvlad/hazgridgo/internal/testutil"
)

func replaceOnce(t *testing.T, s, old, new string) string {
	t.Helper()
	require.Contains(t, s, old)
	return strings.Replace(s, old, new, 1)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

// Test for: a full calculation exports per-realization, mean, and
// quantile curves plus hazard maps, and the results are sane.
func TestCalculation_EndToEnd_ExportsCurvesAndMaps(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"job.hcl": testutil.SmallPointJob(25),
	})
	require.NoError(t, result.Err)

	// Two GMPE branches enumerate into two realizations.
	expected := []string{
		"hazard_curves-rlz000-PGA.csv",
		"hazard_curves-rlz001-PGA.csv",
		"mean_curves-PGA.csv",
		"quantile_curves-0.5-PGA.csv",
		"hazard_map-mean-poe0.1-PGA.csv",
		"hazard_map-quantile0.5-poe0.1-PGA.csv",
	}
	for _, name := range expected {
		_, err := os.Stat(filepath.Join(result.ExportDir, name))
		assert.NoError(t, err, "expected export %s", name)
	}

	_, err := os.Stat(result.StorePath)
	require.NoError(t, err, "calculation database should exist")

	rows := readCSV(t, filepath.Join(result.ExportDir, "mean_curves-PGA.csv"))
	require.Greater(t, len(rows), 1, "mean curve file needs at least one site row")
	assert.Equal(t, []string{"lon", "lat", "poe-0.005", "poe-0.05", "poe-0.2", "poe-0.5"}, rows[0])

	for _, row := range rows[1:] {
		require.Len(t, row, 6)
		prev := 1.0
		for _, cell := range row[2:] {
			poe, err := strconv.ParseFloat(cell, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, poe, 0.0)
			assert.LessOrEqual(t, poe, 1.0)
			// Exceedance probability cannot grow with the level.
			assert.LessOrEqual(t, poe, prev+1e-12)
			prev = poe
		}
	}

	maps := readCSV(t, filepath.Join(result.ExportDir, "hazard_map-mean-poe0.1-PGA.csv"))
	require.Greater(t, len(maps), 1)
	assert.Equal(t, []string{"lon", "lat", "iml", "clamped"}, maps[0])
	assert.Len(t, maps[1:], len(rows)-1, "one map cell per curve site")
}

// Test for: the same job and seed produce identical exports regardless
// of how many workers the calculation uses.
func TestCalculation_Deterministic_AcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	files := map[string]string{"job.hcl": testutil.SmallPointJob(15)}

	serial := testutil.RunIntegrationTestWithConfig(t, files, &app.Config{WorkerCount: 1})
	require.NoError(t, serial.Err)
	parallel := testutil.RunIntegrationTestWithConfig(t, files, &app.Config{WorkerCount: 8})
	require.NoError(t, parallel.Err)

	for _, name := range []string{
		"hazard_curves-rlz000-PGA.csv",
		"hazard_curves-rlz001-PGA.csv",
		"mean_curves-PGA.csv",
		"hazard_map-mean-poe0.1-PGA.csv",
	} {
		a, err := os.ReadFile(filepath.Join(serial.ExportDir, name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(parallel.ExportDir, name))
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), "%s differs between worker counts", name)
	}
}

// Test for: changing the random seed changes the sampled event sets.
func TestCalculation_SeedChangesResults(t *testing.T) {
	t.Parallel()

	job := testutil.SmallPointJob(15)
	reseeded := replaceOnce(t, job, "random_seed             = 23", "random_seed             = 24")

	first := testutil.RunIntegrationTest(t, map[string]string{"job.hcl": job})
	require.NoError(t, first.Err)
	second := testutil.RunIntegrationTest(t, map[string]string{"job.hcl": reseeded})
	require.NoError(t, second.Err)

	a, err := os.ReadFile(filepath.Join(first.ExportDir, "mean_curves-PGA.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(second.ExportDir, "mean_curves-PGA.csv"))
	require.NoError(t, err)
	assert.NotEqual(t, string(a), string(b))
}
