package integration_tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/testutil"
)

// Test for: a valid single-file job loads into the unified model.
func TestJobLoading_ValidJob_BuildsModel(t *testing.T) {
	t.Parallel()

	result := testutil.LoadIntegrationApp(t, map[string]string{
		"job.hcl": testutil.SmallPointJob(10),
	})
	require.NoError(t, result.Err)
	require.NotNil(t, result.App)

	model := result.App.Model()
	assert.Equal(t, "integration-small", model.Calculation.Name)
	assert.Equal(t, 50.0, model.Calculation.InvestigationTime)
	assert.Equal(t, 10, model.Calculation.SESPerPath)
	require.Contains(t, model.Calculation.IMLs, "PGA")

	require.Len(t, model.Sources, 1)
	assert.Equal(t, "src-1", model.Sources[0].ID)
	assert.Equal(t, "Active Shallow Crust", model.Sources[0].TRT)

	require.NotNil(t, model.Sites.Grid)
	assert.Equal(t, 760.0, model.Sites.Grid.Vs30)

	assert.ElementsMatch(t,
		[]string{"BooreAtkinson2008", "SadighEtAl1997"},
		model.GMPETree.GMPENames())
}

// Test for: a job split across several files in one directory merges
// into the same model as the single-file form.
func TestJobLoading_DirectoryMergesFiles(t *testing.T) {
	t.Parallel()

	job := testutil.SmallPointJob(10)
	split := strings.Index(job, `logic_tree "gmpe"`)
	require.Greater(t, split, 0)

	result := testutil.LoadIntegrationApp(t, map[string]string{
		"calc.hcl":  job[:split],
		"trees.hcl": job[split:],
	})
	require.NoError(t, result.Err)

	model := result.App.Model()
	assert.Equal(t, "integration-small", model.Calculation.Name)
	require.Len(t, model.Sources, 1)
	assert.ElementsMatch(t,
		[]string{"BooreAtkinson2008", "SadighEtAl1997"},
		model.GMPETree.GMPENames())
}

// Test for: non-HCL files in the job directory are ignored.
func TestJobLoading_IgnoresUnrelatedFiles(t *testing.T) {
	t.Parallel()

	result := testutil.LoadIntegrationApp(t, map[string]string{
		"job.hcl":   testutil.SmallPointJob(10),
		"README.md": "not a job",
		"notes.txt": "also not a job",
	})
	require.NoError(t, result.Err)
	assert.Equal(t, "integration-small", result.App.Model().Calculation.Name)
}
