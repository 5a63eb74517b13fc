package integration_tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/testutil"
)

// Test for: malformed HCL fails startup with a parse error.
func TestErrorHandling_InvalidHCL_IsRejected(t *testing.T) {
	t.Parallel()

	result := testutil.LoadIntegrationApp(t, map[string]string{
		"job.hcl": `
calculation "broken" {
  investigation_time = 50
  // missing closing brace
`,
	})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), "failed to parse")
}

// Test for: a job referencing an equation that is not compiled in
// fails startup before any calculation work begins.
func TestErrorHandling_UnknownGMPE_IsRejected(t *testing.T) {
	t.Parallel()

	job := strings.Replace(testutil.SmallPointJob(10),
		`gmpe   = "BooreAtkinson2008"`,
		`gmpe   = "NoSuchModel2099"`, 1)
	require.Contains(t, job, "NoSuchModel2099")

	result := testutil.LoadIntegrationApp(t, map[string]string{"job.hcl": job})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "application startup panicked")
	assert.Contains(t, result.Err.Error(), `unknown GMPE "NoSuchModel2099"`)
}

// Test for: semantic validation catches values the schema accepts.
func TestErrorHandling_ValidationFailures(t *testing.T) {
	t.Parallel()

	base := testutil.SmallPointJob(10)
	cases := map[string]struct {
		old, new, want string
	}{
		"quantile out of range": {
			old:  "quantiles               = [0.5]",
			new:  "quantiles               = [1.5]",
			want: "quantiles must be in (0, 1)",
		},
		"branch weights must sum to one": {
			old:  "weight = 0.4",
			new:  "weight = 0.5",
			want: "weights must sum to 1",
		},
		"source TRT without gmpe coverage": {
			old:  `tectonic_region_type    = "Active Shallow Crust"`,
			new:  `tectonic_region_type    = "Stable Continental"`,
			want: `no gmpe branch set covers tectonic region type "Stable Continental"`,
		},
		"iml levels must increase": {
			old:  "levels = [0.005, 0.05, 0.2, 0.5]",
			new:  "levels = [0.5, 0.05]",
			want: "increasing",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			job := strings.Replace(base, tc.old, tc.new, 1)
			require.NotEqual(t, base, job, "replacement %q did not apply", tc.old)

			result := testutil.LoadIntegrationApp(t, map[string]string{"job.hcl": job})
			require.Error(t, result.Err)
			assert.Contains(t, result.Err.Error(), "application startup panicked")
			assert.Contains(t, result.Err.Error(), tc.want)
		})
	}
}

// Test for: an empty job directory is reported, not silently accepted.
func TestErrorHandling_NoJobFiles(t *testing.T) {
	t.Parallel()

	result := testutil.LoadIntegrationApp(t, map[string]string{
		"README.md": "nothing to run here",
	})

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "no .hcl files found")
}
