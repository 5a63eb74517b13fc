package integration_tests

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/cli"
	"github.com/specialistvlad/hazgridgo/internal/testutil"
)

// Test for: running with no job path prints usage and exits cleanly.
func TestCLI_DisplaysHelp_WhenNoJobPathIsProvided(t *testing.T) {
	t.Parallel()

	outW := &bytes.Buffer{}
	appConfig, shouldExit, err := cli.Parse([]string{}, outW)

	require.NoError(t, err)
	require.True(t, shouldExit)
	assert.Contains(t, outW.String(), "Usage:")
	assert.Contains(t, outW.String(), "JOB_PATH")
	assert.Nil(t, appConfig)
}

// Test for: the positional argument and both job flags set the path.
func TestCLI_JobPathSources(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"job.hcl"},
		{"--job", "job.hcl"},
		{"-j", "job.hcl"},
	} {
		outW := &bytes.Buffer{}
		appConfig, shouldExit, err := cli.Parse(args, outW)
		require.NoError(t, err, "args %v", args)
		require.False(t, shouldExit)
		assert.Equal(t, "job.hcl", appConfig.JobPath)
	}
}

// Test for: invalid option values return an ExitError with code 2.
func TestCLI_RejectsInvalidOptionValues(t *testing.T) {
	t.Parallel()

	cases := map[string][]string{
		"log-format": {"--log-format", "xml", "job.hcl"},
		"log-level":  {"--log-level", "loud", "job.hcl"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			outW := &bytes.Buffer{}
			_, _, err := cli.Parse(args, outW)
			require.Error(t, err)
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, "invalid "+name)
		})
	}
}

// Test for: CLI overrides win over the job's export_dir and store_path.
func TestCLI_OverridesJobPaths(t *testing.T) {
	t.Parallel()

	job := strings.Replace(testutil.SmallPointJob(10),
		`random_seed             = 23`,
		"random_seed             = 23\n  export_dir              = \"/tmp/ignored\"", 1)
	require.Contains(t, job, "/tmp/ignored")

	result := testutil.LoadIntegrationApp(t, map[string]string{"job.hcl": job})
	require.NoError(t, result.Err)

	calc := result.App.Model().Calculation
	assert.Equal(t, result.ExportDir, calc.ExportDir,
		"the harness export-dir override should replace the job's export_dir")
	assert.Equal(t, result.StorePath, calc.StorePath)
}

// Test for: flag defaults match the documented values.
func TestCLI_Defaults(t *testing.T) {
	t.Parallel()

	outW := &bytes.Buffer{}
	appConfig, shouldExit, err := cli.Parse([]string{"job.hcl"}, outW)
	require.NoError(t, err)
	require.False(t, shouldExit)
	assert.Equal(t, 10, appConfig.WorkerCount)
	assert.Equal(t, "json", appConfig.LogFormat)
	assert.Equal(t, "info", appConfig.LogLevel)
}
