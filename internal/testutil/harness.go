package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/app"
	"github.com/specialistvlad/hazgridgo/internal/hcl"
	"github.com/specialistvlad/hazgridgo/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App

	// Locations the harness provisioned for the run.
	JobDir    string
	ExportDir string
	StorePath string
}

// RunIntegrationTest runs a complete calculation against the given job
// files with a default configuration. Files are written relative to a
// fresh temporary job directory; exports and the datastore land in
// sibling directories so assertions can inspect them.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithConfig(t, files, &app.Config{}, modules...)
}

// RunIntegrationTestWithConfig is RunIntegrationTest with control over
// the application configuration, for tests that exercise overrides or
// vary the worker count.
func RunIntegrationTestWithConfig(t *testing.T, files map[string]string, appConfig *app.Config, modules ...registry.Module) *HarnessResult {
	t.Helper()

	result, testApp, logBuffer := startApp(t, files, appConfig, modules...)
	if result.Err != nil {
		return result
	}

	result.Err = testApp.Run(context.Background(), appConfig)
	result.LogOutput = logBuffer.String()
	return result
}

// LoadIntegrationApp constructs the application without running the
// calculation. Startup covers loading, translation, validation, and
// registry checks, which is all the load-phase tests need.
func LoadIntegrationApp(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	result, _, logBuffer := startApp(t, files, &app.Config{}, modules...)
	result.LogOutput = logBuffer.String()
	return result
}

func startApp(t *testing.T, files map[string]string, appConfig *app.Config, modules ...registry.Module) (*HarnessResult, *app.App, *app.SafeBuffer) {
	t.Helper()

	tmpDir := t.TempDir()
	jobDir := filepath.Join(tmpDir, "job")
	require.NoError(t, os.Mkdir(jobDir, 0o755))

	for name, content := range files {
		path := filepath.Join(jobDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	appConfig.JobPath = jobDir
	if appConfig.ExportDir == "" {
		appConfig.ExportDir = filepath.Join(tmpDir, "export")
	}
	if appConfig.StorePath == "" {
		appConfig.StorePath = filepath.Join(tmpDir, "calculation.sqlite")
	}
	if appConfig.WorkerCount == 0 {
		appConfig.WorkerCount = 4
	}
	if appConfig.LogLevel == "" {
		appConfig.LogLevel = "debug"
	}
	if appConfig.LogFormat == "" {
		appConfig.LogFormat = "text"
	}

	result := &HarnessResult{
		JobDir:    jobDir,
		ExportDir: appConfig.ExportDir,
		StorePath: appConfig.StorePath,
	}

	logBuffer := &app.SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("HAZGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var testApp *app.App
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("application startup panicked: %v", r)
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hcl.NewLoader(), modules...)
	}()
	result.App = testApp
	result.LogOutput = logBuffer.String()
	return result, testApp, logBuffer
}
