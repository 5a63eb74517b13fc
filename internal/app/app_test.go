package app_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/hazgridgo/internal/app"
	"github.com/specialistvlad/hazgridgo/internal/hcl"
	"github.com/specialistvlad/hazgridgo/internal/testutil"
)

func writeJob(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.hcl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestNewApp_RegistersCoreGMPEs(t *testing.T) {
	appConfig := &app.Config{JobPath: writeJob(t, testutil.SmallPointJob(5))}
	testApp, _ := app.SetupAppTest(t, appConfig, hcl.NewLoader())

	assert.Equal(t,
		[]string{"BooreAtkinson2008", "SadighEtAl1997", "ToroEtAl2002"},
		testApp.Registry().Names())
	require.NotNil(t, testApp.Model())
	assert.Equal(t, "integration-small", testApp.Model().Calculation.Name)
}

func TestNewApp_AppliesCLIOverrides(t *testing.T) {
	appConfig := &app.Config{
		JobPath:   writeJob(t, testutil.SmallPointJob(5)),
		ExportDir: "/tmp/exports-override",
		StorePath: "/tmp/store-override.sqlite",
	}
	testApp, _ := app.SetupAppTest(t, appConfig, hcl.NewLoader())

	calc := testApp.Model().Calculation
	assert.Equal(t, "/tmp/exports-override", calc.ExportDir)
	assert.Equal(t, "/tmp/store-override.sqlite", calc.StorePath)
}

func TestNewApp_PanicsOnUnknownGMPE(t *testing.T) {
	job := strings.Replace(testutil.SmallPointJob(5),
		`gmpe   = "BooreAtkinson2008"`,
		`gmpe   = "NoSuchModel2099"`, 1)
	appConfig := &app.Config{JobPath: writeJob(t, job)}

	require.PanicsWithError(t,
		`logic tree references unknown GMPE "NoSuchModel2099" (registered: [BooreAtkinson2008 SadighEtAl1997 ToroEtAl2002])`,
		func() { app.SetupAppTest(t, appConfig, hcl.NewLoader()) })
}

func TestNewApp_PanicsOnMissingJob(t *testing.T) {
	appConfig := &app.Config{JobPath: filepath.Join(t.TempDir(), "absent.hcl")}

	require.Panics(t, func() { app.SetupAppTest(t, appConfig, hcl.NewLoader()) })
}
