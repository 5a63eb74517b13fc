package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/hazgridgo/internal/config"
	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/engine"
	"github.com/specialistvlad/hazgridgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model

	// progress is set by Run before the healthcheck server starts.
	progress *engine.Progress
}

// NewApp is the constructor for the main application. It returns a
// fully initialized App instance, including its own isolated logger and
// registry. Failures to load or validate the job are fatal startup
// errors and panic; the entrypoint recovers them.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.JobPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Job loaded and translated into unified model.")

	if appConfig.ExportDir != "" {
		model.Calculation.ExportDir = appConfig.ExportDir
	}
	if appConfig.StorePath != "" {
		model.Calculation.StorePath = appConfig.StorePath
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All GMPE modules registered.", "count", len(modules))

	if err := reg.Validate(ctx, model.GMPETree.GMPENames()); err != nil {
		// A mismatch between the job and the compiled-in equations
		// cannot be recovered from.
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
	}
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded job model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
