package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/datastore"
	"github.com/specialistvlad/hazgridgo/internal/engine"
)

// defaultStorePath is used when neither the job nor the CLI configure
// where the calculation database lives.
const defaultStorePath = "calculation.sqlite"

// Run executes the hazard calculation based on the provided
// configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	storePath := a.model.Calculation.StorePath
	if storePath == "" {
		storePath = defaultStorePath
	}
	store, err := datastore.Open(ctx, storePath)
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer store.Close()
	a.logger.Debug("Datastore ready.", "path", storePath)

	eng := engine.New(a.model, a.registry, store, appConfig.WorkerCount)
	a.progress = eng.Progress()

	if appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(appConfig.HealthcheckPort)
	}

	a.logger.Info("🚀 Starting hazard calculation...",
		"calculation", a.model.Calculation.Name,
		"sources", len(a.model.Sources),
		"workers", appConfig.WorkerCount)
	result, err := eng.Run(ctx)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}

	a.logger.Info("🏁 Calculation finished.",
		"calculationID", result.CalculationID,
		"realizations", result.Realizations,
		"events", result.Events,
		"curveFiles", len(result.CurveFiles),
		"mapFiles", len(result.MapFiles))
	a.logger.Debug("App.Run method finished.")
	return nil
}
