package app

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/specialistvlad/hazgridgo/internal/engine"
)

// healthResponse is the JSON body of the health endpoint: liveness plus
// the calculation phase and counters.
type healthResponse struct {
	Status   string                  `json:"status"`
	Progress engine.ProgressSnapshot `json:"progress"`
}

// healthHandler reports liveness and calculation progress.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)

	resp := healthResponse{Status: "ok"}
	if a.progress != nil {
		resp.Progress = a.progress.Snapshot()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		a.logger.Error("Failed to write health response", "error", err)
	}
}

// startHealthcheckServer initializes and runs the health check HTTP server.
func (a *App) startHealthcheckServer(port int) {
	a.logger.Debug("Configuring health check server.")
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)

	addr := fmt.Sprintf(":%d", port)

	go func() {
		a.logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			a.logger.Error("Health check server failed", "error", err)
		}
	}()
}
