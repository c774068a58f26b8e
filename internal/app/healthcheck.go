package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/bnkrebuild/internal/ctxlog"
)

// progress counts roots while a run is in flight. It is read by the status
// endpoint from the server goroutine.
type progress struct {
	total     atomic.Int64
	generated atomic.Int64
	failed    atomic.Int64
}

// Status is the body of the /status endpoint.
type Status struct {
	Roots     int64 `json:"roots"`
	Generated int64 `json:"generated"`
	Failed    int64 `json:"failed"`
}

// Status reports the progress of the current run.
func (a *App) Status() Status {
	return Status{
		Roots:     a.progress.total.Load(),
		Generated: a.progress.generated.Load(),
		Failed:    a.progress.failed.Load(),
	}
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(a.Status()); err != nil {
		a.logger.Error("Failed to write status.", "error", err)
	}
}

func (a *App) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/status", a.statusHandler)
	return mux
}

// startHealthcheckServer runs the health check HTTP server in the background.
func (a *App) startHealthcheckServer(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	addr := fmt.Sprintf(":%d", a.config.HealthcheckPort)
	a.httpServer = &http.Server{Addr: addr, Handler: a.healthMux()}

	go func() {
		logger.Info("Health check server starting.", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly.", "error", err)
		}
	}()
}

func (a *App) closeHealthcheckServer(ctx context.Context) {
	if a.httpServer == nil {
		return
	}
	logger := ctxlog.FromContext(ctx)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed.", "error", err)
		return
	}
	logger.Debug("Health check server shut down gracefully.")
}
