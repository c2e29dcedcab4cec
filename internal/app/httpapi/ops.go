// Package httpapi exposes the operational HTTP surface: liveness, readiness
// and Prometheus metrics. The product API in front of the services is served
// by a separate gateway and is not part of this process.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/booklovin/backend/internal/app/metrics"
	"github.com/booklovin/backend/pkg/logger"
)

// ReadinessCheck reports whether a dependency is ready to serve. The storage
// backend registers one; a failing check flips /readyz to 503.
type ReadinessCheck func(ctx context.Context) error

// OpsHandler serves the operational endpoints.
type OpsHandler struct {
	log    *logger.Logger
	checks map[string]ReadinessCheck
}

// NewOpsHandler builds the handler with named readiness checks.
func NewOpsHandler(log *logger.Logger, checks map[string]ReadinessCheck) *OpsHandler {
	if log == nil {
		log = logger.NewDefault("ops")
	}
	if checks == nil {
		checks = map[string]ReadinessCheck{}
	}
	return &OpsHandler{log: log, checks: checks}
}

// Router assembles the ops routes.
func (h *OpsHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler {
		return metrics.InstrumentHandler(next)
	})

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (h *OpsHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OpsHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.WithError(err).WithField("check", name).Warn("readiness check failed")
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, results)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
