package api

import (
	"context"
	"net/http"
)

// HealthChecker reports whether the mail transport is usable.
type HealthChecker interface {
	GetName() string
	HealthCheck(ctx context.Context) error
}

// HealthzHandler handles GET /healthz.
// Always returns 200 OK with {"status":"ok"}.
func HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// ReadyzHandler handles GET /readyz.
// Checks the mail transport via HealthCheck.
// Returns 200 if healthy, 503 with Retry-After header if unhealthy.
func ReadyzHandler(hc HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := hc.HealthCheck(r.Context()); err != nil {
			w.Header().Set("Retry-After", "30")
			respondError(w, http.StatusServiceUnavailable, hc.GetName()+" transport unavailable")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "transport": hc.GetName()})
	}
}
