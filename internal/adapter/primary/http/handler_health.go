package http

import (
	"net/http"

	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// Endpoints served by the router, reported by the health endpoint.
var Endpoints = []string{
	"POST /webhook",
	"GET /payment/success",
	"GET /payment/failure",
	"GET /health",
}

// HealthHandler handles GET /health requests.
type HealthHandler struct {
	store  string
	checks []secondary.HealthChecker
}

// NewHealthHandler creates a health check handler for the named store
// backend with the given checkers.
func NewHealthHandler(store string, checks []secondary.HealthChecker) *HealthHandler {
	return &HealthHandler{store: store, checks: checks}
}

// ServeHTTP performs all health checks and reports the aggregate status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string)

	for _, check := range h.checks {
		if err := check.Check(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks[check.Name()] = err.Error()
		} else {
			checks[check.Name()] = "ok"
		}
	}

	statusText := "healthy"
	if status != http.StatusOK {
		statusText = "unhealthy"
	}

	respondJSON(w, status, HealthResponse{
		Status:    statusText,
		Service:   "payhook",
		Store:     h.store,
		Endpoints: Endpoints,
		Checks:    checks,
	})
}
