package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onboardhq/intake/internal/handlers"
	"github.com/onboardhq/intake/internal/middleware"
)

// NewRouter constructs a ServeMux with intake API routes registered.
func NewRouter(h *handlers.IntakeHandler) http.Handler {
	mux := http.NewServeMux()

	// Form-builder webhook endpoint
	mux.HandleFunc("/webhooks/intake", h.HandleIntake)

	// Health endpoints
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/readyz", h.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
