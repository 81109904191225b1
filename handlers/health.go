package handlers

import (
	"net/http"
	"time"

	"github.com/upb/lead-gateway/app"
	"github.com/upb/lead-gateway/services/providers"
	"github.com/upb/lead-gateway/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns a simple liveness handler
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck reports ready once at least one provider is registered
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    map[string]string{},
		}

		if deps.Ready() {
			response.Checks["providers"] = "configured"
		} else {
			response.Status = "not_ready"
			response.Checks["providers"] = "none_configured"
		}

		if deps.Config.SMTPEnabled() {
			response.Checks["smtp"] = "configured"
		} else {
			response.Checks["smtp"] = "disabled"
		}

		status := http.StatusOK
		if response.Status != "ready" {
			status = http.StatusServiceUnavailable
		}
		_ = utils.WriteJSON(w, status, response)
	}
}

// StatusHandler returns application status information
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"version":     app.Version,
			"environment": deps.Config.Environment,
			"providers":   deps.Registry.Names(),
		}
		_ = utils.WriteJSON(w, http.StatusOK, response)
	}
}

// ProvidersHandler lists the providers a caller may name in the model header
func ProvidersHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos := deps.ProviderInfo
		if infos == nil {
			infos = []app.ProviderInfo{}
		}
		_ = utils.WriteOK(w, map[string]interface{}{
			"providers":     infos,
			"content_types": providers.SupportedContentTypes(),
		})
	}
}
