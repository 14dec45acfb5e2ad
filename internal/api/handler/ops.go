// Package handler provides HTTP handlers for the CarbonChain API.
package handler

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/carbonchain/carbonchain/internal/api/models"
	"github.com/carbonchain/carbonchain/internal/api/response"
	"github.com/carbonchain/carbonchain/internal/upstream"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *upstream.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *upstream.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// holds no stateful dependencies, so readiness only degrades when every
// collaborator circuit is open.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	if h.registry != nil {
		all := h.registry.AllHealth()
		open := 0
		for _, ph := range all {
			if ph.CircuitState == gobreaker.StateOpen {
				open++
			}
		}
		if len(all) > 0 && open == len(all) {
			status = models.HealthStatusDegraded
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - collaborator circuit status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	providers := []models.ProviderStatus{}
	overall := models.HealthStatusOK
	if h.registry != nil {
		for _, ph := range h.registry.AllHealth() {
			providers = append(providers, providerStatus(ph))
			if !ph.Healthy() && overall == models.HealthStatusOK {
				overall = models.HealthStatusDegraded
			}
		}
	}

	status := models.SystemStatus{
		Status:    overall,
		Time:      now,
		Providers: providers,
	}
	response.JSON(w, r, http.StatusOK, status)
}

func providerStatus(ph *upstream.Health) models.ProviderStatus {
	status := models.HealthStatusOK
	switch {
	case ph.Degraded():
		status = models.HealthStatusDegraded
	case !ph.Healthy():
		status = models.HealthStatusFail
	}

	ps := models.ProviderStatus{
		Provider:     ph.Name,
		Status:       status,
		CircuitState: ph.CircuitState.String(),
	}
	if ph.LastSuccessAt != nil {
		ts := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &ts
	}
	if ph.LastFailureAt != nil {
		ts := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &ts
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
