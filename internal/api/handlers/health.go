package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionChecker reports whether an optional dependency is reachable.
type ConnectionChecker interface {
	IsConnected() bool
}

type HealthHandler struct {
	InstanceID string
	Version    string
	nats       ConnectionChecker
}

// NewHealthHandler creates the handler. nats may be nil when messaging is disabled.
func NewHealthHandler(instanceID, version string, nats ConnectionChecker) *HealthHandler {
	return &HealthHandler{InstanceID: instanceID, Version: version, nats: nats}
}

type HealthResponse struct {
	Status     string            `json:"status" example:"healthy"`
	InstanceID string            `json:"instance_id" example:"emotion-worker-1"`
	Components map[string]string `json:"components,omitempty"`
}

type ServiceInfoResponse struct {
	InstanceID   string   `json:"instance_id" example:"emotion-worker-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
	Docs         string   `json:"docs" example:"/docs/index.html"`
}

// @Summary Health check
// @Description Check if the service is healthy and responsive
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:     "healthy",
		InstanceID: h.InstanceID,
	}
	if h.nats != nil {
		state := "connected"
		if !h.nats.IsConnected() {
			state = "disconnected"
			resp.Status = "degraded"
		}
		resp.Components = map[string]string{"nats": state}
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Service information
// @Description Get basic service information and capabilities
// @Tags health
// @Produce json
// @Success 200 {object} ServiceInfoResponse
// @Router / [get]
func (h *HealthHandler) ServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfoResponse{
		InstanceID: h.InstanceID,
		Status:     "running",
		Version:    h.Version,
		Capabilities: []string{
			"mjpeg_streaming",
			"emotion_detection",
			"detection_events",
		},
		Docs: "/docs/index.html",
	})
}
