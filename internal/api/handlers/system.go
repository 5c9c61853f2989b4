package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"emotion-worker-go/internal/services/stream"
)

// StreamStatsProvider exposes video feed delivery counters.
type StreamStatsProvider interface {
	Stats() stream.HubStats
}

// ClientCounter reports connected event clients.
type ClientCounter interface {
	Clients() int
}

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	InstanceID string
	startedAt  time.Time
	stream     StreamStatsProvider
	events     ClientCounter
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(instanceID string, stream StreamStatsProvider, events ClientCounter) *SystemHandler {
	return &SystemHandler{
		InstanceID: instanceID,
		startedAt:  time.Now(),
		stream:     stream,
		events:     events,
	}
}

// @Summary Get system stats
// @Description Runtime statistics plus video feed and event client counters
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := gin.H{
		"instance_id":    h.InstanceID,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"memory_mb":      m.Alloc / 1024 / 1024,
		"cpu_cores":      runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"go_version":     runtime.Version(),
		"stream":         h.stream.Stats(),
	}
	if h.events != nil {
		stats["event_clients"] = h.events.Clients()
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"stats":     stats,
		"timestamp": time.Now().Unix(),
	})
}
