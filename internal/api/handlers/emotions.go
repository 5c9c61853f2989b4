package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"emotion-worker-go/internal/models"
)

// HistoryReader reads the detection history.
type HistoryReader interface {
	Recent(n int) []models.DetectionEvent
	Stats() models.Stats
}

type EmotionsHandler struct {
	history HistoryReader
	limit   int
}

func NewEmotionsHandler(history HistoryReader, limit int) *EmotionsHandler {
	return &EmotionsHandler{history: history, limit: limit}
}

// Recent returns the latest detection events
// @Summary Get emotion history
// @Description Most recent detection events, oldest first
// @Tags emotions
// @Produce json
// @Success 200 {array} models.DetectionEvent
// @Router /api/emotions [get]
func (h *EmotionsHandler) Recent(c *gin.Context) {
	c.JSON(http.StatusOK, h.history.Recent(h.limit))
}

// Stats returns aggregate statistics over the history
// @Summary Get emotion statistics
// @Tags emotions
// @Produce json
// @Success 200 {object} models.Stats
// @Success 200 {object} MessageResponse "when no detections were recorded"
// @Router /api/stats [get]
func (h *EmotionsHandler) Stats(c *gin.Context) {
	stats := h.history.Stats()
	if stats.Empty() {
		c.JSON(http.StatusOK, MessageResponse{Message: "No data available"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
