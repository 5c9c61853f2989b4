package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EventServer upgrades a request to a live event connection.
type EventServer interface {
	ServeWS(w http.ResponseWriter, r *http.Request)
}

type EventsHandler struct {
	server EventServer
}

func NewEventsHandler(server EventServer) *EventsHandler {
	return &EventsHandler{server: server}
}

// Stream pushes detection events over a websocket
// @Summary Live detection events
// @Description WebSocket. Each recorded detection is sent as a JSON text message.
// @Tags emotions
// @Success 101
// @Router /api/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	h.server.ServeWS(c.Writer, c.Request)
}
