package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"emotion-worker-go/internal/logging"
	"emotion-worker-go/internal/models"
	"emotion-worker-go/internal/services/pipeline"
)

// PipelineController is the control surface of the capture pipeline.
type PipelineController interface {
	Start(ctx context.Context) (pipeline.StartResult, error)
	Stop() bool
	Status() models.Status
}

// FeedStreamer writes the live multipart video feed.
type FeedStreamer interface {
	StreamHTTP(w http.ResponseWriter, r *http.Request)
}

type PipelineHandler struct {
	controller PipelineController
	feed       FeedStreamer
}

func NewPipelineHandler(controller PipelineController, feed FeedStreamer) *PipelineHandler {
	return &PipelineHandler{
		controller: controller,
		feed:       feed,
	}
}

// Start starts emotion detection
// @Summary Start emotion detection
// @Description Open the camera and start the capture pipeline. Starting twice is not an error.
// @Tags pipeline
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/start [post]
func (h *PipelineHandler) Start(c *gin.Context) {
	res, err := h.controller.Start(c.Request.Context())
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to start emotion detection")

		code := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrNoDevice) {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, ErrorResponse{Status: "error", Message: err.Error()})
		return
	}

	if res == pipeline.AlreadyRunning {
		c.JSON(http.StatusOK, StatusResponse{Status: res.String(), Message: "Already running"})
		return
	}

	logging.Info(c).Msg("Emotion detection started")
	c.JSON(http.StatusOK, StatusResponse{Status: res.String(), Message: "Emotion detection started"})
}

// Stop stops emotion detection
// @Summary Stop emotion detection
// @Description Stop the pipeline and release the camera. Safe to call when idle.
// @Tags pipeline
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/stop [post]
func (h *PipelineHandler) Stop(c *gin.Context) {
	if h.controller.Stop() {
		logging.Info(c).Msg("Emotion detection stopped")
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "stopped", Message: "Emotion detection stopped"})
}

// Status returns the pipeline status
// @Summary Get current status
// @Tags pipeline
// @Produce json
// @Success 200 {object} models.Status
// @Router /api/status [get]
func (h *PipelineHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.controller.Status())
}

// VideoFeed streams annotated frames
// @Summary Live video feed
// @Description multipart/x-mixed-replace JPEG stream. Ends immediately while the pipeline is idle.
// @Tags pipeline
// @Produce multipart/x-mixed-replace
// @Success 200
// @Router /api/video_feed [get]
func (h *PipelineHandler) VideoFeed(c *gin.Context) {
	logging.Debug(c).Str("remote_addr", c.ClientIP()).Msg("Video feed viewer connected")
	h.feed.StreamHTTP(c.Writer, c.Request)
	logging.Debug(c).Str("remote_addr", c.ClientIP()).Msg("Video feed viewer left")
}
