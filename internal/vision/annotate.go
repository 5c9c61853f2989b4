package vision

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"emotion-worker-go/internal/models"
)

var (
	boxColor    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	statusColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	clockColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Annotator draws detection boxes, the current label and a clock onto frames.
type Annotator struct{}

func NewAnnotator() *Annotator {
	return &Annotator{}
}

// Mirror flips the frame horizontally. On failure the frame is returned as is.
func (a *Annotator) Mirror(frame models.Frame) models.Frame {
	src, err := toMat(frame)
	if err != nil {
		log.Warn().Err(err).Int64("frame_seq", frame.Seq).Msg("Failed to mirror frame")
		return frame
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Flip(src, &dst, 1)

	out := frame
	out.Data = dst.ToBytes()
	return out
}

// Annotate returns a copy of frame with the overlays drawn.
func (a *Annotator) Annotate(frame models.Frame, detections []models.Detection, statusLabel string, at time.Time) models.Frame {
	mat, err := toMat(frame)
	if err != nil {
		log.Warn().Err(err).Int64("frame_seq", frame.Seq).Msg("Failed to annotate frame")
		return frame
	}
	defer mat.Close()

	for _, det := range detections {
		gocv.Rectangle(&mat, det.Box, boxColor, 2)
		gocv.PutText(&mat, DetectionText(det), image.Pt(det.Box.Min.X, det.Box.Min.Y-10),
			gocv.FontHersheySimplex, 0.9, boxColor, 2)
	}

	gocv.PutText(&mat, StatusText(statusLabel), image.Pt(10, 30), gocv.FontHersheySimplex, 0.7, statusColor, 2)
	gocv.PutText(&mat, ClockText(at), image.Pt(10, frame.Height-10), gocv.FontHersheySimplex, 0.5, clockColor, 1)

	out := frame
	out.Data = mat.ToBytes()
	return out
}

// DetectionText is the label drawn above a box, e.g. "Happy (0.87)".
func DetectionText(det models.Detection) string {
	return fmt.Sprintf("%s (%.2f)", det.Label, det.Confidence)
}

func StatusText(label string) string {
	return "Current: " + label
}

func ClockText(at time.Time) string {
	return at.Format("15:04:05")
}

// toMat builds a Mat over a private copy of the frame bytes so the caller's
// buffer is never written.
func toMat(frame models.Frame) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty frame")
	}
	if len(frame.Data) != frame.Width*frame.Height*3 {
		return gocv.Mat{}, fmt.Errorf("frame size mismatch: %d bytes for %dx%d", len(frame.Data), frame.Width, frame.Height)
	}
	return gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Clone().Data)
}
