package vision

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"
	"sync"

	"gocv.io/x/gocv"

	"emotion-worker-go/internal/models"
)

const (
	minConfidence = 0.7
	maxConfidence = 0.95
)

// HaarAnalyzer finds faces with a Haar cascade and assigns them a
// pseudo-random emotion. It stands in for a real expression model.
type HaarAnalyzer struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

// NewHaarAnalyzer loads the cascade at path
func NewHaarAnalyzer(path string) (*HaarAnalyzer, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("unable to load cascade %s", path)
	}
	return &HaarAnalyzer{classifier: classifier}, nil
}

// Analyze labels every face in the frame with the same emotion and confidence.
func (h *HaarAnalyzer) Analyze(ctx context.Context, frame models.Frame) ([]models.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := toMat(frame)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	h.mu.Lock()
	faces := h.classifier.DetectMultiScaleWithParams(gray, 1.1, 4, 0, image.Point{}, image.Point{})
	h.mu.Unlock()

	if len(faces) == 0 {
		return nil, nil
	}

	label, confidence := RandomEmotion()
	detections := make([]models.Detection, 0, len(faces))
	for _, face := range faces {
		detections = append(detections, models.Detection{Box: face, Label: label, Confidence: confidence})
	}
	return detections, nil
}

func (h *HaarAnalyzer) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.classifier.Close()
}

// RandomEmotion draws a label uniformly from models.Emotions and a confidence
// in [0.7, 0.95).
func RandomEmotion() (string, float64) {
	label := models.Emotions[rand.IntN(len(models.Emotions))]
	return label, minConfidence + rand.Float64()*(maxConfidence-minConfidence)
}
