package models

import (
	"image"
	"time"
)

// NoFaceLabel is reported while nothing has been detected.
const NoFaceLabel = "No face detected"

// Emotions lists the labels the heuristic analyzer can emit.
var Emotions = []string{"Happy", "Sad", "Angry", "Surprised", "Neutral", "Fear", "Disgust"}

// Detection is one labeled region returned by an analyzer
type Detection struct {
	Box        image.Rectangle `json:"box"`
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
}

// DetectionEvent is a single entry of the detection history.
type DetectionEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Emotion    string    `json:"emotion"`
	Confidence float64   `json:"confidence"`
}

// NewDetectionEvent builds an event from a detection, clamping confidence into [0,1].
func NewDetectionEvent(det Detection, at time.Time) DetectionEvent {
	return DetectionEvent{
		Timestamp:  at,
		Emotion:    det.Label,
		Confidence: ClampConfidence(det.Confidence),
	}
}

// ClampConfidence keeps a score inside [0,1]
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// Representative picks the detection with the highest confidence.
// The first one wins on ties. ok is false for an empty slice.
func Representative(dets []Detection) (Detection, bool) {
	if len(dets) == 0 {
		return Detection{}, false
	}
	best := dets[0]
	for _, d := range dets[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, true
}

// Stats aggregates the detection history
type Stats struct {
	TotalDetections    int                `json:"total_detections"`
	EmotionCounts      map[string]int     `json:"emotion_counts"`
	EmotionPercentages map[string]float64 `json:"emotion_percentages"`
	MostCommon         *string            `json:"most_common"`
}

// Empty reports the "no data" state.
func (s Stats) Empty() bool {
	return s.TotalDetections == 0
}
