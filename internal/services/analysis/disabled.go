package analysis

import (
	"context"

	"emotion-worker-go/internal/models"
)

// DisabledAnalyzer finds nothing in any frame. It stands in when no real
// analyzer could be built so the stream keeps working.
type DisabledAnalyzer struct{}

// Analyze always reports no detections
func (DisabledAnalyzer) Analyze(context.Context, models.Frame) ([]models.Detection, error) {
	return nil, nil
}
