package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"emotion-worker-go/internal/models"
)

// ErrNoConnection is returned when the remote analyzer has no transport.
var ErrNoConnection = errors.New("analyzer transport not connected")

// Requester sends a request and waits for one reply.
type Requester interface {
	Request(ctx context.Context, subject string, payload []byte) ([]byte, error)
}

// Encoder produces the image bytes sent to the remote classifier.
type Encoder interface {
	Encode(frame models.Frame) ([]byte, error)
}

// Request is the payload sent to the classifier.
type Request struct {
	Seq    int64  `json:"seq"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Image  []byte `json:"image"` // JPEG, base64 in JSON
}

// Response is the classifier reply.
type Response struct {
	Detections []RemoteDetection `json:"detections"`
	Error      string            `json:"error,omitempty"`
}

type RemoteDetection struct {
	Box        [4]int  `json:"box"` // x, y, w, h
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// RemoteAnalyzer delegates analysis to a model service over request/reply.
type RemoteAnalyzer struct {
	requester Requester
	encoder   Encoder
	subject   string
	timeout   time.Duration
}

func NewRemoteAnalyzer(requester Requester, encoder Encoder, subject string, timeout time.Duration) *RemoteAnalyzer {
	return &RemoteAnalyzer{
		requester: requester,
		encoder:   encoder,
		subject:   subject,
		timeout:   timeout,
	}
}

func (a *RemoteAnalyzer) Analyze(ctx context.Context, frame models.Frame) ([]models.Detection, error) {
	if a.requester == nil {
		return nil, ErrNoConnection
	}

	img, err := a.encoder.Encode(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame for analysis: %w", err)
	}

	payload, err := json.Marshal(Request{Seq: frame.Seq, Width: frame.Width, Height: frame.Height, Image: img})
	if err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reply, err := a.requester.Request(ctx, a.subject, payload)
	if err != nil {
		return nil, fmt.Errorf("analyzer request on %s failed: %w", a.subject, err)
	}

	return DecodeResponse(reply)
}

// DecodeResponse converts a classifier reply into detections.
func DecodeResponse(reply []byte) ([]models.Detection, error) {
	var resp Response
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("invalid analyzer reply: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("analyzer error: %s", resp.Error)
	}

	detections := make([]models.Detection, 0, len(resp.Detections))
	for _, d := range resp.Detections {
		if d.Label == "" {
			continue
		}
		x, y, w, h := d.Box[0], d.Box[1], d.Box[2], d.Box[3]
		detections = append(detections, models.Detection{
			Box:        image.Rect(x, y, x+w, y+h),
			Label:      d.Label,
			Confidence: models.ClampConfidence(d.Confidence),
		})
	}
	return detections, nil
}
