package pipeline

import (
	"context"
	"errors"
	"time"

	"emotion-worker-go/internal/models"
)

var (
	// ErrNoDevice means no candidate camera could be opened and read.
	ErrNoDevice = errors.New("no working camera found")
	// ErrReadFailed means the open camera stopped returning frames.
	ErrReadFailed = errors.New("failed to read frame")
)

// State is the lifecycle state of the pipeline
type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// StartResult tells a caller what Start did.
type StartResult int

const (
	Started StartResult = iota
	AlreadyRunning
)

func (r StartResult) String() string {
	if r == AlreadyRunning {
		return "already_running"
	}
	return "started"
}

// Source is an open capture device owned by a single run.
type Source interface {
	// Read blocks until a frame is available or the device fails.
	Read() (models.Frame, error)
	// Close releases the device. Safe to call more than once.
	Close() error
}

// SourceOpener opens a fresh Source for every run.
type SourceOpener interface {
	Open(ctx context.Context) (Source, error)
}

// Analyzer finds labeled regions in a frame. An empty result is valid.
type Analyzer interface {
	Analyze(ctx context.Context, frame models.Frame) ([]models.Detection, error)
}

// Annotator draws overlays. Implementations must not fail and must not modify
// the frame passed in.
type Annotator interface {
	Mirror(frame models.Frame) models.Frame
	Annotate(frame models.Frame, detections []models.Detection, statusLabel string, at time.Time) models.Frame
}

// Encoder compresses a frame for the video feed.
type Encoder interface {
	Encode(frame models.Frame) ([]byte, error)
}

// Recorder keeps the detection history.
type Recorder interface {
	Record(event models.DetectionEvent)
	Len() int
}

// Broadcaster fans encoded chunks out to viewers.
type Broadcaster interface {
	Open()
	Publish(chunk []byte)
	EndStream()
}

// EventSink receives every recorded detection event. Emit must not block.
type EventSink interface {
	Emit(event models.DetectionEvent)
}
