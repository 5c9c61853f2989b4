package models

import (
	"time"
)

// Frame is a single BGR24 image read from the capture device.
type Frame struct {
	Data       []byte
	Width      int
	Height     int
	Seq        int64
	CapturedAt time.Time
}

// Empty reports whether the frame carries no pixels.
func (f Frame) Empty() bool {
	return len(f.Data) == 0 || f.Width <= 0 || f.Height <= 0
}

// Clone returns a deep copy so overlays never touch the source buffer.
func (f Frame) Clone() Frame {
	data := make([]byte, len(f.Data))
	copy(data, f.Data)
	f.Data = data
	return f
}

// Status is the externally visible pipeline state
type Status struct {
	IsRunning       bool   `json:"is_running"`
	CurrentEmotion  string `json:"current_emotion"`
	TotalDetections int    `json:"total_detections"`
}
