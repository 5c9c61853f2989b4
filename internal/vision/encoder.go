package vision

import (
	"fmt"

	"gocv.io/x/gocv"

	"emotion-worker-go/internal/models"
)

// JPEGEncoder compresses BGR frames for the video feed
type JPEGEncoder struct {
	quality int
}

func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{quality: quality}
}

func (e *JPEGEncoder) Encode(frame models.Frame) ([]byte, error) {
	mat, err := toMat(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to create Mat from frame data: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, e.quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	b := buf.GetBytes()
	jpeg := make([]byte, len(b))
	copy(jpeg, b)
	return jpeg, nil
}
