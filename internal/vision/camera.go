package vision

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"

	"emotion-worker-go/internal/config"
	"emotion-worker-go/internal/logging"
	"emotion-worker-go/internal/models"
	"emotion-worker-go/internal/services/pipeline"
)

// capture is the part of a video device the opener and source use.
type capture interface {
	IsOpened() bool
	Read(img *gocv.Mat) bool
	Configure(width, height, fps int)
	Actual() (width, height, fps float64)
	Close() error
}

// videoDevice adapts gocv.VideoCapture to capture.
type videoDevice struct {
	vc *gocv.VideoCapture
}

func openVideoDevice(index int) (capture, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, err
	}
	return &videoDevice{vc: vc}, nil
}

func (d *videoDevice) IsOpened() bool          { return d.vc.IsOpened() }
func (d *videoDevice) Read(img *gocv.Mat) bool { return d.vc.Read(img) }
func (d *videoDevice) Close() error            { return d.vc.Close() }

func (d *videoDevice) Configure(width, height, fps int) {
	d.vc.Set(gocv.VideoCaptureFrameWidth, float64(width))
	d.vc.Set(gocv.VideoCaptureFrameHeight, float64(height))
	d.vc.Set(gocv.VideoCaptureFPS, float64(fps))
}

func (d *videoDevice) Actual() (float64, float64, float64) {
	return d.vc.Get(gocv.VideoCaptureFrameWidth),
		d.vc.Get(gocv.VideoCaptureFrameHeight),
		d.vc.Get(gocv.VideoCaptureFPS)
}

// DeviceOpener opens the first local camera that returns a frame.
type DeviceOpener struct {
	indices []int
	width   int
	height  int
	fps     int
	logger  zerolog.Logger

	open func(index int) (capture, error)
}

// NewDeviceOpener creates an opener trying cfg.CameraIndices in order
func NewDeviceOpener(cfg *config.Config) *DeviceOpener {
	return &DeviceOpener{
		indices: cfg.CameraIndices,
		width:   cfg.FrameWidth,
		height:  cfg.FrameHeight,
		fps:     cfg.CameraFPS,
		logger:  logging.NewServiceLogger(cfg, "camera"),
		open:    openVideoDevice,
	}
}

// Open tries each candidate index with a test read and keeps the first one
// that works. It returns pipeline.ErrNoDevice when none do.
func (o *DeviceOpener) Open(ctx context.Context) (pipeline.Source, error) {
	for _, idx := range o.indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dev, err := o.open(idx)
		if err != nil {
			o.logger.Debug().Err(err).Int("camera_index", idx).Msg("Camera index unavailable")
			continue
		}
		if !dev.IsOpened() || !readsFrame(dev) {
			o.logger.Debug().Int("camera_index", idx).Msg("Camera index opened but returned no frame")
			dev.Close()
			continue
		}

		dev.Configure(o.width, o.height, o.fps)

		logger := logging.WithDevice(o.logger, idx)
		w, h, fps := dev.Actual()
		logger.Info().
			Float64("actual_width", w).
			Float64("actual_height", h).
			Float64("actual_fps", fps).
			Msg("Camera opened")

		return &deviceSource{index: idx, dev: dev, img: gocv.NewMat(), logger: logger}, nil
	}

	return nil, fmt.Errorf("tried indices %v: %w", o.indices, pipeline.ErrNoDevice)
}

func readsFrame(dev capture) bool {
	img := gocv.NewMat()
	defer img.Close()
	return dev.Read(&img) && !img.Empty()
}

// deviceSource is a camera held open for a single run.
type deviceSource struct {
	index int
	dev   capture
	img   gocv.Mat
	seq   int64

	logger    zerolog.Logger
	closeOnce sync.Once
}

func (s *deviceSource) Read() (models.Frame, error) {
	if ok := s.dev.Read(&s.img); !ok || s.img.Empty() {
		return models.Frame{}, fmt.Errorf("camera %d: %w", s.index, pipeline.ErrReadFailed)
	}
	s.seq++

	return models.Frame{
		Data:       s.img.ToBytes(),
		Width:      s.img.Cols(),
		Height:     s.img.Rows(),
		Seq:        s.seq,
		CapturedAt: time.Now(),
	}, nil
}

func (s *deviceSource) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.img.Close()
		err = s.dev.Close()
		s.logger.Info().Int64("frames", s.seq).Msg("Camera released")
	})
	return err
}
