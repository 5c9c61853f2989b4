package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"emotion-worker-go/internal/config"
	"emotion-worker-go/internal/logging"
	"emotion-worker-go/internal/metrics"
	"emotion-worker-go/internal/models"
	"emotion-worker-go/internal/services/stream"
)

// Deps are the collaborators the controller drives.
type Deps struct {
	Opener    SourceOpener
	Analyzer  Analyzer
	Annotator Annotator
	Encoder   Encoder
	History   Recorder
	Hub       Broadcaster
	Sinks     []EventSink

	// OnStateChange is called after every Idle/Running transition.
	OnStateChange func(State)

	// Now defaults to time.Now
	Now func() time.Time
}

// run is one Running period, from a successful Start until the loop exits.
type run struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller owns the capture loop and its Idle/Running lifecycle.
type Controller struct {
	deps          Deps
	analyzeEvery  int64
	frameInterval time.Duration
	mirror        bool
	logger        zerolog.Logger

	// mu serializes Start and Stop
	mu  sync.Mutex
	run *run

	statusMu sync.RWMutex
	running  bool
	label    string
}

// NewController creates an idle controller
func NewController(cfg *config.Config, deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	every := cfg.AnalyzeEvery
	if every < 1 {
		every = 1
	}

	return &Controller{
		deps:          deps,
		analyzeEvery:  int64(every),
		frameInterval: cfg.FrameInterval,
		mirror:        cfg.MirrorFrames,
		logger:        logging.NewServiceLogger(cfg, "pipeline"),
		label:         models.NoFaceLabel,
	}
}

// Start opens the camera and launches the capture loop. Calling Start while
// running is not an error and reports AlreadyRunning.
func (c *Controller) Start(ctx context.Context) (StartResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run != nil {
		select {
		case <-c.run.done:
			// the previous run stopped itself after a read failure
			c.run = nil
		default:
			return AlreadyRunning, nil
		}
	}

	src, err := c.deps.Opener.Open(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open frame source")
		return Started, fmt.Errorf("failed to start pipeline: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{cancel: cancel, done: make(chan struct{})}
	c.run = r

	c.deps.Hub.Open()
	c.setRunning(true)

	go c.loop(runCtx, r, src)

	c.logger.Info().
		Int64("analyze_every", c.analyzeEvery).
		Dur("frame_interval", c.frameInterval).
		Msg("Pipeline started")

	return Started, nil
}

// Stop signals the loop and blocks until it has released the camera.
// It reports whether a run was actually stopped.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.run
	if r == nil {
		return false
	}

	r.cancel()
	<-r.done
	c.run = nil

	c.logger.Info().Msg("Pipeline stopped")
	return true
}

// Done returns a channel closed when the current run ends.
// While idle the returned channel is already closed.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.run == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.run.done
}

// State returns Running while a loop owns the camera.
func (c *Controller) State() State {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	if c.running {
		return StateRunning
	}
	return StateIdle
}

// CurrentLabel returns the most recent analysis label.
func (c *Controller) CurrentLabel() string {
	c.statusMu.RLock()
	defer c.statusMu.RUnlock()
	return c.label
}

// Status returns the snapshot served by the status endpoint.
func (c *Controller) Status() models.Status {
	c.statusMu.RLock()
	running, label := c.running, c.label
	c.statusMu.RUnlock()

	return models.Status{
		IsRunning:       running,
		CurrentEmotion:  label,
		TotalDetections: c.deps.History.Len(),
	}
}

func (c *Controller) setRunning(running bool) {
	c.statusMu.Lock()
	c.running = running
	c.statusMu.Unlock()

	state := StateIdle
	if running {
		state = StateRunning
		metrics.PipelineRunning.Set(1)
	} else {
		metrics.PipelineRunning.Set(0)
	}
	if c.deps.OnStateChange != nil {
		c.deps.OnStateChange(state)
	}
}

func (c *Controller) setLabel(label string) {
	c.statusMu.Lock()
	c.label = label
	c.statusMu.Unlock()
}

// loop is the body of a run. It owns src and releases it on every exit path.
func (c *Controller) loop(ctx context.Context, r *run, src Source) {
	var iteration int64

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Error().
				Interface("panic", rec).
				Int64("iteration", iteration).
				Msg("Capture loop panic recovered, stopping pipeline")
		}
		if err := src.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to release frame source")
		}
		c.deps.Hub.EndStream()
		c.setRunning(false)
		close(r.done)

		c.logger.Info().Int64("frames", iteration).Msg("Capture loop ended")
	}()

	// detections of the last analysis, reused on skipped frames
	var detections []models.Detection

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		started := time.Now()
		frame, err := src.Read()
		if ctx.Err() != nil {
			// stop was requested while reading, abandon the frame
			return
		}
		if err != nil {
			c.logger.Error().
				Err(err).
				Int64("iteration", iteration).
				Msg("Frame read failed, stopping pipeline")
			return
		}
		metrics.FramesCaptured.Inc()

		detections = c.processFrame(ctx, iteration, frame, detections)
		iteration++

		if !c.pace(ctx, started) {
			return
		}
	}
}

// processFrame runs one loop iteration after the read and returns the
// detections to keep for the following frames.
func (c *Controller) processFrame(ctx context.Context, iteration int64, frame models.Frame, detections []models.Detection) []models.Detection {
	if c.mirror {
		frame = c.deps.Annotator.Mirror(frame)
	}

	if iteration%c.analyzeEvery == 0 {
		found, ok := c.analyze(ctx, frame)
		if !ok {
			// run cancelled mid-analysis, keep the last result
			return detections
		}
		detections = found
		c.recordDetections(detections)
	}

	annotated := c.deps.Annotator.Annotate(frame, detections, c.CurrentLabel(), c.deps.Now())

	jpeg, err := c.deps.Encoder.Encode(annotated)
	if err != nil {
		c.logger.Warn().Err(err).Int64("frame_seq", frame.Seq).Msg("Failed to encode frame, skipping")
		metrics.FramesDropped.WithLabelValues("encode").Inc()
		return detections
	}

	c.deps.Hub.Publish(stream.FrameChunk(jpeg))
	return detections
}

// analyze calls the analyzer and treats any failure as "nothing found".
// ok is false when the run was cancelled while the analyzer was working.
func (c *Controller) analyze(ctx context.Context, frame models.Frame) (detections []models.Detection, ok bool) {
	started := time.Now()
	metrics.AnalysisRuns.Inc()

	defer func() {
		if rec := recover(); rec != nil {
			c.logger.Warn().Interface("panic", rec).Int64("frame_seq", frame.Seq).Msg("Analyzer panic recovered")
			metrics.AnalysisFailures.Inc()
			detections, ok = nil, true
		}
		metrics.AnalysisLatency.Observe(time.Since(started).Seconds())
	}()

	detections, err := c.deps.Analyzer.Analyze(ctx, frame)
	if ctx.Err() != nil {
		c.logger.Debug().Int64("frame_seq", frame.Seq).Msg("Analysis abandoned, pipeline stopping")
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Int64("frame_seq", frame.Seq).Msg("Analyzer failed, treating frame as empty")
		metrics.AnalysisFailures.Inc()
		return nil, true
	}
	return detections, true
}

// recordDetections updates the current label and stores one event for the
// most confident detection.
func (c *Controller) recordDetections(detections []models.Detection) {
	best, ok := models.Representative(detections)
	if !ok {
		c.setLabel(models.NoFaceLabel)
		return
	}

	c.setLabel(best.Label)

	event := models.NewDetectionEvent(best, c.deps.Now())
	c.deps.History.Record(event)
	metrics.DetectionsRecorded.WithLabelValues(event.Emotion).Inc()

	for _, sink := range c.deps.Sinks {
		sink.Emit(event)
	}
}

// pace waits out the rest of the frame interval. It returns false when the
// run was cancelled during the wait.
func (c *Controller) pace(ctx context.Context, started time.Time) bool {
	wait := c.frameInterval - time.Since(started)
	if wait <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
