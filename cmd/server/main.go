package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"emotion-worker-go/internal/api"
	"emotion-worker-go/internal/api/handlers"
	"emotion-worker-go/internal/config"
	"emotion-worker-go/internal/health"
	"emotion-worker-go/internal/logging"
	"emotion-worker-go/internal/services/analysis"
	"emotion-worker-go/internal/services/events"
	"emotion-worker-go/internal/services/history"
	"emotion-worker-go/internal/services/messaging"
	"emotion-worker-go/internal/services/pipeline"
	"emotion-worker-go/internal/services/stream"
	"emotion-worker-go/internal/vision"
)

// @title Emotion Worker API
// @version 1.0.0
// @description Live webcam emotion annotation: MJPEG video feed, start/stop control and detection statistics
// @BasePath /
func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = time.RFC3339
	console := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = log.Output(console)

	// Load configuration
	cfg := config.Load()

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogdyEnabled {
		ldWriter, _, err := logging.StartLogdy(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to start Logdy, continuing with console logging")
		} else {
			log.Logger = log.Output(io.MultiWriter(console, ldWriter))
		}
	}

	log.Info().
		Str("instance_id", cfg.InstanceID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("analyzer", cfg.AnalyzerMode).
		Msg("Starting Emotion Worker")

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Emotion Worker failed")
	}
}

func run(cfg *config.Config) error {
	var nats *messaging.Service
	if cfg.NatsEnabled {
		svc, err := messaging.NewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, detection events will not be published")
		} else {
			nats = svc
		}
	}

	encoder := vision.NewJPEGEncoder(cfg.JPEGQuality)

	analyzer, closeAnalyzer := newAnalyzer(cfg, nats, encoder)
	defer closeAnalyzer()

	store := history.NewStore(cfg.HistoryCapacity)
	hub := stream.NewHub(cfg.StreamBuffer)
	broker := events.NewBroker()

	sinks := []pipeline.EventSink{broker}
	if nats != nil {
		sinks = append(sinks, messaging.NewEventPublisher(nats, cfg.EventsSubject))
	}

	healthServer := health.NewServer()

	controller := pipeline.NewController(cfg, pipeline.Deps{
		Opener:        vision.NewDeviceOpener(cfg),
		Analyzer:      analyzer,
		Annotator:     vision.NewAnnotator(),
		Encoder:       encoder,
		History:       store,
		Hub:           hub,
		Sinks:         sinks,
		OnStateChange: healthServer.OnStateChange,
	})

	deps := api.Deps{
		Pipeline: controller,
		Hub:      hub,
		History:  store,
		Events:   broker,
	}
	if nats != nil {
		deps.NATS = handlers.ConnectionChecker(nats)
	}
	server := api.NewServer(cfg, deps)

	errCh := make(chan error, 2)

	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if cfg.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC health on %d: %w", cfg.GRPCPort, err)
		}
		go func() {
			if err := healthServer.Serve(lis); err != nil {
				errCh <- err
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server error, shutting down")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// open video feeds end with the pipeline, before the HTTP server drains
	controller.Stop()
	broker.Close()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if cfg.GRPCPort > 0 {
		healthServer.Stop()
	}
	if nats != nil {
		nats.Shutdown(ctx)
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}

// newAnalyzer builds the analyzer selected by ANALYZER_MODE.
func newAnalyzer(cfg *config.Config, nats *messaging.Service, encoder *vision.JPEGEncoder) (pipeline.Analyzer, func()) {
	if cfg.AnalyzerMode == config.AnalyzerRemote {
		var requester analysis.Requester
		if nats != nil {
			requester = nats
		} else {
			log.Warn().Msg("Remote analyzer selected without NATS, every frame will report no face")
		}
		log.Info().Str("subject", cfg.AnalyzerSubject).Dur("timeout", cfg.AnalyzerTimeout).Msg("Using remote analyzer")
		return analysis.NewRemoteAnalyzer(requester, encoder, cfg.AnalyzerSubject, cfg.AnalyzerTimeout), func() {}
	}

	haar, err := vision.NewHaarAnalyzer(cfg.CascadePath)
	if err != nil {
		log.Error().Err(err).Str("cascade", cfg.CascadePath).Msg("Face detector unavailable, streaming without analysis")
		return analysis.DisabledAnalyzer{}, func() {}
	}
	log.Info().Str("cascade", cfg.CascadePath).Msg("Using haar cascade analyzer")
	return haar, func() { haar.Close() }
}
