package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"emotion-worker-go/internal/api/handlers"
	"emotion-worker-go/internal/api/middleware"
	"emotion-worker-go/internal/config"
	"emotion-worker-go/internal/services/events"
	"emotion-worker-go/internal/services/history"
	"emotion-worker-go/internal/services/stream"
)

// Deps are the services the HTTP layer exposes.
type Deps struct {
	Pipeline handlers.PipelineController
	Hub      *stream.Hub
	History  *history.Store
	Events   *events.Broker
	// NATS is nil when messaging is disabled
	NATS handlers.ConnectionChecker
}

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	healthHandler   *handlers.HealthHandler
	pipelineHandler *handlers.PipelineHandler
	emotionsHandler *handlers.EmotionsHandler
	eventsHandler   *handlers.EventsHandler
	systemHandler   *handlers.SystemHandler
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	// a nil *events.Broker must not reach the handlers as a non-nil interface
	var clients handlers.ClientCounter
	var eventsHandler *handlers.EventsHandler
	if deps.Events != nil {
		clients = deps.Events
		eventsHandler = handlers.NewEventsHandler(deps.Events)
	}

	s := &Server{
		config:          cfg,
		router:          gin.New(),
		healthHandler:   handlers.NewHealthHandler(cfg.InstanceID, cfg.Version, deps.NATS),
		pipelineHandler: handlers.NewPipelineHandler(deps.Pipeline, deps.Hub),
		emotionsHandler: handlers.NewEmotionsHandler(deps.History, cfg.RecentLimit),
		eventsHandler:   eventsHandler,
		systemHandler:   handlers.NewSystemHandler(cfg.InstanceID, deps.Hub, clients),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.RequestContext())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS())
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("Starting Emotion Worker API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Stopping Emotion Worker API")
	return s.server.Shutdown(ctx)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
