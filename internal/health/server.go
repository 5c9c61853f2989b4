package health

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"emotion-worker-go/internal/services/pipeline"
)

// PipelineService is the health service name that follows the pipeline state.
const PipelineService = "pipeline"

// Server exposes grpc.health.v1.Health. The overall service is always
// SERVING; PipelineService is SERVING only while the pipeline runs.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

func NewServer() *Server {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(PipelineService, healthpb.HealthCheckResponse_NOT_SERVING)

	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, hs)

	return &Server{grpc: gs, health: hs}
}

// OnStateChange is meant to be passed as pipeline.Deps.OnStateChange.
func (s *Server) OnStateChange(state pipeline.State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if state == pipeline.StateRunning {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(PipelineService, status)
}

// Serve blocks serving on lis until Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	log.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server listening")
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("grpc health server: %w", err)
	}
	return nil
}

// Stop marks everything NOT_SERVING and stops gracefully.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
