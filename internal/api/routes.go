package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.GET("/", s.healthHandler.ServiceInfo)
	s.router.GET("/health", s.healthHandler.HealthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	{
		api.GET("/video_feed", s.pipelineHandler.VideoFeed)
		api.POST("/start", s.pipelineHandler.Start)
		api.POST("/stop", s.pipelineHandler.Stop)
		api.GET("/status", s.pipelineHandler.Status)
		api.GET("/emotions", s.emotionsHandler.Recent)
		api.GET("/stats", s.emotionsHandler.Stats)
		if s.eventsHandler != nil {
			api.GET("/events", s.eventsHandler.Stream)
		}
	}

	system := s.router.Group("/system")
	{
		system.GET("/stats", s.systemHandler.GetStats)
	}
}
