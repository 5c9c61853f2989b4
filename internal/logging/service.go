package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"emotion-worker-go/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("instance_id", cfg.InstanceID).Str("service", service).Logger()
}

func WithDevice(base zerolog.Logger, index int) zerolog.Logger {
	return base.With().Int("camera_index", index).Logger()
}
