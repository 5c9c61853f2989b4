package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"emotion-worker-go/internal/config"
	"emotion-worker-go/internal/models"
)

type Service struct {
	conn *nats.Conn
	cfg  *config.Config
}

func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name(cfg.InstanceID),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NatsURL, err)
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn: conn,
		cfg:  cfg,
	}, nil
}

func (s *Service) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return s.conn.Publish(subject, payload)
}

// Request sends payload on subject and waits for a single reply.
func (s *Service) Request(ctx context.Context, subject string, payload []byte) ([]byte, error) {
	msg, err := s.conn.RequestWithContext(ctx, subject, payload)
	if err != nil {
		return nil, err
	}
	return msg.Data, nil
}

func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn != nil {
		// Try graceful drain with timeout, fallback to immediate close
		if err := s.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			s.conn.Close()
		}
	}
	return nil
}

// Publisher is the part of Service the event sink needs.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// EventPublisher forwards recorded detection events to a NATS subject.
type EventPublisher struct {
	pub     Publisher
	subject string
}

func NewEventPublisher(pub Publisher, subject string) *EventPublisher {
	return &EventPublisher{pub: pub, subject: subject}
}

// Emit publishes the event. Failures are logged and otherwise ignored.
func (p *EventPublisher) Emit(event models.DetectionEvent) {
	if err := p.pub.Publish(p.subject, event); err != nil {
		log.Warn().Err(err).Str("subject", p.subject).Str("emotion", event.Emotion).Msg("Failed to publish detection event")
	}
}
