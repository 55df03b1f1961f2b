package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"thrift-swap-backend/internal/models"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// Event types delivered to participants and published to the bus
const (
	EventMatchCreated  = "match_created"
	EventMessagePosted = "message_posted"
)

// Notifier is told about committed state changes. Delivery is best-effort:
// clients that miss an event pick the change up on their next poll.
type Notifier interface {
	MatchCreated(ctx context.Context, match *models.Match)
	MessagePosted(ctx context.Context, match *models.Match, msg *models.Message)
}

// Notifiers fans an event out to every notifier in the list
type Notifiers []Notifier

// MatchCreated implements Notifier
func (n Notifiers) MatchCreated(ctx context.Context, match *models.Match) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.MatchCreated(ctx, match)
		}
	}
}

// MessagePosted implements Notifier
func (n Notifiers) MessagePosted(ctx context.Context, match *models.Match, msg *models.Message) {
	for _, notifier := range n {
		if notifier != nil {
			notifier.MessagePosted(ctx, match, msg)
		}
	}
}

// publisher is the part of *nats.Conn the NATS notifier needs
type publisher interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher publishes match and message events to NATS subjects
// "<prefix>.match.created" and "<prefix>.message.posted"
type NATSPublisher struct {
	conn   publisher
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to NATS
func NewNATSPublisher(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("thrift-swap-backend"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	p := newNATSPublisher(nc, prefix)
	p.nc = nc
	return p, nil
}

func newNATSPublisher(conn publisher, prefix string) *NATSPublisher {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "thriftswap"
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Close drains the underlying connection
func (p *NATSPublisher) Close() {
	if p.nc != nil && !p.nc.IsClosed() {
		if err := p.nc.Drain(); err != nil {
			log.Error().Err(err).Msg("Failed to drain NATS connection")
		}
	}
}

func (p *NATSPublisher) publish(subject string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to marshal event")
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to publish event")
	}
}

// MatchCreated implements Notifier
func (p *NATSPublisher) MatchCreated(_ context.Context, match *models.Match) {
	p.publish(p.prefix+".match.created", WSMessage{Type: EventMatchCreated, Data: match})
}

// MessagePosted implements Notifier
func (p *NATSPublisher) MessagePosted(_ context.Context, _ *models.Match, msg *models.Message) {
	p.publish(p.prefix+".message.posted", WSMessage{Type: EventMessagePosted, Data: msg})
}
