package jetstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
	"github.com/feral-file/ff-sale-ledger/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	MaxAge         time.Duration
}

// Message is the wire form of a ledger event
type Message struct {
	Sequence uint64 `json:"sequence"`
	domain.EventBody
	PrevHash string `json:"prevHash"`
	Hash     string `json:"hash"`
}

// NewMessage converts a journaled event to its wire form
func NewMessage(event domain.Event) Message {
	return Message{
		Sequence:  event.Sequence,
		EventBody: event.EventBody,
		PrevHash:  event.PrevHash.Hex(),
		Hash:      event.Hash.Hex(),
	}
}

type publisher struct {
	nc  adapter.NatsConn
	js  adapter.JetStream
	cfg Config
}

// Connect dials NATS with the reconnect policy and logging handlers shared by every ledger process
func Connect(cfg Config, natsJS adapter.NatsJetStream) (adapter.NatsConn, adapter.JetStream, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	return nc, js, nil
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream) (messaging.Publisher, error) {
	nc, js, err := Connect(cfg, natsJS)
	if err != nil {
		return nil, err
	}
	return &publisher{nc: nc, js: js, cfg: cfg}, nil
}

// EnsureStream creates or updates the stream capturing every ledger event subject
func (p *publisher) EnsureStream(ctx context.Context) error {
	err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       p.cfg.StreamName,
		Subjects:   []string{p.cfg.SubjectPrefix + ".>"},
		Storage:    jetstream.FileStorage,
		MaxAge:     p.cfg.MaxAge,
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("failed to create or update stream %s: %w", p.cfg.StreamName, err)
	}
	return nil
}

// PublishEvent publishes a ledger event to NATS JetStream
func (p *publisher) PublishEvent(ctx context.Context, event domain.Event) error {
	logger.DebugCtx(ctx, "Publishing ledger event", zap.Uint64("sequence", event.Sequence), zap.String("type", string(event.Type)))

	data, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, Subject(p.cfg.SubjectPrefix, event.Type), data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Subject builds the NATS subject of an event type, e.g. ledger.events.purchase
func Subject(prefix string, eventType domain.EventType) string {
	return fmt.Sprintf("%s.%s", prefix, strings.ToLower(string(eventType)))
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
