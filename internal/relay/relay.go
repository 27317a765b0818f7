package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
	"github.com/feral-file/ff-sale-ledger/internal/messaging"
)

// EventSource is the outbox side of the ledger store
//
//go:generate mockgen -source=relay.go -destination=../mocks/relay.go -package=mocks -mock_names=EventSource=MockEventSource
type EventSource interface {
	// UnpublishedEvents returns the oldest events not yet delivered
	UnpublishedEvents(ctx context.Context, limit int) ([]domain.Event, error)
	// MarkEventsPublished records delivery of the given events
	MarkEventsPublished(ctx context.Context, sequences []uint64, at time.Time) error
}

// Config holds the configuration for the relay
type Config struct {
	BatchSize      int
	PollInterval   time.Duration
	MaxElapsedTime time.Duration
	// InitialInterval is the first publish retry delay; zero uses the backoff default
	InitialInterval time.Duration
}

// Relay delivers journaled ledger events to the message broker in sequence order.
// An event is marked published only after the broker acknowledged it, so delivery is at least once.
type Relay struct {
	source    EventSource
	publisher messaging.Publisher
	clock     adapter.Clock
	config    Config
}

// New creates a new relay
func New(source EventSource, publisher messaging.Publisher, clock adapter.Clock, cfg Config) *Relay {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Relay{
		source:    source,
		publisher: publisher,
		clock:     clock,
		config:    cfg,
	}
}

// Run relays events until the context is cancelled
func (r *Relay) Run(ctx context.Context) error {
	if err := r.publisher.EnsureStream(ctx); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "Event relay started",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Duration("poll_interval", r.config.PollInterval),
	)

	for {
		n, err := r.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorCtx(ctx, fmt.Errorf("relay batch failed: %w", err))
		}

		// a full batch means more events are probably waiting
		if err == nil && n == r.config.BatchSize {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(r.config.PollInterval):
		}
	}
}

// RunOnce publishes one batch of unpublished events and returns how many were delivered
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	events, err := r.source.UnpublishedEvents(ctx, r.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to load unpublished events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]uint64, 0, len(events))
	var publishErr error
	for _, event := range events {
		if err := r.publishWithRetry(ctx, event); err != nil {
			publishErr = fmt.Errorf("failed to publish event %d: %w", event.Sequence, err)
			break
		}
		published = append(published, event.Sequence)
	}

	if len(published) > 0 {
		if err := r.source.MarkEventsPublished(ctx, published, r.clock.Now()); err != nil {
			return 0, fmt.Errorf("failed to mark events published: %w", err)
		}
		mRelayed.Add(float64(len(published)))
		logger.DebugCtx(ctx, "Relayed ledger events",
			zap.Int("count", len(published)),
			zap.Uint64("last_sequence", published[len(published)-1]),
		)
	}

	return len(published), publishErr
}

func (r *Relay) publishWithRetry(ctx context.Context, event domain.Event) error {
	b := backoff.NewExponentialBackOff()
	if r.config.InitialInterval > 0 {
		b.InitialInterval = r.config.InitialInterval
	}
	b.MaxElapsedTime = r.config.MaxElapsedTime

	operation := func() error {
		return r.publisher.PublishEvent(ctx, event)
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		mPublishRetries.Inc()
		logger.WarnCtx(ctx, "Publish failed, retrying",
			zap.Error(err),
			zap.Uint64("sequence", event.Sequence),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError); err != nil {
		mPublishFailures.Inc()
		return fmt.Errorf("failed after %d attempts: %w", attemptCount+1, err)
	}
	return nil
}
