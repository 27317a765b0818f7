package messaging

import (
	"context"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

// Publisher defines the interface for publishing ledger events to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// EnsureStream creates or updates the stream that captures ledger events
	EnsureStream(ctx context.Context) error
	// PublishEvent publishes a journaled ledger event; redelivery of the same event is deduplicated by its ID
	PublishEvent(ctx context.Context, event domain.Event) error
	// Close closes the connection
	Close()
}
