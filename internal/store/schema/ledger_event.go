package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEvent represents the ledger_events table - the append-only, hash-chained event journal.
// Rows with a NULL published_at form the outbox drained by the event relay.
type LedgerEvent struct {
	// Sequence is the position of the event in the journal, starting at 1
	Sequence uint64 `gorm:"column:sequence;primaryKey;autoIncrement:false"`
	// EventID is the ULID of the event, used as the message deduplication ID
	EventID string `gorm:"column:event_id;not null;uniqueIndex;type:text"`
	// Type is the event type (Transfer, Purchase, ...)
	Type string `gorm:"column:type;not null;type:text;index"`
	// Token is the token kind the event concerns, empty for sale-level events
	Token string `gorm:"column:token;not null;default:'';type:text"`
	// Payload is the event body as JSON
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// PrevHash is the hash of the previous event (zero hash for the first)
	PrevHash string `gorm:"column:prev_hash;not null;type:text"`
	// Hash is keccak256(prev_hash || canonical payload)
	Hash string `gorm:"column:hash;not null;type:text"`
	// OccurredAt is the ledger time of the operation that emitted the event
	OccurredAt time.Time `gorm:"column:occurred_at;not null;type:timestamptz"`
	// PublishedAt is set once the relay has delivered the event
	PublishedAt *time.Time `gorm:"column:published_at;type:timestamptz;index"`
	CreatedAt   time.Time  `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the LedgerEvent model
func (LedgerEvent) TableName() string {
	return "ledger_events"
}
