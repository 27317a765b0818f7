package store

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

// ErrReadOnly is returned when a write is attempted inside a View
var ErrReadOnly = errors.New("write attempted in read-only unit of work")

// Store defines the interface for ledger persistence.
// Every ledger operation runs inside exactly one Update; units of work are
// serialised, and an error returned by fn discards every write it made.
type Store interface {
	// Update runs fn in an exclusive read-write unit of work
	Update(ctx context.Context, fn func(tx Tx) error) error
	// View runs fn against a consistent read-only snapshot
	View(ctx context.Context, fn func(tx Tx) error) error
	// ListEvents returns journaled events with sequence > afterSeq in order
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error)
	// UnpublishedEvents returns the oldest events not yet delivered by the relay
	UnpublishedEvents(ctx context.Context, limit int) ([]domain.Event, error)
	// MarkEventsPublished records delivery of the given events
	MarkEventsPublished(ctx context.Context, sequences []uint64, at time.Time) error
}

// Tx is the set of reads and writes available inside a unit of work.
// Absent records read as zero values.
type Tx interface {
	Balance(kind domain.TokenKind, addr common.Address) (*big.Int, error)
	SetBalance(kind domain.TokenKind, addr common.Address, amount *big.Int) error
	// SumBalances returns the sum of every account balance of a token kind
	SumBalances(kind domain.TokenKind) (*big.Int, error)

	Allowance(kind domain.TokenKind, owner, spender common.Address) (*big.Int, error)
	SetAllowance(kind domain.TokenKind, owner, spender common.Address, amount *big.Int) error

	TokenState(kind domain.TokenKind) (domain.TokenState, error)
	SetTokenState(state domain.TokenState) error

	// SaleSchedule returns nil when the ledger has not been bootstrapped
	SaleSchedule() (*domain.SaleSchedule, error)
	SetSaleSchedule(schedule domain.SaleSchedule) error

	IsWhitelisted(addr common.Address) (bool, error)
	SetWhitelisted(addr common.Address, listed bool) error
	Whitelist() ([]common.Address, error)

	StakeRecord(addr common.Address) (domain.StakeRecord, error)
	SetStakeRecord(record domain.StakeRecord) error

	// LastEvent returns the sequence and hash of the newest journaled event,
	// or zero values for an empty journal
	LastEvent() (uint64, common.Hash, error)
	// AppendEvent stores an event whose Sequence, PrevHash and Hash are already set
	AppendEvent(event domain.Event) error
}
