package ledger

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/journal"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
	"github.com/feral-file/ff-sale-ledger/internal/store"
	"github.com/feral-file/ff-sale-ledger/internal/token"
)

// Engine executes sale, redemption, staking and admin operations.
// Each operation is one atomic unit of work that reads the clock once.
type Engine struct {
	mu     sync.Mutex
	store  store.Store
	clock  adapter.Clock
	hasher *journal.Hasher
	cfg    Config
}

// New creates a ledger engine
func New(s store.Store, clock adapter.Clock, jcs adapter.JCS, cfg Config) *Engine {
	return &Engine{
		store:  s,
		clock:  clock,
		hasher: journal.NewHasher(jcs),
		cfg:    cfg,
	}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// unit is the state of one operation: the store transaction, the operation time and the pending events
type unit struct {
	tx     store.Tx
	cfg    Config
	now    int64
	caller common.Address
	events []domain.EventBody
}

// Emit stamps and buffers an event; events are chained and stored when the unit commits
func (u *unit) Emit(body domain.EventBody) error {
	body.ID = ulid.MustNewDefault(time.Unix(u.now, 0)).String()
	body.Timestamp = u.now
	u.events = append(u.events, body)
	return nil
}

func (u *unit) token(kind domain.TokenKind) *token.Ledger {
	return token.New(u.tx, kind, u)
}

func (u *unit) requireOwner() error {
	if u.caller != u.cfg.Owner {
		return domain.ErrNotOwner
	}
	return nil
}

func (u *unit) schedule() (domain.SaleSchedule, error) {
	s, err := u.tx.SaleSchedule()
	if err != nil {
		return domain.SaleSchedule{}, err
	}
	if s == nil {
		return domain.SaleSchedule{}, domain.ErrNotInitialized
	}
	return *s, nil
}

func (u *unit) stage() (domain.Stage, domain.SaleSchedule, error) {
	s, err := u.schedule()
	if err != nil {
		return domain.StageNotStarted, s, err
	}
	return schedule.StageAt(s, u.now), s, nil
}

func requirePositive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

func requireKind(kind domain.TokenKind) error {
	if !domain.IsValidTokenKind(kind) {
		return domain.ErrUnknownToken
	}
	return nil
}

func requireNonNegative(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrInvalidAmount
	}
	return nil
}

// apply runs fn as one read-write unit of work and journals its events on success
func (e *Engine) apply(ctx context.Context, op string, caller common.Address, fn func(u *unit) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock.Now().Unix()
	var committed []domain.EventBody
	err := e.store.Update(ctx, func(tx store.Tx) error {
		if e.cfg.IsSystemAccount(caller) {
			return domain.ErrSystemCaller
		}
		u := &unit{tx: tx, cfg: e.cfg, now: now, caller: caller}
		if err := fn(u); err != nil {
			return err
		}
		if err := e.appendEvents(tx, u.events); err != nil {
			return err
		}
		committed = u.events
		return nil
	})

	mOperations.WithLabelValues(op, outcome(err)).Inc()
	fields := []zap.Field{zap.String("op", op), zap.String("caller", caller.Hex()), zap.Int64("now", now)}
	switch {
	case err == nil:
		for _, ev := range committed {
			mEvents.WithLabelValues(string(ev.Type)).Inc()
		}
		logger.DebugCtx(ctx, "ledger operation committed", append(fields, zap.Int("events", len(committed)))...)
	case isLedgerError(err):
		logger.WarnCtx(ctx, "ledger operation rejected", append(fields, zap.String("code", outcome(err)))...)
	default:
		logger.ErrorCtx(ctx, err, fields...)
	}
	return err
}

// view runs fn against a read-only snapshot at the current time
func (e *Engine) view(ctx context.Context, fn func(u *unit) error) error {
	now := e.clock.Now().Unix()
	return e.store.View(ctx, func(tx store.Tx) error {
		return fn(&unit{tx: tx, cfg: e.cfg, now: now})
	})
}

func (e *Engine) appendEvents(tx store.Tx, bodies []domain.EventBody) error {
	if len(bodies) == 0 {
		return nil
	}
	seq, head, err := tx.LastEvent()
	if err != nil {
		return err
	}
	events, err := e.hasher.Chain(seq, head, bodies)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := tx.AppendEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

func isLedgerError(err error) bool {
	_, ok := domain.AsLedgerError(err)
	return ok
}
