package store

import (
	"bytes"
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

type balanceKey struct {
	kind domain.TokenKind
	addr common.Address
}

type allowanceKey struct {
	kind    domain.TokenKind
	owner   common.Address
	spender common.Address
}

type memState struct {
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
	tokens     map[domain.TokenKind]domain.TokenState
	schedule   *domain.SaleSchedule
	whitelist  map[common.Address]struct{}
	stakes     map[common.Address]domain.StakeRecord
	events     []domain.Event
}

func newMemState() *memState {
	return &memState{
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
		tokens:     make(map[domain.TokenKind]domain.TokenState),
		whitelist:  make(map[common.Address]struct{}),
		stakes:     make(map[common.Address]domain.StakeRecord),
	}
}

// clone copies the mutable state so a unit of work can be discarded on error.
// Events are append-only and share their backing entries.
func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.allowances {
		c.allowances[k] = new(big.Int).Set(v)
	}
	for k, v := range s.tokens {
		c.tokens[k] = copyTokenState(v)
	}
	if s.schedule != nil {
		schedule := *s.schedule
		c.schedule = &schedule
	}
	for k := range s.whitelist {
		c.whitelist[k] = struct{}{}
	}
	for k, v := range s.stakes {
		c.stakes[k] = copyStakeRecord(v)
	}
	c.events = append(make([]domain.Event, 0, len(s.events)), s.events...)
	return c
}

type memoryStore struct {
	mu    sync.RWMutex
	state *memState
}

// NewMemoryStore creates an in-process store for tests
func NewMemoryStore() Store {
	return &memoryStore{state: newMemState()}
}

func (s *memoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&memTx{state: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *memoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{state: s.state, readOnly: true})
}

func (s *memoryStore) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, e := range s.state.events {
		if e.Sequence <= afterSeq {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *memoryStore) UnpublishedEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Event
	for _, e := range s.state.events {
		if e.PublishedAt != nil {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *memoryStore) MarkEventsPublished(ctx context.Context, sequences []uint64, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	marked := make(map[uint64]struct{}, len(sequences))
	for _, seq := range sequences {
		marked[seq] = struct{}{}
	}
	events := make([]domain.Event, len(s.state.events))
	for i, e := range s.state.events {
		if _, ok := marked[e.Sequence]; ok && e.PublishedAt == nil {
			published := at
			e.PublishedAt = &published
		}
		events[i] = e
	}
	s.state.events = events
	return nil
}

type memTx struct {
	state    *memState
	readOnly bool
}

func (t *memTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memTx) Balance(kind domain.TokenKind, addr common.Address) (*big.Int, error) {
	if v, ok := t.state.balances[balanceKey{kind, addr}]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (t *memTx) SetBalance(kind domain.TokenKind, addr common.Address, amount *big.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.state.balances[balanceKey{kind, addr}] = new(big.Int).Set(amount)
	return nil
}

func (t *memTx) SumBalances(kind domain.TokenKind) (*big.Int, error) {
	sum := new(big.Int)
	for k, v := range t.state.balances {
		if k.kind == kind {
			sum.Add(sum, v)
		}
	}
	return sum, nil
}

func (t *memTx) Allowance(kind domain.TokenKind, owner, spender common.Address) (*big.Int, error) {
	if v, ok := t.state.allowances[allowanceKey{kind, owner, spender}]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

func (t *memTx) SetAllowance(kind domain.TokenKind, owner, spender common.Address, amount *big.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.state.allowances[allowanceKey{kind, owner, spender}] = new(big.Int).Set(amount)
	return nil
}

func (t *memTx) TokenState(kind domain.TokenKind) (domain.TokenState, error) {
	if v, ok := t.state.tokens[kind]; ok {
		return copyTokenState(v), nil
	}
	return domain.TokenState{Kind: kind, TotalSupply: new(big.Int)}, nil
}

func (t *memTx) SetTokenState(state domain.TokenState) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.state.tokens[state.Kind] = copyTokenState(state)
	return nil
}

func (t *memTx) SaleSchedule() (*domain.SaleSchedule, error) {
	if t.state.schedule == nil {
		return nil, nil
	}
	s := *t.state.schedule
	return &s, nil
}

func (t *memTx) SetSaleSchedule(schedule domain.SaleSchedule) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.state.schedule = &schedule
	return nil
}

func (t *memTx) IsWhitelisted(addr common.Address) (bool, error) {
	_, ok := t.state.whitelist[addr]
	return ok, nil
}

func (t *memTx) SetWhitelisted(addr common.Address, listed bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	if listed {
		t.state.whitelist[addr] = struct{}{}
	} else {
		delete(t.state.whitelist, addr)
	}
	return nil
}

func (t *memTx) Whitelist() ([]common.Address, error) {
	out := make([]common.Address, 0, len(t.state.whitelist))
	for addr := range t.state.whitelist {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Bytes(), out[j].Bytes()) < 0
	})
	return out, nil
}

func (t *memTx) StakeRecord(addr common.Address) (domain.StakeRecord, error) {
	if v, ok := t.state.stakes[addr]; ok {
		return copyStakeRecord(v), nil
	}
	return domain.NewStakeRecord(addr), nil
}

func (t *memTx) SetStakeRecord(record domain.StakeRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.state.stakes[record.Owner] = copyStakeRecord(record)
	return nil
}

func (t *memTx) LastEvent() (uint64, common.Hash, error) {
	if n := len(t.state.events); n > 0 {
		last := t.state.events[n-1]
		return last.Sequence, last.Hash, nil
	}
	return 0, common.Hash{}, nil
}

func (t *memTx) AppendEvent(event domain.Event) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.state.events = append(t.state.events, event)
	return nil
}

func copyTokenState(s domain.TokenState) domain.TokenState {
	s.TotalSupply = new(big.Int).Set(s.TotalSupply)
	return s
}

func copyStakeRecord(r domain.StakeRecord) domain.StakeRecord {
	r.Principal = new(big.Int).Set(r.Principal)
	r.TotalClaimed = new(big.Int).Set(r.TotalClaimed)
	return r
}
