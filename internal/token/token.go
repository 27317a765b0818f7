package token

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/store"
)

// Journal records the events emitted while a unit of work runs
type Journal interface {
	Emit(body domain.EventBody) error
}

// Ledger is the ERC20-style base ledger of one token kind, bound to a unit of work.
// Transfer, Approve and TransferFrom honour the pause flag; Mint, Burn and Move do not.
type Ledger struct {
	tx      store.Tx
	kind    domain.TokenKind
	journal Journal
}

// New binds a base ledger for kind to tx
func New(tx store.Tx, kind domain.TokenKind, journal Journal) *Ledger {
	return &Ledger{tx: tx, kind: kind, journal: journal}
}

// Kind returns the token kind of the ledger
func (l *Ledger) Kind() domain.TokenKind {
	return l.kind
}

func (l *Ledger) BalanceOf(addr common.Address) (*big.Int, error) {
	return l.tx.Balance(l.kind, addr)
}

func (l *Ledger) TotalSupply() (*big.Int, error) {
	state, err := l.tx.TokenState(l.kind)
	if err != nil {
		return nil, err
	}
	return state.TotalSupply, nil
}

func (l *Ledger) Allowance(owner, spender common.Address) (*big.Int, error) {
	return l.tx.Allowance(l.kind, owner, spender)
}

func (l *Ledger) IsPaused() (bool, error) {
	state, err := l.tx.TokenState(l.kind)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

// Transfer moves amount from the caller to to
func (l *Ledger) Transfer(from, to common.Address, amount *big.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}
	return l.Move(from, to, amount)
}

// Approve sets the allowance of spender over owner's balance
func (l *Ledger) Approve(owner, spender common.Address, amount *big.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}
	if spender == domain.ZeroAddress {
		return fmt.Errorf("%w: approve to the zero address", domain.ErrInvalidAddress)
	}
	if err := l.tx.SetAllowance(l.kind, owner, spender, amount); err != nil {
		return err
	}
	return l.journal.Emit(domain.EventBody{
		Type:   domain.EventApproval,
		Token:  l.kind,
		From:   owner.Hex(),
		To:     spender.Hex(),
		Amount: amount.String(),
	})
}

// TransferFrom moves amount from from to to, spending the allowance granted to spender
func (l *Ledger) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if err := l.requireNotPaused(); err != nil {
		return err
	}
	if err := l.SpendAllowance(from, spender, amount); err != nil {
		return err
	}
	return l.Move(from, to, amount)
}

// SpendAllowance decreases the allowance of spender over owner by amount
func (l *Ledger) SpendAllowance(owner, spender common.Address, amount *big.Int) error {
	allowance, err := l.tx.Allowance(l.kind, owner, spender)
	if err != nil {
		return err
	}
	remaining, err := domain.CheckedSub(allowance, amount, domain.ErrInsufficientAllowance)
	if err != nil {
		return err
	}
	return l.tx.SetAllowance(l.kind, owner, spender, remaining)
}

// Move transfers amount between accounts without the pause gate
func (l *Ledger) Move(from, to common.Address, amount *big.Int) error {
	if from == domain.ZeroAddress || to == domain.ZeroAddress {
		return fmt.Errorf("%w: transfer involving the zero address", domain.ErrInvalidAddress)
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	return l.emitTransfer(from, to, amount)
}

// Mint credits to and increases the total supply
func (l *Ledger) Mint(to common.Address, amount *big.Int) error {
	if to == domain.ZeroAddress {
		return fmt.Errorf("%w: mint to the zero address", domain.ErrInvalidAddress)
	}
	state, err := l.tx.TokenState(l.kind)
	if err != nil {
		return err
	}
	supply, err := domain.CheckedAdd(state.TotalSupply, amount)
	if err != nil {
		return err
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	state.TotalSupply = supply
	if err := l.tx.SetTokenState(state); err != nil {
		return err
	}
	return l.emitTransfer(domain.ZeroAddress, to, amount)
}

// Burn debits from and decreases the total supply
func (l *Ledger) Burn(from common.Address, amount *big.Int) error {
	if from == domain.ZeroAddress {
		return fmt.Errorf("%w: burn from the zero address", domain.ErrInvalidAddress)
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	state, err := l.tx.TokenState(l.kind)
	if err != nil {
		return err
	}
	supply, err := domain.CheckedSub(state.TotalSupply, amount, domain.ErrInsufficientBalance)
	if err != nil {
		return err
	}
	state.TotalSupply = supply
	if err := l.tx.SetTokenState(state); err != nil {
		return err
	}
	return l.emitTransfer(from, domain.ZeroAddress, amount)
}

// Pause sets the pause flag, failing if it is already set
func (l *Ledger) Pause() error {
	return l.setPaused(true)
}

// Unpause clears the pause flag, failing if it is not set
func (l *Ledger) Unpause() error {
	return l.setPaused(false)
}

func (l *Ledger) setPaused(paused bool) error {
	state, err := l.tx.TokenState(l.kind)
	if err != nil {
		return err
	}
	if state.Paused == paused {
		if paused {
			return domain.ErrAlreadyPaused
		}
		return domain.ErrAlreadyUnpaused
	}
	state.Paused = paused
	if err := l.tx.SetTokenState(state); err != nil {
		return err
	}

	eventType := domain.EventUnpause
	if paused {
		eventType = domain.EventPause
	}
	return l.journal.Emit(domain.EventBody{Type: eventType, Token: l.kind})
}

func (l *Ledger) requireNotPaused() error {
	paused, err := l.IsPaused()
	if err != nil {
		return err
	}
	if paused {
		return domain.ErrTokenPaused
	}
	return nil
}

func (l *Ledger) debit(addr common.Address, amount *big.Int) error {
	balance, err := l.tx.Balance(l.kind, addr)
	if err != nil {
		return err
	}
	remaining, err := domain.CheckedSub(balance, amount, domain.ErrInsufficientBalance)
	if err != nil {
		return err
	}
	return l.tx.SetBalance(l.kind, addr, remaining)
}

func (l *Ledger) credit(addr common.Address, amount *big.Int) error {
	balance, err := l.tx.Balance(l.kind, addr)
	if err != nil {
		return err
	}
	total, err := domain.CheckedAdd(balance, amount)
	if err != nil {
		return err
	}
	return l.tx.SetBalance(l.kind, addr, total)
}

func (l *Ledger) emitTransfer(from, to common.Address, amount *big.Int) error {
	return l.journal.Emit(domain.EventBody{
		Type:   domain.EventTransfer,
		Token:  l.kind,
		From:   from.Hex(),
		To:     to.Hex(),
		Amount: amount.String(),
	})
}
