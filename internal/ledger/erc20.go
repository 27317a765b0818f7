package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
)

// TokenInfo is the public description of one token kind
type TokenInfo struct {
	domain.TokenMetadata
	Kind        domain.TokenKind
	TotalSupply *big.Int
	Paused      bool
}

// Transfer moves caller's tokens to another account
func (e *Engine) Transfer(ctx context.Context, caller common.Address, kind domain.TokenKind, to common.Address, amount *big.Int) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "transfer", caller, func(u *unit) error {
		if err := requireNonNegative(amount); err != nil {
			return err
		}
		return u.token(kind).Transfer(caller, to, amount)
	})
}

// Approve sets the allowance of spender over caller's tokens
func (e *Engine) Approve(ctx context.Context, caller common.Address, kind domain.TokenKind, spender common.Address, amount *big.Int) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "approve", caller, func(u *unit) error {
		if err := requireNonNegative(amount); err != nil {
			return err
		}
		return u.token(kind).Approve(caller, spender, amount)
	})
}

// TransferFrom moves tokens from one account to another using caller's allowance
func (e *Engine) TransferFrom(ctx context.Context, caller common.Address, kind domain.TokenKind, from, to common.Address, amount *big.Int) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "transfer_from", caller, func(u *unit) error {
		if err := requireNonNegative(amount); err != nil {
			return err
		}
		return u.token(kind).TransferFrom(caller, from, to, amount)
	})
}

func (e *Engine) BalanceOf(ctx context.Context, kind domain.TokenKind, addr common.Address) (*big.Int, error) {
	if err := requireKind(kind); err != nil {
		return nil, err
	}
	var balance *big.Int
	err := e.view(ctx, func(u *unit) error {
		var err error
		balance, err = u.token(kind).BalanceOf(addr)
		return err
	})
	return balance, err
}

func (e *Engine) TotalSupply(ctx context.Context, kind domain.TokenKind) (*big.Int, error) {
	if err := requireKind(kind); err != nil {
		return nil, err
	}
	var supply *big.Int
	err := e.view(ctx, func(u *unit) error {
		var err error
		supply, err = u.token(kind).TotalSupply()
		return err
	})
	return supply, err
}

func (e *Engine) Allowance(ctx context.Context, kind domain.TokenKind, owner, spender common.Address) (*big.Int, error) {
	if err := requireKind(kind); err != nil {
		return nil, err
	}
	var allowance *big.Int
	err := e.view(ctx, func(u *unit) error {
		var err error
		allowance, err = u.token(kind).Allowance(owner, spender)
		return err
	})
	return allowance, err
}

// TokenInfo returns metadata, supply and pause state of a token kind
func (e *Engine) TokenInfo(ctx context.Context, kind domain.TokenKind) (*TokenInfo, error) {
	if !domain.IsValidTokenKind(kind) {
		return nil, domain.ErrUnknownToken
	}
	var info *TokenInfo
	err := e.view(ctx, func(u *unit) error {
		state, err := u.tx.TokenState(kind)
		if err != nil {
			return err
		}
		info = &TokenInfo{
			TokenMetadata: kind.Metadata(),
			Kind:          kind,
			TotalSupply:   state.TotalSupply,
			Paused:        state.Paused,
		}
		return nil
	})
	return info, err
}

// Stage returns the sale stage at the current time
func (e *Engine) Stage(ctx context.Context) (domain.Stage, error) {
	stage := domain.StageNotStarted
	err := e.view(ctx, func(u *unit) error {
		var err error
		stage, _, err = u.stage()
		return err
	})
	return stage, err
}

// IsSaleStarted reports whether a start time is set and has been reached
func (e *Engine) IsSaleStarted(ctx context.Context) (bool, error) {
	started := false
	err := e.view(ctx, func(u *unit) error {
		s, err := u.schedule()
		if err != nil {
			return err
		}
		started = schedule.IsStarted(s, u.now)
		return nil
	})
	return started, err
}

// Schedule returns the stored schedule and the status of each window at the current time
func (e *Engine) Schedule(ctx context.Context) (domain.SaleSchedule, []schedule.WindowStatus, error) {
	var (
		s        domain.SaleSchedule
		statuses []schedule.WindowStatus
	)
	err := e.view(ctx, func(u *unit) error {
		var err error
		s, err = u.schedule()
		if err != nil {
			return err
		}
		statuses = schedule.Describe(s, u.now)
		return nil
	})
	return s, statuses, err
}

func (e *Engine) IsWhitelisted(ctx context.Context, addr common.Address) (bool, error) {
	listed := false
	err := e.view(ctx, func(u *unit) error {
		var err error
		listed, err = u.tx.IsWhitelisted(addr)
		return err
	})
	return listed, err
}

func (e *Engine) Whitelist(ctx context.Context) ([]common.Address, error) {
	var addresses []common.Address
	err := e.view(ctx, func(u *unit) error {
		var err error
		addresses, err = u.tx.Whitelist()
		return err
	})
	return addresses, err
}

// Events returns journaled events after a sequence number
func (e *Engine) Events(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error) {
	return e.store.ListEvents(ctx, afterSeq, limit)
}
