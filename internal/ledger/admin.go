package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

// Bootstrap writes genesis state: the sale schedule, initial supplies, the swap headroom approval
// and the reward reserve. It is a no-op once the ledger has a schedule.
func (e *Engine) Bootstrap(ctx context.Context, genesis Genesis) (bool, error) {
	created := false
	err := e.apply(ctx, "bootstrap", e.cfg.Owner, func(u *unit) error {
		existing, err := u.tx.SaleSchedule()
		if err != nil {
			return err
		}
		if existing != nil {
			return nil
		}
		if err := u.tx.SetSaleSchedule(genesis.Schedule); err != nil {
			return err
		}

		supplies := map[domain.TokenKind]*big.Int{
			domain.TokenMain:       genesis.MainSupply,
			domain.TokenPresale:    genesis.PresaleSupply,
			domain.TokenBarracks:   genesis.BarracksSupply,
			domain.TokenStablecoin: genesis.StablecoinSupply,
		}
		for _, kind := range domain.TokenKinds {
			supply := supplies[kind]
			if supply == nil || supply.Sign() == 0 {
				continue
			}
			if err := u.token(kind).Mint(u.cfg.Owner, supply); err != nil {
				return err
			}
		}

		if genesis.SwapHeadroom != nil && genesis.SwapHeadroom.Sign() > 0 {
			if err := u.token(domain.TokenBarracks).Approve(u.cfg.Treasury, u.cfg.SaleAddress, genesis.SwapHeadroom); err != nil {
				return err
			}
		}
		if genesis.RewardReserve != nil && genesis.RewardReserve.Sign() > 0 {
			if err := u.token(domain.TokenMain).Move(u.cfg.Owner, u.cfg.RewardReserve, genesis.RewardReserve); err != nil {
				return err
			}
		}
		created = true
		return nil
	})
	return created, err
}

// Referral credits main tokens to an address without a source-side debit; total supply grows by amount
func (e *Engine) Referral(ctx context.Context, caller, to common.Address, amount *big.Int) error {
	return e.apply(ctx, "referral", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		if err := requirePositive(amount); err != nil {
			return err
		}
		if err := u.token(domain.TokenMain).Mint(to, amount); err != nil {
			return err
		}
		return u.Emit(domain.EventBody{
			Type:   domain.EventReferral,
			Token:  domain.TokenMain,
			To:     to.Hex(),
			Amount: amount.String(),
		})
	})
}

// Pause blocks transfer, approve and transferFrom for one token kind
func (e *Engine) Pause(ctx context.Context, caller common.Address, kind domain.TokenKind) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "pause", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		return u.token(kind).Pause()
	})
}

// Unpause lifts the pause on one token kind
func (e *Engine) Unpause(ctx context.Context, caller common.Address, kind domain.TokenKind) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "unpause", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		return u.token(kind).Unpause()
	})
}

// Mint issues new tokens of any kind. Owner only, not pause-gated.
func (e *Engine) Mint(ctx context.Context, caller common.Address, kind domain.TokenKind, to common.Address, amount *big.Int) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "mint", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		if err := requireNonNegative(amount); err != nil {
			return err
		}
		return u.token(kind).Mint(to, amount)
	})
}

// Burn destroys tokens held by an account. Owner only, not pause-gated.
func (e *Engine) Burn(ctx context.Context, caller common.Address, kind domain.TokenKind, from common.Address, amount *big.Int) error {
	if err := requireKind(kind); err != nil {
		return err
	}
	return e.apply(ctx, "burn", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		if err := requireNonNegative(amount); err != nil {
			return err
		}
		return u.token(kind).Burn(from, amount)
	})
}
