package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

const (
	bpsDenominator = 10_000
	secondsPerYear = 365 * 24 * 60 * 60
)

// UnstakeResult is the principal returned and the interest settled by an unstake
type UnstakeResult struct {
	Principal *big.Int
	Interest  *big.Int
}

// AccruedInterest returns the simple interest earned by a record up to now, including its carried remainder
func AccruedInterest(record domain.StakeRecord, aprBps uint64, now int64) *big.Int {
	interest, _ := accrue(record, aprBps, now)
	return interest
}

// accrue splits the interest numerator earned up to now into whole base units and the remainder left to carry
func accrue(record domain.StakeRecord, aprBps uint64, now int64) (*big.Int, int64) {
	if !record.Active {
		return new(big.Int), 0
	}
	numerator := big.NewInt(record.InterestCarry)
	if record.Principal != nil && now > record.AccruedFrom {
		earned := new(big.Int).Mul(record.Principal, new(big.Int).SetUint64(aprBps))
		earned.Mul(earned, big.NewInt(now-record.AccruedFrom))
		numerator.Add(numerator, earned)
	}
	interest, carry := new(big.Int).QuoRem(numerator, big.NewInt(bpsDenominator*secondsPerYear), new(big.Int))
	return interest, carry.Int64()
}

// settle pays the whole units accrued on an active record from the reward reserve.
// The clock restarts at now and the sub-unit remainder is carried on the record.
func (u *unit) settle(record *domain.StakeRecord) (*big.Int, error) {
	interest, carry := accrue(*record, u.cfg.StakingAPRBps, u.now)
	if u.now > record.AccruedFrom {
		record.AccruedFrom = u.now
	}
	record.InterestCarry = carry
	if interest.Sign() == 0 {
		return interest, nil
	}

	main := u.token(domain.TokenMain)
	reserve, err := main.BalanceOf(u.cfg.RewardReserve)
	if err != nil {
		return nil, err
	}
	if reserve.Cmp(interest) < 0 {
		return nil, domain.ErrInsufficientRewardReserve
	}
	if err := main.Move(u.cfg.RewardReserve, record.Owner, interest); err != nil {
		return nil, err
	}

	claimed, err := domain.CheckedAdd(record.TotalClaimed, interest)
	if err != nil {
		return nil, err
	}
	record.TotalClaimed = claimed

	if err := u.Emit(domain.EventBody{
		Type:   domain.EventInterestClaimed,
		Token:  domain.TokenMain,
		To:     record.Owner.Hex(),
		Amount: interest.String(),
	}); err != nil {
		return nil, err
	}
	return interest, nil
}

// StakeToken moves main tokens from the caller into the staking pool.
// Topping up an active stake settles the interest accrued so far and restarts the clock for the combined principal.
func (e *Engine) StakeToken(ctx context.Context, caller common.Address, amount *big.Int) (*domain.StakeRecord, error) {
	var result domain.StakeRecord
	err := e.apply(ctx, "stake", caller, func(u *unit) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		if err := u.token(domain.TokenMain).Move(caller, u.cfg.StakingPool, amount); err != nil {
			return err
		}

		record, err := u.tx.StakeRecord(caller)
		if err != nil {
			return err
		}
		if record.Active {
			if _, err := u.settle(&record); err != nil {
				return err
			}
			principal, err := domain.CheckedAdd(record.Principal, amount)
			if err != nil {
				return err
			}
			record.Principal = principal
		} else {
			record.Principal = new(big.Int).Set(amount)
			record.FirstStakedAt = u.now
			record.InterestCarry = 0
			record.Active = true
		}
		record.Owner = caller
		record.AccruedFrom = u.now

		if err := u.tx.SetStakeRecord(record); err != nil {
			return err
		}
		result = record
		return u.Emit(domain.EventBody{
			Type:      domain.EventStaked,
			Token:     domain.TokenMain,
			From:      caller.Hex(),
			To:        u.cfg.StakingPool.Hex(),
			Amount:    amount.String(),
			AmountOut: record.Principal.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ClaimStakedInterest pays the caller's accrued interest. An idle account claims nothing.
func (e *Engine) ClaimStakedInterest(ctx context.Context, caller common.Address) (*big.Int, error) {
	claimed := new(big.Int)
	err := e.apply(ctx, "claim_interest", caller, func(u *unit) error {
		record, err := u.tx.StakeRecord(caller)
		if err != nil {
			return err
		}
		if !record.Active {
			return nil
		}
		interest, err := u.settle(&record)
		if err != nil {
			return err
		}
		claimed = interest
		return u.tx.SetStakeRecord(record)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// UnstakeToken settles outstanding interest and returns the whole principal from the staking pool
func (e *Engine) UnstakeToken(ctx context.Context, caller common.Address) (*UnstakeResult, error) {
	var result *UnstakeResult
	err := e.apply(ctx, "unstake", caller, func(u *unit) error {
		record, err := u.tx.StakeRecord(caller)
		if err != nil {
			return err
		}
		if !record.Active {
			return domain.ErrNoActiveStake
		}
		interest, err := u.settle(&record)
		if err != nil {
			return err
		}

		principal := record.Principal
		if principal.Sign() > 0 {
			if err := u.token(domain.TokenMain).Move(u.cfg.StakingPool, caller, principal); err != nil {
				return err
			}
		}
		record.Principal = new(big.Int)
		record.AccruedFrom = u.now
		record.InterestCarry = 0
		record.Active = false
		if err := u.tx.SetStakeRecord(record); err != nil {
			return err
		}

		result = &UnstakeResult{Principal: principal, Interest: interest}
		return u.Emit(domain.EventBody{
			Type:      domain.EventUnstaked,
			Token:     domain.TokenMain,
			From:      u.cfg.StakingPool.Hex(),
			To:        caller.Hex(),
			Amount:    principal.String(),
			AmountOut: interest.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// StakedData returns the caller's stake record with the interest pending as of now
func (e *Engine) StakedData(ctx context.Context, addr common.Address) (*domain.StakeView, error) {
	var view domain.StakeView
	err := e.view(ctx, func(u *unit) error {
		record, err := u.tx.StakeRecord(addr)
		if err != nil {
			return err
		}
		view = domain.StakeView{
			StakeRecord:     record,
			PendingInterest: AccruedInterest(record, u.cfg.StakingAPRBps, u.now),
			AsOf:            u.now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// StakingPool returns the account holding staked principal
func (e *Engine) StakingPool() common.Address {
	return e.cfg.StakingPool
}
