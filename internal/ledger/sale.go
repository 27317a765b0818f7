package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
)

// PurchaseResult describes a committed presale purchase
type PurchaseResult struct {
	Stage    domain.Stage
	Paid     *big.Int
	Received *big.Int
}

// ConversionResult describes a committed redemption or P2 swap
type ConversionResult struct {
	Burned   *big.Int
	Received *big.Int
}

func (c Config) presaleRate(stage domain.Stage) (domain.Rate, bool) {
	switch stage {
	case domain.StagePreSaleSlot3:
		return c.Slot3Rate, true
	case domain.StagePreSaleSlot2:
		return c.Slot2Rate, true
	case domain.StagePreSaleSlot1:
		return c.Slot1Rate, true
	default:
		return domain.Rate{}, false
	}
}

// Buy pays stablecoin from the caller to the treasury and mints presale tokens at the current slot rate.
// The caller must have approved the sale address on the stablecoin.
func (e *Engine) Buy(ctx context.Context, caller common.Address, amount *big.Int) (*PurchaseResult, error) {
	var result *PurchaseResult
	err := e.apply(ctx, "buy", caller, func(u *unit) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		stage, _, err := u.stage()
		if err != nil {
			return err
		}
		rate, ok := u.cfg.presaleRate(stage)
		if !ok {
			return domain.ErrStageNotEligible
		}
		if stage == domain.StagePreSaleSlot2 {
			listed, err := u.tx.IsWhitelisted(caller)
			if err != nil {
				return err
			}
			if !listed {
				return domain.ErrNotWhitelisted
			}
		}

		received, err := rate.Apply(amount)
		if err != nil {
			return err
		}
		if received.Sign() == 0 {
			return domain.ErrInvalidAmount
		}

		if err := u.token(domain.TokenStablecoin).TransferFrom(u.cfg.SaleAddress, caller, u.cfg.Treasury, amount); err != nil {
			return err
		}
		if err := u.token(domain.TokenPresale).Mint(caller, received); err != nil {
			return err
		}

		result = &PurchaseResult{Stage: stage, Paid: amount, Received: received}
		return u.Emit(domain.EventBody{
			Type:      domain.EventPurchase,
			Token:     domain.TokenPresale,
			From:      caller.Hex(),
			Amount:    amount.String(),
			AmountOut: received.String(),
			Stage:     stage.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Redeem burns presale tokens and credits the same amount of main tokens during the redemption window
func (e *Engine) Redeem(ctx context.Context, caller common.Address, amount *big.Int) (*ConversionResult, error) {
	var result *ConversionResult
	err := e.apply(ctx, "redeem", caller, func(u *unit) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		stage, s, err := u.stage()
		if err != nil {
			return err
		}
		if !schedule.IsStarted(s, u.now) {
			return domain.ErrSaleNotStarted
		}
		if stage != domain.StageRedemption {
			return domain.ErrStageNotEligible
		}

		presale := u.token(domain.TokenPresale)
		balance, err := presale.BalanceOf(caller)
		if err != nil {
			return err
		}
		if balance.Cmp(amount) < 0 {
			return domain.ErrInsufficientPresaleBalance
		}
		if err := presale.Burn(caller, amount); err != nil {
			return err
		}
		if err := u.token(domain.TokenMain).Mint(caller, amount); err != nil {
			return err
		}

		result = &ConversionResult{Burned: amount, Received: amount}
		return u.Emit(domain.EventBody{
			Type:      domain.EventRedemption,
			Token:     domain.TokenMain,
			From:      caller.Hex(),
			Amount:    amount.String(),
			AmountOut: amount.String(),
			Stage:     stage.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// P2Swap moves Barracks tokens from the caller into the swap pool and mints main tokens at the swap rate.
// The treasury's Barracks allowance to the sale address is the swap headroom; it is checked before
// anything moves and consumed by the swapped amount.
func (e *Engine) P2Swap(ctx context.Context, caller common.Address, amount *big.Int) (*ConversionResult, error) {
	var result *ConversionResult
	err := e.apply(ctx, "p2swap", caller, func(u *unit) error {
		if err := requirePositive(amount); err != nil {
			return err
		}
		stage, _, err := u.stage()
		if err != nil {
			return err
		}
		if stage != domain.StageP2Swap {
			return domain.ErrStageNotEligible
		}

		barracks := u.token(domain.TokenBarracks)
		headroom, err := barracks.Allowance(u.cfg.Treasury, u.cfg.SaleAddress)
		if err != nil {
			return err
		}
		if headroom.Cmp(amount) < 0 {
			return domain.ErrInsufficientPoolLiquidity
		}
		received, err := u.cfg.P2SwapRate.Apply(amount)
		if err != nil {
			return err
		}
		if received.Sign() == 0 {
			return domain.ErrInvalidAmount
		}

		if err := barracks.SpendAllowance(caller, u.cfg.SaleAddress, amount); err != nil {
			return err
		}
		if err := barracks.Move(caller, u.cfg.SwapPool, amount); err != nil {
			return err
		}
		if err := barracks.SpendAllowance(u.cfg.Treasury, u.cfg.SaleAddress, amount); err != nil {
			return err
		}
		if err := u.token(domain.TokenMain).Mint(caller, received); err != nil {
			return err
		}

		result = &ConversionResult{Burned: amount, Received: received}
		return u.Emit(domain.EventBody{
			Type:      domain.EventP2Swap,
			Token:     domain.TokenMain,
			From:      caller.Hex(),
			Amount:    amount.String(),
			AmountOut: received.String(),
			Stage:     stage.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetSaleStartTime sets the sale start; zero unschedules the sale
func (e *Engine) SetSaleStartTime(ctx context.Context, caller common.Address, start int64) error {
	return e.apply(ctx, "set_sale_start_time", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		if start < 0 {
			return fmt.Errorf("%w: negative start time", domain.ErrInvalidAmount)
		}
		s, err := u.schedule()
		if err != nil {
			return err
		}
		s.StartTime = start
		if err := u.tx.SetSaleSchedule(s); err != nil {
			return err
		}
		return u.Emit(domain.EventBody{
			Type:   domain.EventSaleStartUpdated,
			Detail: strconv.FormatInt(start, 10),
		})
	})
}

// SetWindow replaces one sale window; it takes effect immediately
func (e *Engine) SetWindow(ctx context.Context, caller common.Address, name domain.WindowName, w domain.Window) error {
	return e.apply(ctx, "set_window", caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		if err := schedule.ValidateWindow(w); err != nil {
			return err
		}
		s, err := u.schedule()
		if err != nil {
			return err
		}
		if err := s.SetWindow(name, w); err != nil {
			return err
		}
		if err := u.tx.SetSaleSchedule(s); err != nil {
			return err
		}
		return u.Emit(domain.EventBody{
			Type:   domain.EventWindowUpdated,
			Detail: fmt.Sprintf("%s:%d:%d", name, w.DayOffset, w.Duration),
		})
	})
}

// AddWhitelist adds addresses to the slot 2 whitelist; present addresses are skipped
func (e *Engine) AddWhitelist(ctx context.Context, caller common.Address, addresses []common.Address) error {
	return e.setWhitelisted(ctx, "add_whitelist", caller, addresses, true)
}

// RemoveWhitelist removes addresses from the whitelist; absent addresses are skipped
func (e *Engine) RemoveWhitelist(ctx context.Context, caller common.Address, addresses []common.Address) error {
	return e.setWhitelisted(ctx, "remove_whitelist", caller, addresses, false)
}

func (e *Engine) setWhitelisted(ctx context.Context, op string, caller common.Address, addresses []common.Address, listed bool) error {
	eventType := domain.EventWhitelistRemoved
	if listed {
		eventType = domain.EventWhitelistAdded
	}
	return e.apply(ctx, op, caller, func(u *unit) error {
		if err := u.requireOwner(); err != nil {
			return err
		}
		for _, addr := range addresses {
			current, err := u.tx.IsWhitelisted(addr)
			if err != nil {
				return err
			}
			if current == listed {
				continue
			}
			if err := u.tx.SetWhitelisted(addr, listed); err != nil {
				return err
			}
			if err := u.Emit(domain.EventBody{Type: eventType, To: addr.Hex()}); err != nil {
				return err
			}
		}
		return nil
	})
}
