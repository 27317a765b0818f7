package dto

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/api/shared/constants"
	apierrors "github.com/feral-file/ff-sale-ledger/internal/api/shared/errors"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

// AmountInput carries an amount either in base units ("amount": "10000000")
// or as a human-readable token value ("value": "10.5"). Exactly one must be set.
type AmountInput struct {
	Amount string `json:"amount,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Parse returns the amount in base units
func (a AmountInput) Parse() (*big.Int, error) {
	switch {
	case a.Amount != "" && a.Value != "":
		return nil, apierrors.NewValidationError("only one of amount and value may be set")
	case a.Amount != "":
		amount, err := domain.ParseAmount(a.Amount)
		if err != nil {
			return nil, apierrors.NewValidationError(err.Error())
		}
		return amount, nil
	case a.Value != "":
		amount, err := domain.ParseUnits(a.Value)
		if err != nil {
			return nil, apierrors.NewValidationError(err.Error())
		}
		return amount, nil
	default:
		return nil, apierrors.NewValidationError("amount or value is required")
	}
}

func parseAddress(field, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, apierrors.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	addr, err := domain.ParseAddress(s)
	if err != nil {
		return common.Address{}, apierrors.NewValidationError(fmt.Sprintf("invalid %s: %s", field, s))
	}
	return addr, nil
}

// AmountRequest is the body of buy, redeem, p2swap and stake
type AmountRequest struct {
	AmountInput
}

// TransferRequest represents the request body for a transfer
type TransferRequest struct {
	To string `json:"to"`
	AmountInput
}

// Parse validates the request body
func (r *TransferRequest) Parse() (common.Address, *big.Int, error) {
	to, err := parseAddress("to", r.To)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := r.AmountInput.Parse()
	return to, amount, err
}

// ApproveRequest represents the request body for an approval
type ApproveRequest struct {
	Spender string `json:"spender"`
	AmountInput
}

// Parse validates the request body
func (r *ApproveRequest) Parse() (common.Address, *big.Int, error) {
	spender, err := parseAddress("spender", r.Spender)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := r.AmountInput.Parse()
	return spender, amount, err
}

// TransferFromRequest represents the request body for a transfer using an allowance
type TransferFromRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	AmountInput
}

// Parse validates the request body
func (r *TransferFromRequest) Parse() (common.Address, common.Address, *big.Int, error) {
	from, err := parseAddress("from", r.From)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}
	to, err := parseAddress("to", r.To)
	if err != nil {
		return common.Address{}, common.Address{}, nil, err
	}
	amount, err := r.AmountInput.Parse()
	return from, to, amount, err
}

// AccountAmountRequest is the body of mint, burn and referral
type AccountAmountRequest struct {
	Address string `json:"address"`
	AmountInput
}

// Parse validates the request body
func (r *AccountAmountRequest) Parse() (common.Address, *big.Int, error) {
	addr, err := parseAddress("address", r.Address)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := r.AmountInput.Parse()
	return addr, amount, err
}

// WhitelistRequest represents the request body for whitelist changes
type WhitelistRequest struct {
	Addresses []string `json:"addresses"`
}

// Parse validates the request body
func (r *WhitelistRequest) Parse() ([]common.Address, error) {
	if len(r.Addresses) == 0 {
		return nil, apierrors.NewValidationError("addresses is required")
	}
	if len(r.Addresses) > constants.MAX_WHITELIST_ADDRESSES {
		return nil, apierrors.NewValidationError(fmt.Sprintf("maximum %d addresses allowed", constants.MAX_WHITELIST_ADDRESSES))
	}
	addresses, err := domain.ParseAddresses(r.Addresses)
	if err != nil {
		return nil, apierrors.NewValidationError(err.Error())
	}
	return addresses, nil
}

// SaleStartRequest represents the request body for setting the sale start time
type SaleStartRequest struct {
	StartTime *int64 `json:"startTime"`
}

// Validate validates the request body
func (r *SaleStartRequest) Validate() error {
	if r.StartTime == nil {
		return apierrors.NewValidationError("startTime is required")
	}
	if *r.StartTime < 0 {
		return apierrors.NewValidationError("startTime must not be negative")
	}
	return nil
}

// WindowRequest represents the request body for replacing a sale window
type WindowRequest struct {
	DayOffset       uint64 `json:"dayOffset"`
	DurationSeconds uint64 `json:"durationSeconds"`
}

// Window converts the request to a domain window
func (r *WindowRequest) Window() domain.Window {
	return domain.Window{DayOffset: r.DayOffset, Duration: r.DurationSeconds}
}
