package dto

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/ledger"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
)

// Amount is a token amount in base units with its 6-decimal rendering
type Amount struct {
	Amount string `json:"amount"`
	Value  string `json:"value"`
}

// NewAmount maps a base-unit amount
func NewAmount(x *big.Int) Amount {
	if x == nil {
		x = new(big.Int)
	}
	return Amount{Amount: x.String(), Value: domain.FormatUnits(x)}
}

// TokenResponse describes one token kind
type TokenResponse struct {
	Token       domain.TokenKind `json:"token"`
	Name        string           `json:"name"`
	Symbol      string           `json:"symbol"`
	Decimals    uint8            `json:"decimals"`
	TotalSupply Amount           `json:"totalSupply"`
	Paused      bool             `json:"paused"`
}

// MapTokenInfo maps ledger token info to its response
func MapTokenInfo(info *ledger.TokenInfo) TokenResponse {
	return TokenResponse{
		Token:       info.Kind,
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: NewAmount(info.TotalSupply),
		Paused:      info.Paused,
	}
}

// BalanceResponse is the balance of one account
type BalanceResponse struct {
	Token   domain.TokenKind `json:"token"`
	Address string           `json:"address"`
	Balance Amount           `json:"balance"`
}

// AllowanceResponse is the allowance of a spender over an owner
type AllowanceResponse struct {
	Token     domain.TokenKind `json:"token"`
	Owner     string           `json:"owner"`
	Spender   string           `json:"spender"`
	Allowance Amount           `json:"allowance"`
}

// WindowResponse describes one sale window
type WindowResponse struct {
	Name            domain.WindowName `json:"name"`
	DayOffset       uint64            `json:"dayOffset"`
	DurationSeconds uint64            `json:"durationSeconds"`
	Start           int64             `json:"start"`
	End             int64             `json:"end"`
	Active          bool              `json:"active"`
}

// SaleResponse describes the sale schedule at the time of the request
type SaleResponse struct {
	Stage       string            `json:"stage"`
	Started     bool              `json:"started"`
	StartTime   int64             `json:"startTime"`
	Windows     []WindowResponse  `json:"windows"`
	Rates       map[string]string `json:"rates"`
	SaleAddress string            `json:"saleAddress"`
	Treasury    string            `json:"treasury"`
}

// MapSale maps a schedule and its window statuses
func MapSale(stage domain.Stage, started bool, s domain.SaleSchedule, statuses []schedule.WindowStatus, cfg ledger.Config) SaleResponse {
	windows := make([]WindowResponse, 0, len(statuses))
	for _, st := range statuses {
		windows = append(windows, WindowResponse{
			Name:            st.Name,
			DayOffset:       st.Window.DayOffset,
			DurationSeconds: st.Window.Duration,
			Start:           st.Start,
			End:             st.End,
			Active:          st.Active,
		})
	}
	return SaleResponse{
		Stage:     stage.String(),
		Started:   started,
		StartTime: s.StartTime,
		Windows:   windows,
		Rates: map[string]string{
			string(domain.WindowSlot3):  cfg.Slot3Rate.String(),
			string(domain.WindowSlot2):  cfg.Slot2Rate.String(),
			string(domain.WindowSlot1):  cfg.Slot1Rate.String(),
			string(domain.WindowP2Swap): cfg.P2SwapRate.String(),
		},
		SaleAddress: cfg.SaleAddress.Hex(),
		Treasury:    cfg.Treasury.Hex(),
	}
}

// PurchaseResponse is the result of a presale purchase
type PurchaseResponse struct {
	Stage    string `json:"stage"`
	Paid     Amount `json:"paid"`
	Received Amount `json:"received"`
}

// ConversionResponse is the result of a redemption or P2 swap
type ConversionResponse struct {
	Burned   Amount `json:"burned"`
	Received Amount `json:"received"`
}

// StakeResponse describes a staking position
type StakeResponse struct {
	Address         string `json:"address"`
	Active          bool   `json:"active"`
	Principal       Amount `json:"principal"`
	TotalClaimed    Amount `json:"totalClaimed"`
	PendingInterest Amount `json:"pendingInterest"`
	AccruedFrom     int64  `json:"accruedFrom"`
	FirstStakedAt   int64  `json:"firstStakedAt"`
	AsOf            int64  `json:"asOf,omitempty"`
}

// MapStakeView maps a stake view
func MapStakeView(addr common.Address, view *domain.StakeView) StakeResponse {
	resp := MapStakeRecord(addr, &view.StakeRecord)
	resp.PendingInterest = NewAmount(view.PendingInterest)
	resp.AsOf = view.AsOf
	return resp
}

// MapStakeRecord maps a stake record
func MapStakeRecord(addr common.Address, record *domain.StakeRecord) StakeResponse {
	return StakeResponse{
		Address:         addr.Hex(),
		Active:          record.Active,
		Principal:       NewAmount(record.Principal),
		TotalClaimed:    NewAmount(record.TotalClaimed),
		PendingInterest: NewAmount(nil),
		AccruedFrom:     record.AccruedFrom,
		FirstStakedAt:   record.FirstStakedAt,
	}
}

// StakingPoolResponse describes the staking pool
type StakingPoolResponse struct {
	Pool          string `json:"pool"`
	RewardReserve string `json:"rewardReserve"`
	APRBps        uint64 `json:"aprBps"`
	Staked        Amount `json:"staked"`
	Reserve       Amount `json:"reserve"`
}

// UnstakeResponse is the result of an unstake
type UnstakeResponse struct {
	Principal Amount `json:"principal"`
	Interest  Amount `json:"interest"`
}

// ClaimResponse is the result of an interest claim
type ClaimResponse struct {
	Claimed Amount `json:"claimed"`
}

// WhitelistResponse lists whitelisted addresses
type WhitelistResponse struct {
	Addresses []string `json:"addresses"`
}

// WhitelistStatusResponse is the whitelist status of one address
type WhitelistStatusResponse struct {
	Address     string `json:"address"`
	Whitelisted bool   `json:"whitelisted"`
}

// EventResponse is one journaled ledger event
type EventResponse struct {
	Sequence    uint64     `json:"sequence"`
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Token       string     `json:"token,omitempty"`
	From        string     `json:"from,omitempty"`
	To          string     `json:"to,omitempty"`
	Amount      string     `json:"amount,omitempty"`
	AmountOut   string     `json:"amountOut,omitempty"`
	Stage       string     `json:"stage,omitempty"`
	Detail      string     `json:"detail,omitempty"`
	Timestamp   int64      `json:"timestamp"`
	PrevHash    string     `json:"prevHash"`
	Hash        string     `json:"hash"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// EventListResponse is a page of events
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	// Next is the sequence to pass as "after" for the following page; nil on the last page
	Next *uint64 `json:"next,omitempty"`
}

// MapEvents maps a page of events
func MapEvents(events []domain.Event, limit int) EventListResponse {
	resp := EventListResponse{Events: make([]EventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, EventResponse{
			Sequence:    e.Sequence,
			ID:          e.ID,
			Type:        string(e.Type),
			Token:       string(e.Token),
			From:        e.From,
			To:          e.To,
			Amount:      e.Amount,
			AmountOut:   e.AmountOut,
			Stage:       e.Stage,
			Detail:      e.Detail,
			Timestamp:   e.Timestamp,
			PrevHash:    e.PrevHash.Hex(),
			Hash:        e.Hash.Hex(),
			PublishedAt: e.PublishedAt,
		})
	}
	if len(events) == limit && limit > 0 {
		next := events[len(events)-1].Sequence
		resp.Next = &next
	}
	return resp
}

// OperationResponse acknowledges an operation without a result payload
type OperationResponse struct {
	Status string `json:"status"`
}
