package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType is the kind of a journaled ledger event
type EventType string

const (
	EventTransfer         EventType = "Transfer"
	EventApproval         EventType = "Approval"
	EventPause            EventType = "Pause"
	EventUnpause          EventType = "Unpause"
	EventPurchase         EventType = "Purchase"
	EventRedemption       EventType = "Redemption"
	EventP2Swap           EventType = "P2Swap"
	EventStaked           EventType = "Staked"
	EventUnstaked         EventType = "Unstaked"
	EventInterestClaimed  EventType = "InterestClaimed"
	EventReferral         EventType = "Referral"
	EventWhitelistAdded   EventType = "WhitelistAdded"
	EventWhitelistRemoved EventType = "WhitelistRemoved"
	EventWindowUpdated    EventType = "WindowUpdated"
	EventSaleStartUpdated EventType = "SaleStartUpdated"
)

// EventBody is the hashed content of a ledger event.
// Addresses and amounts are strings so the canonical JSON form is stable.
type EventBody struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Token     TokenKind `json:"token,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	AmountOut string    `json:"amountOut,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// Event is a journaled ledger event chained to its predecessor by hash
type Event struct {
	Sequence uint64 `json:"sequence"`
	EventBody
	PrevHash    common.Hash `json:"prevHash"`
	Hash        common.Hash `json:"hash"`
	PublishedAt *time.Time  `json:"publishedAt,omitempty"`
}
