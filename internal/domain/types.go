package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Decimals is the fixed-point precision shared by every token kind on the ledger
const Decimals = 6

// TokenKind identifies one of the fungible tokens tracked by the ledger
type TokenKind string

const (
	// TokenMain is the main SOLDIERS token
	TokenMain TokenKind = "main"
	// TokenPresale is the presale claim token, redeemable 1:1 for the main token
	TokenPresale TokenKind = "presale"
	// TokenBarracks is the companion P2 token, swappable into the main token
	TokenBarracks TokenKind = "barracks"
	// TokenStablecoin is the payment token accepted during presale
	TokenStablecoin TokenKind = "stablecoin"
)

// TokenKinds lists every token kind in a stable order
var TokenKinds = []TokenKind{TokenMain, TokenPresale, TokenBarracks, TokenStablecoin}

// IsValidTokenKind checks if a token kind is known
func IsValidTokenKind(kind TokenKind) bool {
	return kind == TokenMain ||
		kind == TokenPresale ||
		kind == TokenBarracks ||
		kind == TokenStablecoin
}

// ParseTokenKind parses a token kind from its string form
func ParseTokenKind(s string) (TokenKind, error) {
	kind := TokenKind(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidTokenKind(kind) {
		return "", ErrUnknownToken
	}
	return kind, nil
}

// TokenMetadata holds the ERC20-style descriptive attributes of a token
type TokenMetadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

var tokenMetadata = map[TokenKind]TokenMetadata{
	TokenMain:       {Name: "SOLDIERS Token", Symbol: "$SLDRS", Decimals: Decimals},
	TokenPresale:    {Name: "Pre-Sale SOLDIERS Token", Symbol: "$pSLDRS", Decimals: Decimals},
	TokenBarracks:   {Name: "Barracks Token", Symbol: "$BRCKS", Decimals: Decimals},
	TokenStablecoin: {Name: "BUSD Token", Symbol: "BUSD", Decimals: Decimals},
}

// Metadata returns the descriptive attributes of the token
func (k TokenKind) Metadata() TokenMetadata {
	return tokenMetadata[k]
}

func (k TokenKind) String() string {
	return string(k)
}

// TokenState is the per-token aggregate: supply and pause flag
type TokenState struct {
	Kind        TokenKind
	TotalSupply *big.Int
	Paused      bool
}

// ZeroAddress is the mint source and burn sink in Transfer events
var ZeroAddress = common.Address{}

// SystemAddress derives a deterministic account address for a ledger-internal role
// (staking pool, reward reserve, swap pool, sale contract).
func SystemAddress(role string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("ff-sale-ledger/" + role))[12:])
}

// ParseAddress parses a hex address and rejects malformed input
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ParseAddresses parses a list of hex addresses
func ParseAddresses(list []string) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(list))
	for _, s := range list {
		addr, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, nil
}
