package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

// ParseAmount parses a base-unit amount given as a decimal integer string
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	if amount.Cmp(math.MaxBig256) > 0 {
		return nil, ErrOverflow
	}
	return amount, nil
}

// maxUint256Digits is the decimal digit count of 2^256-1
const maxUint256Digits = 78

// ParseUnits parses a human-readable token amount ("12.5") into base units.
// Exponents are bounded before scaling so "1e2000000" fails without building the number.
func ParseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	coef := d.Coefficient()
	if coef.Sign() == 0 {
		return new(big.Int), nil
	}
	digits := int64(len(coef.String()))
	exp := int64(d.Exponent()) + Decimals
	if exp > 0 && digits+exp > maxUint256Digits {
		return nil, ErrOverflow
	}
	if exp < 0 && -exp > digits {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	scaled := d.Shift(Decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %q has more than %d decimals", s, Decimals)
	}
	amount := scaled.BigInt()
	if amount.Cmp(math.MaxBig256) > 0 {
		return nil, ErrOverflow
	}
	return amount, nil
}

// Units converts whole tokens into base units
func Units(whole uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(whole), big.NewInt(1_000_000))
}

// FormatUnits renders a base-unit amount with the ledger's fixed decimals
func FormatUnits(amount *big.Int) string {
	if amount == nil {
		return decimal.Zero.StringFixed(Decimals)
	}
	return decimal.NewFromBigInt(amount, -Decimals).StringFixed(Decimals)
}

// CheckedAdd returns a+b, failing with ErrOverflow above 2^256-1
func CheckedAdd(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(math.MaxBig256) > 0 {
		return nil, ErrOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b, failing with the given error when b > a
func CheckedSub(a, b *big.Int, insufficient error) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, insufficient
	}
	return new(big.Int).Sub(a, b), nil
}

// Rate is an exchange rate expressed as Num/Den output units per input unit
type Rate struct {
	Num uint64 `json:"num"`
	Den uint64 `json:"den"`
}

// NewRate returns the integral rate n/1
func NewRate(n uint64) Rate {
	return Rate{Num: n, Den: 1}
}

// Validate checks the rate has a non-zero denominator
func (r Rate) Validate() error {
	if r.Den == 0 {
		return fmt.Errorf("rate %d/%d has zero denominator", r.Num, r.Den)
	}
	return nil
}

// Apply returns floor(amount*Num/Den), failing with ErrOverflow above 2^256-1
func (r Rate) Apply(amount *big.Int) (*big.Int, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(amount, new(big.Int).SetUint64(r.Num))
	out.Quo(out, new(big.Int).SetUint64(r.Den))
	if out.Cmp(math.MaxBig256) > 0 {
		return nil, ErrOverflow
	}
	return out, nil
}

func (r Rate) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
