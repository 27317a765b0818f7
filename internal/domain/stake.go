package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// StakeRecord is the per-account staking position.
// AccruedFrom is the unix time interest starts accruing for the current principal.
// InterestCarry is the sub-unit interest numerator (principal*bps*seconds) earned before AccruedFrom and not yet paid.
type StakeRecord struct {
	Owner         common.Address
	Principal     *big.Int
	AccruedFrom   int64
	InterestCarry int64
	FirstStakedAt int64
	TotalClaimed  *big.Int
	Active        bool
}

// NewStakeRecord returns the idle record for an account that never staked
func NewStakeRecord(owner common.Address) StakeRecord {
	return StakeRecord{
		Owner:        owner,
		Principal:    new(big.Int),
		TotalClaimed: new(big.Int),
	}
}

// StakeView is a stake record together with interest accrued up to a point in time
type StakeView struct {
	StakeRecord
	PendingInterest *big.Int
	AsOf            int64
}
