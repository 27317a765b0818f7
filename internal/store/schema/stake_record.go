package schema

import "time"

// StakeRecord represents the stake_records table - one staking position per account
type StakeRecord struct {
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Principal is the staked amount currently held by the staking pool
	Principal string `gorm:"column:principal;not null;type:numeric(78,0)"`
	// AccruedFrom is the unix time interest starts accruing for the current principal
	AccruedFrom int64 `gorm:"column:accrued_from;not null"`
	// InterestCarry is the unpaid sub-unit interest numerator carried across settlements
	InterestCarry int64 `gorm:"column:interest_carry;not null;default:0"`
	// FirstStakedAt is the unix time of the first stake of the current position
	FirstStakedAt int64 `gorm:"column:first_staked_at;not null"`
	// TotalClaimed is the lifetime interest paid to the account
	TotalClaimed string    `gorm:"column:total_claimed;not null;type:numeric(78,0)"`
	Active       bool      `gorm:"column:active;not null;default:false"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the StakeRecord model
func (StakeRecord) TableName() string {
	return "stake_records"
}
