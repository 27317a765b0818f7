package schema

import (
	"time"
)

// Balance represents the balances table - one row per (token kind, account)
type Balance struct {
	// Token is the token kind (main, presale, barracks, stablecoin)
	Token string `gorm:"column:token;primaryKey;type:text"`
	// Address is the checksummed account address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Amount is the balance in base units (numeric(78,0) fits any uint256)
	Amount string `gorm:"column:amount;not null;type:numeric(78,0)"`
	// UpdatedAt is the timestamp when this balance was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Balance model
func (Balance) TableName() string {
	return "balances"
}

// Allowance represents the allowances table - spender allowances per (token kind, owner)
type Allowance struct {
	Token   string `gorm:"column:token;primaryKey;type:text"`
	Owner   string `gorm:"column:owner;primaryKey;type:text"`
	Spender string `gorm:"column:spender;primaryKey;type:text"`
	// Amount is the remaining allowance in base units
	Amount    string    `gorm:"column:amount;not null;type:numeric(78,0)"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Allowance model
func (Allowance) TableName() string {
	return "allowances"
}

// TokenState represents the token_states table - supply and pause flag per token kind
type TokenState struct {
	Token       string    `gorm:"column:token;primaryKey;type:text"`
	TotalSupply string    `gorm:"column:total_supply;not null;type:numeric(78,0)"`
	Paused      bool      `gorm:"column:paused;not null;default:false"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the TokenState model
func (TokenState) TableName() string {
	return "token_states"
}
