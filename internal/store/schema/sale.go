package schema

import "time"

// SaleSettingsID is the primary key of the single sale_settings row
const SaleSettingsID = 1

// SaleSettings represents the sale_settings table - a single row holding the sale start time.
// Its presence marks the ledger as bootstrapped.
type SaleSettings struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	StartTime int64     `gorm:"column:start_time;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the SaleSettings model
func (SaleSettings) TableName() string {
	return "sale_settings"
}

// SaleWindow represents the sale_windows table - one row per schedule window
type SaleWindow struct {
	// Name is the window name (slot3, slot2, slot1, redemption, p2swap)
	Name string `gorm:"column:name;primaryKey;type:text"`
	// DayOffset is the window start in days after the sale start time
	DayOffset uint64 `gorm:"column:day_offset;not null"`
	// DurationSeconds is the window length
	DurationSeconds uint64    `gorm:"column:duration_seconds;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the SaleWindow model
func (SaleWindow) TableName() string {
	return "sale_windows"
}

// WhitelistEntry represents the whitelist_entries table - presence means whitelisted
type WhitelistEntry struct {
	Address   string    `gorm:"column:address;primaryKey;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the WhitelistEntry model
func (WhitelistEntry) TableName() string {
	return "whitelist_entries"
}
