package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/store/schema"
)

// ledgerLockKey is the advisory lock serialising read-write units of work across processes
const ledgerLockKey = 0x5a1e1ed9e5

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the ledger tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schema.Models()...); err != nil {
		return fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, defaults are used:
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and keeps MaxIdleConns within MaxOpenConns
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}
	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Update runs fn in a transaction holding the ledger advisory lock
func (s *pgStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", ledgerLockKey).Error; err != nil {
			return fmt.Errorf("failed to acquire ledger lock: %w", err)
		}
		return fn(&pgTx{db: tx})
	})
}

// View runs fn in a read-only repeatable-read transaction
func (s *pgStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgTx{db: tx, readOnly: true})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// ListEvents returns journaled events after a sequence
func (s *pgStore) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]domain.Event, error) {
	var rows []schema.LedgerEvent
	q := s.db.WithContext(ctx).
		Where("sequence > ?", afterSeq).
		Order("sequence ASC")
	err := withLimit(q, limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return eventsFromRows(rows)
}

// UnpublishedEvents returns the oldest undelivered events
func (s *pgStore) UnpublishedEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	var rows []schema.LedgerEvent
	q := s.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("sequence ASC")
	err := withLimit(q, limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unpublished events: %w", err)
	}
	return eventsFromRows(rows)
}

// withLimit applies a row limit; a non-positive limit means no limit
func withLimit(q *gorm.DB, limit int) *gorm.DB {
	if limit <= 0 {
		return q
	}
	return q.Limit(limit)
}

// MarkEventsPublished sets published_at on the given events
func (s *pgStore) MarkEventsPublished(ctx context.Context, sequences []uint64, at time.Time) error {
	if len(sequences) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&schema.LedgerEvent{}).
		Where("sequence IN ? AND published_at IS NULL", sequences).
		Update("published_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to mark events published: %w", err)
	}
	return nil
}

type pgTx struct {
	db       *gorm.DB
	readOnly bool
}

func (t *pgTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *pgTx) Balance(kind domain.TokenKind, addr common.Address) (*big.Int, error) {
	var row schema.Balance
	err := t.db.Where("token = ? AND address = ?", string(kind), addr.Hex()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return parseNumeric(row.Amount)
}

func (t *pgTx) SetBalance(kind domain.TokenKind, addr common.Address, amount *big.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := schema.Balance{
		Token:     string(kind),
		Address:   addr.Hex(),
		Amount:    amount.String(),
		UpdatedAt: time.Now(),
	}
	if err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return nil
}

func (t *pgTx) SumBalances(kind domain.TokenKind) (*big.Int, error) {
	var sum string
	err := t.db.Model(&schema.Balance{}).
		Select("COALESCE(SUM(amount), 0)::text").
		Where("token = ?", string(kind)).
		Scan(&sum).Error
	if err != nil {
		return nil, fmt.Errorf("failed to sum balances: %w", err)
	}
	return parseNumeric(sum)
}

func (t *pgTx) Allowance(kind domain.TokenKind, owner, spender common.Address) (*big.Int, error) {
	var row schema.Allowance
	err := t.db.Where("token = ? AND owner = ? AND spender = ?", string(kind), owner.Hex(), spender.Hex()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("failed to get allowance: %w", err)
	}
	return parseNumeric(row.Amount)
}

func (t *pgTx) SetAllowance(kind domain.TokenKind, owner, spender common.Address, amount *big.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := schema.Allowance{
		Token:     string(kind),
		Owner:     owner.Hex(),
		Spender:   spender.Hex(),
		Amount:    amount.String(),
		UpdatedAt: time.Now(),
	}
	if err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}, {Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to set allowance: %w", err)
	}
	return nil
}

func (t *pgTx) TokenState(kind domain.TokenKind) (domain.TokenState, error) {
	var row schema.TokenState
	err := t.db.Where("token = ?", string(kind)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.TokenState{Kind: kind, TotalSupply: new(big.Int)}, nil
		}
		return domain.TokenState{}, fmt.Errorf("failed to get token state: %w", err)
	}
	supply, err := parseNumeric(row.TotalSupply)
	if err != nil {
		return domain.TokenState{}, err
	}
	return domain.TokenState{Kind: kind, TotalSupply: supply, Paused: row.Paused}, nil
}

func (t *pgTx) SetTokenState(state domain.TokenState) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := schema.TokenState{
		Token:       string(state.Kind),
		TotalSupply: state.TotalSupply.String(),
		Paused:      state.Paused,
		UpdatedAt:   time.Now(),
	}
	if err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_supply", "paused", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to set token state: %w", err)
	}
	return nil
}

func (t *pgTx) SaleSchedule() (*domain.SaleSchedule, error) {
	var settings schema.SaleSettings
	err := t.db.Where("id = ?", schema.SaleSettingsID).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sale settings: %w", err)
	}

	var windows []schema.SaleWindow
	if err := t.db.Find(&windows).Error; err != nil {
		return nil, fmt.Errorf("failed to get sale windows: %w", err)
	}

	s := domain.SaleSchedule{StartTime: settings.StartTime}
	for _, w := range windows {
		name, err := domain.ParseWindowName(w.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sale window %q: %w", w.Name, err)
		}
		_ = s.SetWindow(name, domain.Window{DayOffset: w.DayOffset, Duration: w.DurationSeconds})
	}
	return &s, nil
}

func (t *pgTx) SetSaleSchedule(s domain.SaleSchedule) error {
	if err := t.writable(); err != nil {
		return err
	}
	now := time.Now()
	settings := schema.SaleSettings{ID: schema.SaleSettingsID, StartTime: s.StartTime, CreatedAt: now, UpdatedAt: now}
	if err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "updated_at"}),
	}).Create(&settings).Error; err != nil {
		return fmt.Errorf("failed to set sale settings: %w", err)
	}

	windows := make([]schema.SaleWindow, 0, len(domain.WindowNames))
	for _, name := range domain.WindowNames {
		w, _ := s.Window(name)
		windows = append(windows, schema.SaleWindow{
			Name:            string(name),
			DayOffset:       w.DayOffset,
			DurationSeconds: w.Duration,
			UpdatedAt:       now,
		})
	}
	if err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"day_offset", "duration_seconds", "updated_at"}),
	}).Create(&windows).Error; err != nil {
		return fmt.Errorf("failed to set sale windows: %w", err)
	}
	return nil
}

func (t *pgTx) IsWhitelisted(addr common.Address) (bool, error) {
	var count int64
	err := t.db.Model(&schema.WhitelistEntry{}).Where("address = ?", addr.Hex()).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check whitelist: %w", err)
	}
	return count > 0, nil
}

func (t *pgTx) SetWhitelisted(addr common.Address, listed bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	if !listed {
		if err := t.db.Where("address = ?", addr.Hex()).Delete(&schema.WhitelistEntry{}).Error; err != nil {
			return fmt.Errorf("failed to remove whitelist entry: %w", err)
		}
		return nil
	}
	entry := schema.WhitelistEntry{Address: addr.Hex(), CreatedAt: time.Now()}
	if err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to add whitelist entry: %w", err)
	}
	return nil
}

func (t *pgTx) Whitelist() ([]common.Address, error) {
	var entries []schema.WhitelistEntry
	if err := t.db.Order("address ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list whitelist: %w", err)
	}
	addresses := make([]common.Address, 0, len(entries))
	for _, e := range entries {
		addresses = append(addresses, common.HexToAddress(e.Address))
	}
	return addresses, nil
}

func (t *pgTx) StakeRecord(addr common.Address) (domain.StakeRecord, error) {
	var row schema.StakeRecord
	err := t.db.Where("address = ?", addr.Hex()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewStakeRecord(addr), nil
		}
		return domain.StakeRecord{}, fmt.Errorf("failed to get stake record: %w", err)
	}
	principal, err := parseNumeric(row.Principal)
	if err != nil {
		return domain.StakeRecord{}, err
	}
	claimed, err := parseNumeric(row.TotalClaimed)
	if err != nil {
		return domain.StakeRecord{}, err
	}
	return domain.StakeRecord{
		Owner:         addr,
		Principal:     principal,
		AccruedFrom:   row.AccruedFrom,
		InterestCarry: row.InterestCarry,
		FirstStakedAt: row.FirstStakedAt,
		TotalClaimed:  claimed,
		Active:        row.Active,
	}, nil
}

func (t *pgTx) SetStakeRecord(r domain.StakeRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	row := schema.StakeRecord{
		Address:       r.Owner.Hex(),
		Principal:     r.Principal.String(),
		AccruedFrom:   r.AccruedFrom,
		InterestCarry: r.InterestCarry,
		FirstStakedAt: r.FirstStakedAt,
		TotalClaimed:  r.TotalClaimed.String(),
		Active:        r.Active,
		UpdatedAt:     time.Now(),
	}
	if err := t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"principal", "accrued_from", "interest_carry", "first_staked_at", "total_claimed", "active", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to set stake record: %w", err)
	}
	return nil
}

func (t *pgTx) LastEvent() (uint64, common.Hash, error) {
	var row schema.LedgerEvent
	err := t.db.Order("sequence DESC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, common.Hash{}, nil
		}
		return 0, common.Hash{}, fmt.Errorf("failed to get last event: %w", err)
	}
	return row.Sequence, common.HexToHash(row.Hash), nil
}

func (t *pgTx) AppendEvent(event domain.Event) error {
	if err := t.writable(); err != nil {
		return err
	}
	row, err := rowFromEvent(event)
	if err != nil {
		return err
	}
	if err := t.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func rowFromEvent(event domain.Event) (schema.LedgerEvent, error) {
	payload, err := json.Marshal(event.EventBody)
	if err != nil {
		return schema.LedgerEvent{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return schema.LedgerEvent{
		Sequence:    event.Sequence,
		EventID:     event.ID,
		Type:        string(event.Type),
		Token:       string(event.Token),
		Payload:     payload,
		PrevHash:    event.PrevHash.Hex(),
		Hash:        event.Hash.Hex(),
		OccurredAt:  time.Unix(event.Timestamp, 0).UTC(),
		PublishedAt: event.PublishedAt,
		CreatedAt:   time.Now(),
	}, nil
}

func eventsFromRows(rows []schema.LedgerEvent) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		var body domain.EventBody
		if err := json.Unmarshal(row.Payload, &body); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event %d: %w", row.Sequence, err)
		}
		events = append(events, domain.Event{
			Sequence:    row.Sequence,
			EventBody:   body,
			PrevHash:    common.HexToHash(row.PrevHash),
			Hash:        common.HexToHash(row.Hash),
			PublishedAt: row.PublishedAt,
		})
	}
	return events, nil
}

func parseNumeric(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("failed to parse numeric value %q", s)
	}
	return v, nil
}
