package ledger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-sale-ledger/internal/config"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
)

// Config holds the ledger roles and economic parameters
type Config struct {
	// Owner is the issuer allowed to call owner-only operations
	Owner common.Address
	// Treasury receives stablecoin payments and backs the P2 swap headroom
	Treasury common.Address
	// SaleAddress is the spender that buyers and swappers approve
	SaleAddress common.Address
	// StakingPool holds all staked principal
	StakingPool common.Address
	// RewardReserve pays staking interest
	RewardReserve common.Address
	// SwapPool receives Barracks tokens swapped into the main token
	SwapPool common.Address

	Slot3Rate  domain.Rate
	Slot2Rate  domain.Rate
	Slot1Rate  domain.Rate
	P2SwapRate domain.Rate
	// StakingAPRBps is the simple annual interest rate in basis points
	StakingAPRBps uint64
}

// Genesis holds the state written when the ledger is bootstrapped
type Genesis struct {
	Schedule         domain.SaleSchedule
	MainSupply       *big.Int
	PresaleSupply    *big.Int
	BarracksSupply   *big.Int
	StablecoinSupply *big.Int
	// SwapHeadroom is the treasury Barracks allowance granted to the sale address
	SwapHeadroom *big.Int
	// RewardReserve is the main-token amount moved from the owner to the reward reserve
	RewardReserve *big.Int
}

// NewConfig builds the ledger configuration, deriving unset system addresses
func NewConfig(cfg config.LedgerConfig) (Config, error) {
	owner, err := domain.ParseAddress(cfg.Owner)
	if err != nil {
		return Config{}, fmt.Errorf("ledger.owner: %w", err)
	}

	treasury := owner
	if cfg.Treasury != "" {
		if treasury, err = domain.ParseAddress(cfg.Treasury); err != nil {
			return Config{}, fmt.Errorf("ledger.treasury: %w", err)
		}
	}

	addresses := []struct {
		value string
		role  string
		dest  *common.Address
	}{
		{cfg.SaleAddress, "sale", new(common.Address)},
		{cfg.StakingPool, "staking-pool", new(common.Address)},
		{cfg.RewardReserve, "reward-reserve", new(common.Address)},
		{cfg.SwapPool, "swap-pool", new(common.Address)},
	}
	for _, a := range addresses {
		if a.value == "" {
			*a.dest = domain.SystemAddress(a.role)
			continue
		}
		if *a.dest, err = domain.ParseAddress(a.value); err != nil {
			return Config{}, fmt.Errorf("ledger %s address: %w", a.role, err)
		}
	}

	c := Config{
		Owner:         owner,
		Treasury:      treasury,
		SaleAddress:   *addresses[0].dest,
		StakingPool:   *addresses[1].dest,
		RewardReserve: *addresses[2].dest,
		SwapPool:      *addresses[3].dest,
		Slot3Rate:     domain.NewRate(cfg.Rates.Slot3),
		Slot2Rate:     domain.NewRate(cfg.Rates.Slot2),
		Slot1Rate:     domain.NewRate(cfg.Rates.Slot1),
		P2SwapRate:    domain.Rate{Num: cfg.Rates.P2SwapNum, Den: cfg.Rates.P2SwapDen},
		StakingAPRBps: cfg.StakingAPRBps,
	}
	return c, c.Validate()
}

// IsSystemAccount reports whether addr is one of the ledger-controlled accounts
func (c Config) IsSystemAccount(addr common.Address) bool {
	switch addr {
	case c.SaleAddress, c.StakingPool, c.RewardReserve, c.SwapPool:
		return true
	}
	return false
}

// Validate checks rates and that system accounts are distinct from the owner
func (c Config) Validate() error {
	for name, r := range map[string]domain.Rate{
		"slot3": c.Slot3Rate, "slot2": c.Slot2Rate, "slot1": c.Slot1Rate, "p2swap": c.P2SwapRate,
	} {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s rate: %w", name, err)
		}
	}
	if c.Owner == domain.ZeroAddress {
		return errors.New("owner must not be the zero address")
	}
	system := map[common.Address]string{}
	for role, addr := range map[string]common.Address{
		"sale": c.SaleAddress, "staking pool": c.StakingPool, "reward reserve": c.RewardReserve, "swap pool": c.SwapPool,
	} {
		if addr == domain.ZeroAddress {
			return fmt.Errorf("%s must not be the zero address", role)
		}
		if addr == c.Owner {
			return fmt.Errorf("%s must differ from the owner", role)
		}
		if other, ok := system[addr]; ok {
			return fmt.Errorf("%s and %s share an address", role, other)
		}
		system[addr] = role
	}
	return nil
}

// NewGenesis builds genesis state from configuration
func NewGenesis(cfg config.LedgerConfig) (Genesis, error) {
	s := domain.SaleSchedule{
		StartTime:  cfg.Schedule.StartTime,
		Slot3:      domain.Window{DayOffset: cfg.Schedule.Slot3.DayOffset, Duration: cfg.Schedule.Slot3.Duration},
		Slot2:      domain.Window{DayOffset: cfg.Schedule.Slot2.DayOffset, Duration: cfg.Schedule.Slot2.Duration},
		Slot1:      domain.Window{DayOffset: cfg.Schedule.Slot1.DayOffset, Duration: cfg.Schedule.Slot1.Duration},
		Redemption: domain.Window{DayOffset: cfg.Schedule.Redemption.DayOffset, Duration: cfg.Schedule.Redemption.Duration},
		P2Swap:     domain.Window{DayOffset: cfg.Schedule.P2Swap.DayOffset, Duration: cfg.Schedule.P2Swap.Duration},
	}
	if s.StartTime < 0 {
		return Genesis{}, fmt.Errorf("ledger.schedule.start_time must not be negative")
	}
	for _, name := range domain.WindowNames {
		w, _ := s.Window(name)
		if err := schedule.ValidateWindow(w); err != nil {
			return Genesis{}, fmt.Errorf("ledger.schedule.%s: %w", name, err)
		}
	}
	if cfg.Genesis.RewardReserve > cfg.Genesis.MainSupply {
		return Genesis{}, fmt.Errorf("ledger.genesis.reward_reserve exceeds main_supply")
	}
	return Genesis{
		Schedule:         s,
		MainSupply:       domain.Units(cfg.Genesis.MainSupply),
		PresaleSupply:    domain.Units(cfg.Genesis.PresaleSupply),
		BarracksSupply:   domain.Units(cfg.Genesis.BarracksSupply),
		StablecoinSupply: domain.Units(cfg.Genesis.StablecoinSupply),
		SwapHeadroom:     domain.Units(cfg.Genesis.SwapHeadroom),
		RewardReserve:    domain.Units(cfg.Genesis.RewardReserve),
	}, nil
}
