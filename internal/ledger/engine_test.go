package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sale-ledger/internal/adapter"
	"github.com/feral-file/ff-sale-ledger/internal/domain"
	"github.com/feral-file/ff-sale-ledger/internal/journal"
	"github.com/feral-file/ff-sale-ledger/internal/schedule"
	"github.com/feral-file/ff-sale-ledger/internal/store"
)

const saleStart int64 = 1_700_000_000

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

type fixture struct {
	ctx    context.Context
	engine *Engine
	store  store.Store
	clock  *adapter.FixedClock
	cfg    Config
}

func testConfig() Config {
	return Config{
		Owner:         owner,
		Treasury:      owner,
		SaleAddress:   domain.SystemAddress("sale"),
		StakingPool:   domain.SystemAddress("staking-pool"),
		RewardReserve: domain.SystemAddress("reward-reserve"),
		SwapPool:      domain.SystemAddress("swap-pool"),
		Slot3Rate:     domain.NewRate(4),
		Slot2Rate:     domain.NewRate(3),
		Slot1Rate:     domain.NewRate(2),
		P2SwapRate:    domain.NewRate(1),
		StakingAPRBps: 1200,
	}
}

func testGenesis() Genesis {
	return Genesis{
		Schedule:         schedule.Default(saleStart),
		MainSupply:       domain.Units(80_000),
		PresaleSupply:    domain.Units(55_000),
		BarracksSupply:   domain.Units(80_000),
		StablecoinSupply: new(big.Int),
		SwapHeadroom:     domain.Units(80_000),
		RewardReserve:    domain.Units(5_000),
	}
}

func newFixture(t *testing.T, genesis Genesis) *fixture {
	t.Helper()
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	s := store.NewMemoryStore()
	clock := adapter.NewFixedClock(time.Unix(saleStart-1, 0))
	f := &fixture{
		ctx:    context.Background(),
		engine: New(s, clock, adapter.NewJCS(), cfg),
		store:  s,
		clock:  clock,
		cfg:    cfg,
	}
	created, err := f.engine.Bootstrap(f.ctx, genesis)
	require.NoError(t, err)
	require.True(t, created)
	return f
}

// at moves the clock to a point inside a window
func (f *fixture) at(name domain.WindowName, offset time.Duration) {
	w, _ := schedule.Default(saleStart).Window(name)
	interval := schedule.WindowInterval(saleStart, w)
	f.clock.Set(time.Unix(interval.Start, 0).Add(offset))
}

func (f *fixture) balance(t *testing.T, kind domain.TokenKind, addr common.Address) *big.Int {
	t.Helper()
	b, err := f.engine.BalanceOf(f.ctx, kind, addr)
	require.NoError(t, err)
	return b
}

func (f *fixture) supply(t *testing.T, kind domain.TokenKind) *big.Int {
	t.Helper()
	s, err := f.engine.TotalSupply(f.ctx, kind)
	require.NoError(t, err)
	return s
}

func (f *fixture) fund(t *testing.T, kind domain.TokenKind, to common.Address, amount *big.Int) {
	t.Helper()
	require.NoError(t, f.engine.Mint(f.ctx, owner, kind, to, amount))
}

func (f *fixture) assertConserved(t *testing.T) {
	t.Helper()
	err := f.store.View(f.ctx, func(tx store.Tx) error {
		for _, kind := range domain.TokenKinds {
			state, err := tx.TokenState(kind)
			if err != nil {
				return err
			}
			sum, err := tx.SumBalances(kind)
			if err != nil {
				return err
			}
			assert.Equal(t, 0, state.TotalSupply.Cmp(sum), "supply of %s is %s, balances sum to %s", kind, state.TotalSupply, sum)
		}
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) events(t *testing.T) []domain.Event {
	t.Helper()
	events, err := f.engine.Events(f.ctx, 0, 1000)
	require.NoError(t, err)
	return events
}

func TestBootstrap(t *testing.T) {
	f := newFixture(t, testGenesis())

	assert.Equal(t, domain.Units(75_000), f.balance(t, domain.TokenMain, owner))
	assert.Equal(t, domain.Units(5_000), f.balance(t, domain.TokenMain, f.cfg.RewardReserve))
	assert.Equal(t, domain.Units(80_000), f.supply(t, domain.TokenMain))
	assert.Equal(t, domain.Units(55_000), f.balance(t, domain.TokenPresale, owner))
	assert.Equal(t, domain.Units(80_000), f.balance(t, domain.TokenBarracks, owner))
	assert.Equal(t, 0, f.supply(t, domain.TokenStablecoin).Sign())

	headroom, err := f.engine.Allowance(f.ctx, domain.TokenBarracks, f.cfg.Treasury, f.cfg.SaleAddress)
	require.NoError(t, err)
	assert.Equal(t, domain.Units(80_000), headroom)

	before := len(f.events(t))
	created, err := f.engine.Bootstrap(f.ctx, testGenesis())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, f.events(t), before)
	f.assertConserved(t)
}

func TestOperationsBeforeBootstrap(t *testing.T) {
	engine := New(store.NewMemoryStore(), adapter.NewFixedClock(time.Unix(saleStart, 0)), adapter.NewJCS(), testConfig())

	_, err := engine.Stage(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
	_, err = engine.Buy(context.Background(), alice, big.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrNotInitialized)
}

func TestStageFollowsClock(t *testing.T) {
	f := newFixture(t, testGenesis())

	stage, err := f.engine.Stage(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StageNotStarted, stage)
	started, err := f.engine.IsSaleStarted(f.ctx)
	require.NoError(t, err)
	assert.False(t, started)

	expected := map[domain.WindowName]domain.Stage{
		domain.WindowSlot3:      domain.StagePreSaleSlot3,
		domain.WindowSlot2:      domain.StagePreSaleSlot2,
		domain.WindowSlot1:      domain.StagePreSaleSlot1,
		domain.WindowRedemption: domain.StageRedemption,
		domain.WindowP2Swap:     domain.StageP2Swap,
	}
	for name, want := range expected {
		f.at(name, time.Hour)
		stage, err := f.engine.Stage(f.ctx)
		require.NoError(t, err)
		assert.Equal(t, want, stage, name)
	}

	f.clock.Set(time.Unix(saleStart, 0).Add(60 * 24 * time.Hour))
	stage, err = f.engine.Stage(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StageOpen, stage)
	started, err = f.engine.IsSaleStarted(f.ctx)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestBuyInSlot3(t *testing.T) {
	f := newFixture(t, testGenesis())
	f.fund(t, domain.TokenStablecoin, alice, domain.Units(200))
	require.NoError(t, f.engine.Approve(f.ctx, alice, domain.TokenStablecoin, f.cfg.SaleAddress, big.NewInt(10_000_000)))
	f.at(domain.WindowSlot3, time.Minute)

	result, err := f.engine.Buy(f.ctx, alice, big.NewInt(10_000_000))
	require.NoError(t, err)
	assert.Equal(t, domain.StagePreSaleSlot3, result.Stage)
	assert.Equal(t, big.NewInt(40_000_000), result.Received)

	assert.Equal(t, big.NewInt(40_000_000), f.balance(t, domain.TokenPresale, alice))
	assert.Equal(t, big.NewInt(190_000_000), f.balance(t, domain.TokenStablecoin, alice))
	assert.Equal(t, big.NewInt(10_000_000), f.balance(t, domain.TokenStablecoin, f.cfg.Treasury))
	assert.Equal(t, new(big.Int).Add(domain.Units(55_000), big.NewInt(40_000_000)), f.supply(t, domain.TokenPresale))

	events := f.events(t)
	last := events[len(events)-1]
	assert.Equal(t, domain.EventPurchase, last.Type)
	assert.Equal(t, "40000000", last.AmountOut)
	assert.Equal(t, domain.StagePreSaleSlot3.String(), last.Stage)
	f.assertConserved(t)
}

func TestBuyRejections(t *testing.T) {
	f := newFixture(t, testGenesis())
	f.fund(t, domain.TokenStablecoin, alice, domain.Units(200))
	require.NoError(t, f.engine.Approve(f.ctx, alice, domain.TokenStablecoin, f.cfg.SaleAddress, domain.Units(100)))

	_, err := f.engine.Buy(f.ctx, alice, domain.Units(1))
	assert.ErrorIs(t, err, domain.ErrStageNotEligible, "before the sale starts")

	f.at(domain.WindowSlot3, 0)
	_, err = f.engine.Buy(f.ctx, alice, big.NewInt(0))
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = f.engine.Buy(f.ctx, alice, domain.Units(101))
	assert.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	f.at(domain.WindowRedemption, 0)
	_, err = f.engine.Buy(f.ctx, alice, domain.Units(1))
	assert.ErrorIs(t, err, domain.ErrStageNotEligible)

	assert.Equal(t, 0, f.balance(t, domain.TokenPresale, alice).Sign())
	assert.Equal(t, domain.Units(200), f.balance(t, domain.TokenStablecoin, alice))
}

func TestBuyWhenStablecoinPaused(t *testing.T) {
	f := newFixture(t, testGenesis())
	f.fund(t, domain.TokenStablecoin, alice, domain.Units(200))
	require.NoError(t, f.engine.Approve(f.ctx, alice, domain.TokenStablecoin, f.cfg.SaleAddress, domain.Units(100)))
	require.NoError(t, f.engine.Pause(f.ctx, owner, domain.TokenStablecoin))
	f.at(domain.WindowSlot3, 0)

	_, err := f.engine.Buy(f.ctx, alice, domain.Units(1))
	assert.ErrorIs(t, err, domain.ErrTokenPaused)
	assert.Equal(t, 0, f.balance(t, domain.TokenPresale, alice).Sign())
}

func TestWhitelistGatesSlot2(t *testing.T) {
	f := newFixture(t, testGenesis())
	f.fund(t, domain.TokenStablecoin, alice, domain.Units(200))
	require.NoError(t, f.engine.Approve(f.ctx, alice, domain.TokenStablecoin, f.cfg.SaleAddress, domain.Units(200)))
	f.at(domain.WindowSlot2, time.Hour)

	_, err := f.engine.Buy(f.ctx, alice, domain.Units(10))
	require.ErrorIs(t, err, domain.ErrNotWhitelisted)
	assert.Equal(t, "Not Whitelisted", err.Error())

	require.NoError(t, f.engine.AddWhitelist(f.ctx, owner, []common.Address{alice}))
	result, err := f.engine.Buy(f.ctx, alice, domain.Units(10))
	require.NoError(t, err)
	assert.Equal(t, domain.Units(30), result.Received)
	assert.Equal(t, domain.StagePreSaleSlot2, result.Stage)
}

func TestWhitelistIsIdempotent(t *testing.T) {
	f := newFixture(t, testGenesis())

	require.NoError(t, f.engine.AddWhitelist(f.ctx, owner, []common.Address{alice, bob}))
	before := len(f.events(t))
	require.NoError(t, f.engine.AddWhitelist(f.ctx, owner, []common.Address{alice}))
	assert.Len(t, f.events(t), before)

	require.NoError(t, f.engine.RemoveWhitelist(f.ctx, owner, []common.Address{bob}))
	require.NoError(t, f.engine.RemoveWhitelist(f.ctx, owner, []common.Address{bob}))

	listed, err := f.engine.Whitelist(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{alice}, listed)

	ok, err := f.engine.IsWhitelisted(f.ctx, bob)
	require.NoError(t, err)
	assert.False(t, ok)

	err = f.engine.AddWhitelist(f.ctx, alice, []common.Address{bob})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestRedeem(t *testing.T) {
	f := newFixture(t, testGenesis())
	require.NoError(t, f.engine.Transfer(f.ctx, owner, domain.TokenPresale, alice, domain.Units(100)))

	f.at(domain.WindowSlot1, 0)
	_, err := f.engine.Redeem(f.ctx, alice, domain.Units(10))
	assert.ErrorIs(t, err, domain.ErrStageNotEligible)

	f.at(domain.WindowRedemption, time.Hour)
	_, err = f.engine.Redeem(f.ctx, alice, domain.Units(101))
	assert.ErrorIs(t, err, domain.ErrInsufficientPresaleBalance)

	mainSupply := f.supply(t, domain.TokenMain)
	result, err := f.engine.Redeem(f.ctx, alice, domain.Units(40))
	require.NoError(t, err)
	assert.Equal(t, domain.Units(40), result.Received)
	assert.Equal(t, domain.Units(60), f.balance(t, domain.TokenPresale, alice))
	assert.Equal(t, domain.Units(40), f.balance(t, domain.TokenMain, alice))
	assert.Equal(t, new(big.Int).Add(mainSupply, domain.Units(40)), f.supply(t, domain.TokenMain))
	f.assertConserved(t)
}

func TestRedeemBeforeSaleStart(t *testing.T) {
	f := newFixture(t, testGenesis())
	require.NoError(t, f.engine.SetSaleStartTime(f.ctx, owner, 0))
	f.at(domain.WindowRedemption, time.Hour)

	_, err := f.engine.Redeem(f.ctx, owner, domain.Units(1))
	assert.ErrorIs(t, err, domain.ErrSaleNotStarted)
}

func TestRedeemWhilePresalePaused(t *testing.T) {
	f := newFixture(t, testGenesis())
	require.NoError(t, f.engine.Pause(f.ctx, owner, domain.TokenPresale))
	f.at(domain.WindowRedemption, 0)

	_, err := f.engine.Redeem(f.ctx, owner, domain.Units(5))
	require.NoError(t, err)
}

func TestP2Swap(t *testing.T) {
	f := newFixture(t, testGenesis())
	require.NoError(t, f.engine.Transfer(f.ctx, owner, domain.TokenBarracks, alice, domain.Units(100)))
	require.NoError(t, f.engine.Approve(f.ctx, alice, domain.TokenBarracks, f.cfg.SaleAddress, domain.Units(100)))

	_, err := f.engine.P2Swap(f.ctx, alice, domain.Units(50))
	assert.ErrorIs(t, err, domain.ErrStageNotEligible)

	f.at(domain.WindowP2Swap, time.Hour)
	result, err := f.engine.P2Swap(f.ctx, alice, domain.Units(50))
	require.NoError(t, err)
	assert.Equal(t, domain.Units(50), result.Received)

	assert.Equal(t, domain.Units(50), f.balance(t, domain.TokenBarracks, alice))
	assert.Equal(t, domain.Units(50), f.balance(t, domain.TokenBarracks, f.cfg.SwapPool))
	assert.Equal(t, domain.Units(50), f.balance(t, domain.TokenMain, alice))

	headroom, err := f.engine.Allowance(f.ctx, domain.TokenBarracks, f.cfg.Treasury, f.cfg.SaleAddress)
	require.NoError(t, err)
	assert.Equal(t, domain.Units(79_950), headroom)
	allowance, err := f.engine.Allowance(f.ctx, domain.TokenBarracks, alice, f.cfg.SaleAddress)
	require.NoError(t, err)
	assert.Equal(t, domain.Units(50), allowance)
	f.assertConserved(t)
}

func TestP2SwapWithoutHeadroom(t *testing.T) {
	genesis := testGenesis()
	genesis.SwapHeadroom = domain.Units(10)
	f := newFixture(t, genesis)
	require.NoError(t, f.engine.Transfer(f.ctx, owner, domain.TokenBarracks, alice, domain.Units(100)))
	require.NoError(t, f.engine.Approve(f.ctx, alice, domain.TokenBarracks, f.cfg.SaleAddress, domain.Units(100)))
	f.at(domain.WindowP2Swap, 0)

	_, err := f.engine.P2Swap(f.ctx, alice, domain.Units(50))
	assert.ErrorIs(t, err, domain.ErrInsufficientPoolLiquidity)
	assert.Equal(t, domain.Units(100), f.balance(t, domain.TokenBarracks, alice))
	assert.Equal(t, 0, f.balance(t, domain.TokenMain, alice).Sign())
}

func TestPausedTransfer(t *testing.T) {
	f := newFixture(t, testGenesis())
	require.NoError(t, f.engine.Transfer(f.ctx, owner, domain.TokenMain, alice, domain.Units(10)))

	require.NoError(t, f.engine.Pause(f.ctx, owner, domain.TokenMain))
	info, err := f.engine.TokenInfo(f.ctx, domain.TokenMain)
	require.NoError(t, err)
	assert.True(t, info.Paused)
	events := f.events(t)
	assert.Equal(t, domain.EventPause, events[len(events)-1].Type)

	err = f.engine.Transfer(f.ctx, alice, domain.TokenMain, bob, domain.Units(1))
	require.ErrorIs(t, err, domain.ErrTokenPaused)
	assert.Equal(t, "Token Paused", err.Error())
	assert.ErrorIs(t, f.engine.Approve(f.ctx, alice, domain.TokenMain, bob, domain.Units(1)), domain.ErrTokenPaused)
	assert.ErrorIs(t, f.engine.TransferFrom(f.ctx, bob, domain.TokenMain, alice, bob, domain.Units(1)), domain.ErrTokenPaused)
	assert.Equal(t, domain.Units(10), f.balance(t, domain.TokenMain, alice))
	assert.Equal(t, 0, f.balance(t, domain.TokenMain, bob).Sign())

	require.NoError(t, f.engine.Burn(f.ctx, owner, domain.TokenMain, alice, domain.Units(1)), "burn ignores the pause flag")
	_, err = f.engine.StakeToken(f.ctx, alice, domain.Units(1))
	require.NoError(t, err, "staking ignores the pause flag")

	err = f.engine.Pause(f.ctx, owner, domain.TokenMain)
	assert.ErrorIs(t, err, domain.ErrAlreadyPaused)
	assert.Equal(t, "Token Paused", err.Error())

	require.NoError(t, f.engine.Unpause(f.ctx, owner, domain.TokenMain))
	err = f.engine.Unpause(f.ctx, owner, domain.TokenMain)
	assert.ErrorIs(t, err, domain.ErrAlreadyUnpaused)
	assert.Equal(t, "Token Not Paused", err.Error())

	require.NoError(t, f.engine.Transfer(f.ctx, alice, domain.TokenMain, bob, domain.Units(1)))
	f.assertConserved(t)
}

func TestOwnerOnlyOperations(t *testing.T) {
	f := newFixture(t, testGenesis())

	checks := map[string]error{
		"pause":          f.engine.Pause(f.ctx, alice, domain.TokenMain),
		"unpause":        f.engine.Unpause(f.ctx, alice, domain.TokenMain),
		"mint":           f.engine.Mint(f.ctx, alice, domain.TokenMain, alice, domain.Units(1)),
		"burn":           f.engine.Burn(f.ctx, alice, domain.TokenMain, owner, domain.Units(1)),
		"referral":       f.engine.Referral(f.ctx, alice, alice, domain.Units(1)),
		"set start time": f.engine.SetSaleStartTime(f.ctx, alice, saleStart),
		"set window":     f.engine.SetWindow(f.ctx, alice, domain.WindowSlot3, domain.Window{Duration: 1}),
		"remove":         f.engine.RemoveWhitelist(f.ctx, alice, []common.Address{bob}),
	}
	for name, err := range checks {
		assert.ErrorIs(t, err, domain.ErrNotOwner, name)
	}
}

func TestSystemAccountsCannotCall(t *testing.T) {
	f := newFixture(t, testGenesis())
	pool := f.balance(t, domain.TokenMain, f.cfg.RewardReserve)

	for name, addr := range map[string]common.Address{
		"sale":           f.cfg.SaleAddress,
		"staking pool":   f.cfg.StakingPool,
		"reward reserve": f.cfg.RewardReserve,
		"swap pool":      f.cfg.SwapPool,
	} {
		err := f.engine.Transfer(f.ctx, addr, domain.TokenMain, alice, domain.Units(1))
		assert.ErrorIs(t, err, domain.ErrSystemCaller, name)
		err = f.engine.Approve(f.ctx, addr, domain.TokenMain, alice, domain.Units(1))
		assert.ErrorIs(t, err, domain.ErrSystemCaller, name)
	}
	assert.Equal(t, pool, f.balance(t, domain.TokenMain, f.cfg.RewardReserve))
	assert.Equal(t, 0, f.balance(t, domain.TokenMain, alice).Sign())
	f.assertConserved(t)
}

func TestReferralMints(t *testing.T) {
	f := newFixture(t, testGenesis())
	supply := f.supply(t, domain.TokenMain)

	require.NoError(t, f.engine.Referral(f.ctx, owner, bob, domain.Units(25)))
	assert.Equal(t, domain.Units(25), f.balance(t, domain.TokenMain, bob))
	assert.Equal(t, new(big.Int).Add(supply, domain.Units(25)), f.supply(t, domain.TokenMain))

	assert.ErrorIs(t, f.engine.Referral(f.ctx, owner, bob, big.NewInt(0)), domain.ErrInvalidAmount)
	f.assertConserved(t)
}

func TestScheduleSetters(t *testing.T) {
	f := newFixture(t, testGenesis())

	require.NoError(t, f.engine.SetWindow(f.ctx, owner, domain.WindowSlot3, domain.Window{DayOffset: 1, Duration: 3600}))
	require.NoError(t, f.engine.SetSaleStartTime(f.ctx, owner, saleStart+10))

	s, statuses, err := f.engine.Schedule(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, saleStart+10, s.StartTime)
	assert.Equal(t, domain.Window{DayOffset: 1, Duration: 3600}, s.Slot3)
	assert.Len(t, statuses, len(domain.WindowNames))

	err = f.engine.SetWindow(f.ctx, owner, domain.WindowSlot1, domain.Window{DayOffset: 1 << 62})
	assert.ErrorIs(t, err, domain.ErrOverflow)
	assert.ErrorIs(t, f.engine.SetSaleStartTime(f.ctx, owner, -1), domain.ErrInvalidAmount)
}

func TestUnknownToken(t *testing.T) {
	f := newFixture(t, testGenesis())

	_, err := f.engine.BalanceOf(f.ctx, domain.TokenKind("doge"), alice)
	assert.ErrorIs(t, err, domain.ErrUnknownToken)
	assert.ErrorIs(t, f.engine.Pause(f.ctx, owner, domain.TokenKind("doge")), domain.ErrUnknownToken)
	_, err = f.engine.TokenInfo(f.ctx, domain.TokenKind("doge"))
	assert.ErrorIs(t, err, domain.ErrUnknownToken)
}

func TestEventJournalIsChained(t *testing.T) {
	f := newFixture(t, testGenesis())
	require.NoError(t, f.engine.Transfer(f.ctx, owner, domain.TokenMain, alice, domain.Units(1)))
	require.NoError(t, f.engine.AddWhitelist(f.ctx, owner, []common.Address{alice}))

	events := f.events(t)
	require.NotEmpty(t, events)
	for i, ev := range events {
		assert.Equal(t, uint64(i+1), ev.Sequence)
		assert.NotEmpty(t, ev.ID)
		assert.Nil(t, ev.PublishedAt)
	}

	seq, head, err := journal.NewHasher(adapter.NewJCS()).Verify(0, common.Hash{}, events)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(events)), seq)
	assert.Equal(t, events[len(events)-1].Hash, head)
}

func TestRejectedOperationWritesNothing(t *testing.T) {
	f := newFixture(t, testGenesis())
	before := f.events(t)

	err := f.engine.Transfer(f.ctx, alice, domain.TokenMain, bob, domain.Units(1))
	require.Error(t, err)
	le, ok := domain.AsLedgerError(err)
	require.True(t, ok)
	assert.Equal(t, domain.ErrInsufficientBalance.Code, le.Code)
	assert.False(t, errors.Is(err, domain.ErrTokenPaused))

	assert.Len(t, f.events(t), len(before))
}
