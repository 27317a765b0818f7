package store

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

// RunStoreTests runs the shared store behaviour against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	t.Run("absent records read as zero", func(t *testing.T) { testZeroValues(t, initDB(t)) })
	t.Run("balances and supply", func(t *testing.T) { testBalances(t, initDB(t)) })
	t.Run("allowances", func(t *testing.T) { testAllowances(t, initDB(t)) })
	t.Run("sale schedule", func(t *testing.T) { testSaleSchedule(t, initDB(t)) })
	t.Run("whitelist", func(t *testing.T) { testWhitelist(t, initDB(t)) })
	t.Run("stake records", func(t *testing.T) { testStakeRecords(t, initDB(t)) })
	t.Run("failed update rolls back", func(t *testing.T) { testRollback(t, initDB(t)) })
	t.Run("view is read only", func(t *testing.T) { testViewReadOnly(t, initDB(t)) })
	t.Run("event outbox", func(t *testing.T) { testEventOutbox(t, initDB(t)) })
}

func testZeroValues(t *testing.T, s Store) {
	ctx := context.Background()
	err := s.View(ctx, func(tx Tx) error {
		balance, err := tx.Balance(domain.TokenMain, alice)
		require.NoError(t, err)
		assert.Equal(t, 0, balance.Sign())

		allowance, err := tx.Allowance(domain.TokenMain, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, 0, allowance.Sign())

		state, err := tx.TokenState(domain.TokenPresale)
		require.NoError(t, err)
		assert.Equal(t, domain.TokenPresale, state.Kind)
		assert.Equal(t, 0, state.TotalSupply.Sign())
		assert.False(t, state.Paused)

		schedule, err := tx.SaleSchedule()
		require.NoError(t, err)
		assert.Nil(t, schedule)

		record, err := tx.StakeRecord(alice)
		require.NoError(t, err)
		assert.False(t, record.Active)
		assert.Equal(t, 0, record.Principal.Sign())

		seq, hash, err := tx.LastEvent()
		require.NoError(t, err)
		assert.Equal(t, uint64(0), seq)
		assert.Equal(t, common.Hash{}, hash)
		return nil
	})
	require.NoError(t, err)
}

func testBalances(t *testing.T, s Store) {
	ctx := context.Background()
	huge, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

	err := s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetBalance(domain.TokenMain, alice, big.NewInt(100)))
		require.NoError(t, tx.SetBalance(domain.TokenMain, bob, big.NewInt(23)))
		require.NoError(t, tx.SetBalance(domain.TokenBarracks, alice, huge))
		return tx.SetTokenState(domain.TokenState{Kind: domain.TokenMain, TotalSupply: big.NewInt(123), Paused: true})
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx Tx) error {
		balance, err := tx.Balance(domain.TokenMain, alice)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(100), balance)

		big256, err := tx.Balance(domain.TokenBarracks, alice)
		require.NoError(t, err)
		assert.Equal(t, huge, big256)

		sum, err := tx.SumBalances(domain.TokenMain)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(123), sum)

		empty, err := tx.SumBalances(domain.TokenStablecoin)
		require.NoError(t, err)
		assert.Equal(t, 0, empty.Sign())

		state, err := tx.TokenState(domain.TokenMain)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(123), state.TotalSupply)
		assert.True(t, state.Paused)
		return nil
	})
	require.NoError(t, err)

	// overwrite keeps one row per account
	err = s.Update(ctx, func(tx Tx) error {
		return tx.SetBalance(domain.TokenMain, alice, big.NewInt(1))
	})
	require.NoError(t, err)
	err = s.View(ctx, func(tx Tx) error {
		sum, err := tx.SumBalances(domain.TokenMain)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(24), sum)
		return nil
	})
	require.NoError(t, err)
}

func testAllowances(t *testing.T, s Store) {
	ctx := context.Background()
	err := s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetAllowance(domain.TokenStablecoin, alice, bob, big.NewInt(50)))
		return tx.SetAllowance(domain.TokenStablecoin, alice, bob, big.NewInt(40))
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx Tx) error {
		allowance, err := tx.Allowance(domain.TokenStablecoin, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(40), allowance)

		reverse, err := tx.Allowance(domain.TokenStablecoin, bob, alice)
		require.NoError(t, err)
		assert.Equal(t, 0, reverse.Sign())

		otherToken, err := tx.Allowance(domain.TokenMain, alice, bob)
		require.NoError(t, err)
		assert.Equal(t, 0, otherToken.Sign())
		return nil
	})
	require.NoError(t, err)
}

func testSaleSchedule(t *testing.T, s Store) {
	ctx := context.Background()
	schedule := domain.SaleSchedule{
		StartTime:  1_700_000_000,
		Slot3:      domain.Window{DayOffset: 0, Duration: 604800},
		Slot2:      domain.Window{DayOffset: 7, Duration: 604800},
		Slot1:      domain.Window{DayOffset: 14, Duration: 604800},
		Redemption: domain.Window{DayOffset: 21, Duration: 604800},
		P2Swap:     domain.Window{DayOffset: 28, Duration: 3600},
	}
	require.NoError(t, s.Update(ctx, func(tx Tx) error { return tx.SetSaleSchedule(schedule) }))

	schedule.StartTime = 1_800_000_000
	schedule.Slot2 = domain.Window{DayOffset: 3, Duration: 60}
	require.NoError(t, s.Update(ctx, func(tx Tx) error { return tx.SetSaleSchedule(schedule) }))

	err := s.View(ctx, func(tx Tx) error {
		got, err := tx.SaleSchedule()
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, schedule, *got)
		return nil
	})
	require.NoError(t, err)
}

func testWhitelist(t *testing.T, s Store) {
	ctx := context.Background()
	err := s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetWhitelisted(alice, true))
		require.NoError(t, tx.SetWhitelisted(alice, true))
		require.NoError(t, tx.SetWhitelisted(bob, true))
		require.NoError(t, tx.SetWhitelisted(bob, false))
		return tx.SetWhitelisted(bob, false)
	})
	require.NoError(t, err)

	err = s.View(ctx, func(tx Tx) error {
		listed, err := tx.IsWhitelisted(alice)
		require.NoError(t, err)
		assert.True(t, listed)

		listed, err = tx.IsWhitelisted(bob)
		require.NoError(t, err)
		assert.False(t, listed)

		all, err := tx.Whitelist()
		require.NoError(t, err)
		assert.Equal(t, []common.Address{alice}, all)
		return nil
	})
	require.NoError(t, err)
}

func testStakeRecords(t *testing.T, s Store) {
	ctx := context.Background()
	record := domain.StakeRecord{
		Owner:         alice,
		Principal:     big.NewInt(5_000_000),
		AccruedFrom:   1_700_000_100,
		InterestCarry: 123_456_789,
		FirstStakedAt: 1_700_000_000,
		TotalClaimed:  big.NewInt(42),
		Active:        true,
	}
	require.NoError(t, s.Update(ctx, func(tx Tx) error { return tx.SetStakeRecord(record) }))

	err := s.View(ctx, func(tx Tx) error {
		got, err := tx.StakeRecord(alice)
		require.NoError(t, err)
		assert.Equal(t, record, got)
		return nil
	})
	require.NoError(t, err)
}

func testRollback(t *testing.T, s Store) {
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx Tx) error {
		return tx.SetBalance(domain.TokenMain, alice, big.NewInt(10))
	}))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx Tx) error {
		require.NoError(t, tx.SetBalance(domain.TokenMain, alice, big.NewInt(0)))
		require.NoError(t, tx.SetBalance(domain.TokenMain, bob, big.NewInt(10)))
		require.NoError(t, tx.SetWhitelisted(bob, true))

		// writes are visible inside the unit of work
		balance, err := tx.Balance(domain.TokenMain, bob)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(10), balance)
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = s.View(ctx, func(tx Tx) error {
		balance, err := tx.Balance(domain.TokenMain, alice)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(10), balance)

		balance, err = tx.Balance(domain.TokenMain, bob)
		require.NoError(t, err)
		assert.Equal(t, 0, balance.Sign())

		listed, err := tx.IsWhitelisted(bob)
		require.NoError(t, err)
		assert.False(t, listed)
		return nil
	})
	require.NoError(t, err)
}

func testViewReadOnly(t *testing.T, s Store) {
	err := s.View(context.Background(), func(tx Tx) error {
		return tx.SetBalance(domain.TokenMain, alice, big.NewInt(1))
	})
	assert.ErrorIs(t, err, ErrReadOnly)
}

func testEventOutbox(t *testing.T, s Store) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0).UTC()

	err := s.Update(ctx, func(tx Tx) error {
		for i := 1; i <= 3; i++ {
			seq, prev, err := tx.LastEvent()
			require.NoError(t, err)
			event := domain.Event{
				Sequence: seq + 1,
				EventBody: domain.EventBody{
					ID:        "01HZZZZZZZZZZZZZZZZZZZZZZ" + string(rune('0'+i)),
					Type:      domain.EventTransfer,
					Token:     domain.TokenMain,
					From:      alice.Hex(),
					To:        bob.Hex(),
					Amount:    "100",
					Timestamp: now.Unix(),
				},
				PrevHash: prev,
				Hash:     common.BigToHash(big.NewInt(int64(i))),
			}
			require.NoError(t, tx.AppendEvent(event))
		}
		return nil
	})
	require.NoError(t, err)

	events, err := s.ListEvents(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, uint64(2), events[0].Sequence)
	assert.Equal(t, common.BigToHash(big.NewInt(1)), events[0].PrevHash)
	assert.Equal(t, domain.EventTransfer, events[0].Type)
	assert.Equal(t, bob.Hex(), events[0].To)

	pending, err := s.UnpublishedEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, uint64(1), pending[0].Sequence)

	require.NoError(t, s.MarkEventsPublished(ctx, []uint64{1, 2}, now))

	pending, err = s.UnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, uint64(3), pending[0].Sequence)

	all, err := s.ListEvents(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NotNil(t, all[0].PublishedAt)
	assert.True(t, all[0].PublishedAt.Equal(now))
	assert.Nil(t, all[2].PublishedAt)

	unbounded, err := s.ListEvents(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, unbounded, 3, "a non-positive limit lists everything")

	pending, err = s.UnpublishedEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
