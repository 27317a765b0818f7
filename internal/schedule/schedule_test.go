package schedule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

const (
	start = int64(1_700_000_000)
	day   = int64(SecondsPerDay)
)

func TestStageAt(t *testing.T) {
	s := Default(start)

	tests := []struct {
		name     string
		schedule domain.SaleSchedule
		now      int64
		expected domain.Stage
	}{
		{name: "unset start time", schedule: Default(0), now: start, expected: domain.StageNotStarted},
		{name: "before start", schedule: s, now: start - 1, expected: domain.StageNotStarted},
		{name: "exactly at start", schedule: s, now: start, expected: domain.StagePreSaleSlot3},
		{name: "last second of slot3", schedule: s, now: start + 7*day - 1, expected: domain.StagePreSaleSlot3},
		{name: "slot2", schedule: s, now: start + 7*day, expected: domain.StagePreSaleSlot2},
		{name: "slot1", schedule: s, now: start + 15*day, expected: domain.StagePreSaleSlot1},
		{name: "redemption", schedule: s, now: start + 22*day, expected: domain.StageRedemption},
		{name: "p2 swap", schedule: s, now: start + 30*day, expected: domain.StageP2Swap},
		{name: "after every window", schedule: s, now: start + 35*day, expected: domain.StageOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StageAt(tt.schedule, tt.now))
		})
	}
}

func TestStageAtOverlapFirstMatchWins(t *testing.T) {
	s := Default(start)
	// redemption overlaps the whole of slot2
	s.Redemption = domain.Window{DayOffset: 7, Duration: uint64(7 * day)}

	assert.Equal(t, domain.StagePreSaleSlot2, StageAt(s, start+8*day))
	assert.Equal(t, [][2]domain.WindowName{{domain.WindowSlot2, domain.WindowRedemption}}, Overlaps(s))
	assert.Empty(t, Overlaps(Default(start)))
}

func TestStageAtGap(t *testing.T) {
	s := Default(start)
	s.Slot2 = domain.Window{DayOffset: 10, Duration: uint64(day)}

	assert.Equal(t, domain.StageOpen, StageAt(s, start+8*day))
	assert.Equal(t, domain.StagePreSaleSlot2, StageAt(s, start+10*day))
}

func TestStageMonotonicUnderFixedSchedule(t *testing.T) {
	s := Default(start)
	seen := map[domain.Stage]bool{}
	prev := domain.StageNotStarted
	for now := start - day; now < start+40*day; now += 3600 {
		stage := StageAt(s, now)
		if stage != prev {
			require.False(t, seen[stage], "stage %s revisited at %d", stage, now)
			require.Greater(t, stage, prev)
			seen[prev] = true
			prev = stage
		}
	}
	assert.Equal(t, domain.StageOpen, prev)
}

func TestZeroDurationWindowNeverMatches(t *testing.T) {
	s := Default(start)
	s.Slot3 = domain.Window{DayOffset: 0, Duration: 0}

	assert.Equal(t, domain.StageOpen, StageAt(s, start))
}

func TestWindowIntervalSaturates(t *testing.T) {
	iv := WindowInterval(start, domain.Window{DayOffset: math.MaxUint64, Duration: math.MaxUint64})
	assert.Equal(t, int64(math.MaxInt64), iv.Start)
	assert.Equal(t, int64(math.MaxInt64), iv.End)
	assert.False(t, iv.Contains(start))
}

func TestValidateWindow(t *testing.T) {
	assert.NoError(t, ValidateWindow(domain.Window{DayOffset: 7, Duration: 604800}))
	assert.ErrorIs(t, ValidateWindow(domain.Window{DayOffset: math.MaxUint64}), domain.ErrOverflow)
	assert.ErrorIs(t, ValidateWindow(domain.Window{Duration: math.MaxUint64}), domain.ErrOverflow)
}

func TestDescribe(t *testing.T) {
	statuses := Describe(Default(start), start+8*day)
	require.Len(t, statuses, 5)
	assert.Equal(t, domain.WindowSlot2, statuses[1].Name)
	assert.True(t, statuses[1].Active)
	assert.Equal(t, start+7*day, statuses[1].Start)
	assert.Equal(t, start+14*day, statuses[1].End)
	assert.False(t, statuses[0].Active)
}

func TestIsStarted(t *testing.T) {
	assert.False(t, IsStarted(Default(0), start))
	assert.False(t, IsStarted(Default(start), start-1))
	assert.True(t, IsStarted(Default(start), start))
}
