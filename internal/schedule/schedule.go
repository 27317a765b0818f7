package schedule

import (
	"fmt"
	"math"

	"github.com/feral-file/ff-sale-ledger/internal/domain"
)

// SecondsPerDay converts window day offsets into seconds
const SecondsPerDay = 86400

// Interval is a half-open time interval [Start, End) in unix seconds
type Interval struct {
	Start int64
	End   int64
}

// Contains reports whether t lies inside the interval
func (i Interval) Contains(t int64) bool {
	return t >= i.Start && t < i.End
}

// IsStarted reports whether the sale has a start time that has been reached
func IsStarted(s domain.SaleSchedule, now int64) bool {
	return s.StartTime != 0 && now >= s.StartTime
}

// WindowInterval returns the absolute interval of a window.
// Bounds saturate at MaxInt64 so an oversized window never wraps into the past.
func WindowInterval(start int64, w domain.Window) Interval {
	begin := saturatingAdd(start, saturatingMul(w.DayOffset, SecondsPerDay))
	return Interval{Start: begin, End: saturatingAdd(begin, w.Duration)}
}

// StageAt maps a point in time to a sale stage.
// Windows are evaluated in priority order and the first match wins, so
// overlapping windows resolve to the earlier-declared one.
func StageAt(s domain.SaleSchedule, now int64) domain.Stage {
	if !IsStarted(s, now) {
		return domain.StageNotStarted
	}
	for _, name := range domain.WindowNames {
		w, _ := s.Window(name)
		if WindowInterval(s.StartTime, w).Contains(now) {
			return name.Stage()
		}
	}
	return domain.StageOpen
}

// ValidateWindow rejects windows whose offsets cannot be represented in seconds
func ValidateWindow(w domain.Window) error {
	if w.DayOffset > math.MaxInt64/SecondsPerDay {
		return fmt.Errorf("%w: day offset %d", domain.ErrOverflow, w.DayOffset)
	}
	if w.Duration > math.MaxInt64 {
		return fmt.Errorf("%w: duration %d", domain.ErrOverflow, w.Duration)
	}
	return nil
}

// Overlaps returns pairs of windows whose absolute intervals intersect.
// Overlap is allowed but means the later window is shadowed for the overlapping range.
func Overlaps(s domain.SaleSchedule) [][2]domain.WindowName {
	var pairs [][2]domain.WindowName
	for i, a := range domain.WindowNames {
		wa, _ := s.Window(a)
		ia := WindowInterval(s.StartTime, wa)
		for _, b := range domain.WindowNames[i+1:] {
			wb, _ := s.Window(b)
			ib := WindowInterval(s.StartTime, wb)
			if ia.Start < ia.End && ib.Start < ib.End && ia.Start < ib.End && ib.Start < ia.End {
				pairs = append(pairs, [2]domain.WindowName{a, b})
			}
		}
	}
	return pairs
}

// WindowStatus describes one window at a point in time
type WindowStatus struct {
	Name   domain.WindowName
	Window domain.Window
	Start  int64
	End    int64
	Active bool
}

// Describe returns the absolute interval of each window and marks the one driving the current stage
func Describe(s domain.SaleSchedule, now int64) []WindowStatus {
	stage := StageAt(s, now)
	out := make([]WindowStatus, 0, len(domain.WindowNames))
	for _, name := range domain.WindowNames {
		w, _ := s.Window(name)
		iv := WindowInterval(s.StartTime, w)
		out = append(out, WindowStatus{
			Name:   name,
			Window: w,
			Start:  iv.Start,
			End:    iv.End,
			Active: stage == name.Stage(),
		})
	}
	return out
}

func saturatingMul(a, b uint64) uint64 {
	if a != 0 && b > math.MaxUint64/a {
		return math.MaxUint64
	}
	return a * b
}

func saturatingAdd(a int64, b uint64) int64 {
	if b > math.MaxInt64 || a > math.MaxInt64-int64(b) {
		return math.MaxInt64
	}
	return a + int64(b)
}

// Default returns the standard schedule: three weekly presale slots,
// then a redemption week and a P2 swap week.
func Default(start int64) domain.SaleSchedule {
	const week = 7 * SecondsPerDay
	return domain.SaleSchedule{
		StartTime:  start,
		Slot3:      domain.Window{DayOffset: 0, Duration: week},
		Slot2:      domain.Window{DayOffset: 7, Duration: week},
		Slot1:      domain.Window{DayOffset: 14, Duration: week},
		Redemption: domain.Window{DayOffset: 21, Duration: week},
		P2Swap:     domain.Window{DayOffset: 28, Duration: week},
	}
}
