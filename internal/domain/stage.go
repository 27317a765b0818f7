package domain

// Stage is the sale phase derived from the schedule and the current time
type Stage int

const (
	StageNotStarted Stage = iota
	StagePreSaleSlot3
	StagePreSaleSlot2
	StagePreSaleSlot1
	StageRedemption
	StageP2Swap
	StageOpen
)

var stageNames = map[Stage]string{
	StageNotStarted:   "NotStarted",
	StagePreSaleSlot3: "PreSaleSlot3",
	StagePreSaleSlot2: "PreSaleSlot2",
	StagePreSaleSlot1: "PreSaleSlot1",
	StageRedemption:   "Redemption",
	StageP2Swap:       "P2Swap",
	StageOpen:         "Open",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsPresale reports whether buying presale tokens is allowed in the stage
func (s Stage) IsPresale() bool {
	return s == StagePreSaleSlot3 || s == StagePreSaleSlot2 || s == StagePreSaleSlot1
}

// WindowName identifies one configurable window of the sale schedule
type WindowName string

const (
	WindowSlot3      WindowName = "slot3"
	WindowSlot2      WindowName = "slot2"
	WindowSlot1      WindowName = "slot1"
	WindowRedemption WindowName = "redemption"
	WindowP2Swap     WindowName = "p2swap"
)

// WindowNames lists windows in stage priority order
var WindowNames = []WindowName{WindowSlot3, WindowSlot2, WindowSlot1, WindowRedemption, WindowP2Swap}

// ParseWindowName parses a window name
func ParseWindowName(s string) (WindowName, error) {
	for _, name := range WindowNames {
		if string(name) == s {
			return name, nil
		}
	}
	return "", ErrUnknownWindow
}

// Stage returns the stage active while the window is open
func (w WindowName) Stage() Stage {
	switch w {
	case WindowSlot3:
		return StagePreSaleSlot3
	case WindowSlot2:
		return StagePreSaleSlot2
	case WindowSlot1:
		return StagePreSaleSlot1
	case WindowRedemption:
		return StageRedemption
	case WindowP2Swap:
		return StageP2Swap
	default:
		return StageOpen
	}
}

// Window is a schedule window relative to the sale start time
type Window struct {
	DayOffset uint64 `json:"dayOffset"`
	Duration  uint64 `json:"durationSeconds"`
}

// SaleSchedule holds the sale start time and the five sale windows.
// StartTime zero means the sale has not been scheduled.
type SaleSchedule struct {
	StartTime  int64  `json:"startTime"`
	Slot3      Window `json:"slot3"`
	Slot2      Window `json:"slot2"`
	Slot1      Window `json:"slot1"`
	Redemption Window `json:"redemption"`
	P2Swap     Window `json:"p2swap"`
}

// Window returns the named window
func (s SaleSchedule) Window(name WindowName) (Window, error) {
	switch name {
	case WindowSlot3:
		return s.Slot3, nil
	case WindowSlot2:
		return s.Slot2, nil
	case WindowSlot1:
		return s.Slot1, nil
	case WindowRedemption:
		return s.Redemption, nil
	case WindowP2Swap:
		return s.P2Swap, nil
	default:
		return Window{}, ErrUnknownWindow
	}
}

// SetWindow replaces the named window
func (s *SaleSchedule) SetWindow(name WindowName, w Window) error {
	switch name {
	case WindowSlot3:
		s.Slot3 = w
	case WindowSlot2:
		s.Slot2 = w
	case WindowSlot1:
		s.Slot1 = w
	case WindowRedemption:
		s.Redemption = w
	case WindowP2Swap:
		s.P2Swap = w
	default:
		return ErrUnknownWindow
	}
	return nil
}
