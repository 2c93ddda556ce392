// Package schedule defines the four fixed workday slots and the transition
// each one applies. The slot set is closed: every slot is an enum variant
// carrying its own definition, so an unknown slot name cannot reach the
// runner.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Slot identifies one of the four daily checkpoints.
type Slot int

const (
	// SlotStart opens the working day at 08:00.
	SlotStart Slot = iota
	// SlotPause suspends tracking for the lunch break at 12:00.
	SlotPause
	// SlotResume restarts tracking after lunch at 13:00.
	SlotResume
	// SlotEnd closes the working day at 17:00.
	SlotEnd
)

// TimeSource says where a slot's target time comes from.
type TimeSource int

const (
	// TimeFixed always uses the slot's fallback time.
	TimeFixed TimeSource = iota
	// TimePlanStart reads the ticket's plan-start timestamp.
	TimePlanStart
	// TimePlanEnd reads the ticket's plan-end timestamp.
	TimePlanEnd
)

// Definition is the immutable behavior bundle for a slot.
type Definition struct {
	Slot           Slot
	Name           string
	FallbackTime   TimeOfDay
	FromStatus     string
	TransitionName string
	Description    string
	Source         TimeSource
}

var definitions = [4]Definition{
	{
		Slot:           SlotStart,
		Name:           "8AM",
		FallbackTime:   MustTimeOfDay(8, 0, 0),
		FromStatus:     "SUPPORT OPEN",
		TransitionName: "INPROGRESS SUPPORT",
		Description:    "Start work",
		Source:         TimePlanStart,
	},
	{
		Slot:           SlotPause,
		Name:           "12PM",
		FallbackTime:   MustTimeOfDay(12, 0, 0),
		FromStatus:     "SUPPORT INPROGRESS",
		TransitionName: "Hold Support",
		Description:    "Lunch break (pause)",
		Source:         TimeFixed,
	},
	{
		Slot:           SlotResume,
		Name:           "1PM",
		FallbackTime:   MustTimeOfDay(13, 0, 0),
		FromStatus:     "SUPPORT HOLD",
		TransitionName: "HOLD ke INPROGRESS SUPPORT",
		Description:    "Resume work",
		Source:         TimeFixed,
	},
	{
		Slot:           SlotEnd,
		Name:           "5PM",
		FallbackTime:   MustTimeOfDay(17, 0, 0),
		FromStatus:     "SUPPORT INPROGRESS",
		TransitionName: "Support Done",
		Description:    "End work",
		Source:         TimePlanEnd,
	},
}

// All returns the four slots in time order.
func All() []Slot {
	return []Slot{SlotStart, SlotPause, SlotResume, SlotEnd}
}

// String returns the slot's CLI name.
func (s Slot) String() string {
	return definitions[s].Name
}

// Parse maps a slot name (8AM, 12PM, 1PM, 5PM) to its Slot.
func Parse(name string) (Slot, error) {
	for _, s := range All() {
		if strings.EqualFold(definitions[s].Name, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown slot %q (must be one of 8AM, 12PM, 1PM, 5PM)", name)
}

// Detect picks the slot whose window the given instant falls in, matching
// the original auto-detection: before noon is the morning slot, then each
// later slot until end of day.
func Detect(now time.Time) Slot {
	switch hour := now.Hour(); {
	case hour < 12:
		return SlotStart
	case hour < 13:
		return SlotPause
	case hour < 17:
		return SlotResume
	default:
		return SlotEnd
	}
}
