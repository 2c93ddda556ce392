package schedule

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schedule is the immutable set of four slot definitions handed to the
// runner and dispatcher at construction time.
type Schedule struct {
	defs [4]Definition
}

// Default returns the canonical schedule.
func Default() Schedule {
	return Schedule{defs: definitions}
}

// Definition returns the behavior bundle for a slot.
func (s Schedule) Definition(slot Slot) Definition {
	return s.defs[slot]
}

// Validate enforces the slot-ordering invariant: fallback times strictly
// increase across the four slots.
func (s Schedule) Validate() error {
	for i := 1; i < len(s.defs); i++ {
		prev, cur := s.defs[i-1], s.defs[i]
		if !prev.FallbackTime.Before(cur.FallbackTime) {
			return fmt.Errorf("slot %s (%s) must come after %s (%s)",
				cur.Name, cur.FallbackTime, prev.Name, prev.FallbackTime)
		}
	}
	return nil
}

// slotOverride is one entry in the override file. Zero-valued fields keep
// the canonical definition.
type slotOverride struct {
	Time       *TimeOfDay `yaml:"time"`
	FromStatus string     `yaml:"from_status"`
	Transition string     `yaml:"transition"`
}

type overrideFile struct {
	Slots map[string]slotOverride `yaml:"slots"`
}

// LoadFile applies a YAML override file on top of the default schedule.
// Unknown slot names and schedules that break the ordering invariant are
// rejected.
func LoadFile(path string) (Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schedule{}, fmt.Errorf("read schedule file: %w", err)
	}

	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Schedule{}, fmt.Errorf("parse schedule file: %w", err)
	}

	sched := Default()
	for name, ov := range file.Slots {
		slot, err := Parse(name)
		if err != nil {
			return Schedule{}, fmt.Errorf("schedule file: %w", err)
		}
		def := sched.defs[slot]
		if ov.Time != nil {
			def.FallbackTime = *ov.Time
		}
		if ov.FromStatus != "" {
			def.FromStatus = ov.FromStatus
		}
		if ov.Transition != "" {
			def.TransitionName = ov.Transition
		}
		sched.defs[slot] = def
	}

	if err := sched.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("schedule file: %w", err)
	}
	return sched, nil
}
