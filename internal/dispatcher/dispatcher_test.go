package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/okkyPratama/jira-task-automation/internal/executor"
	"github.com/okkyPratama/jira-task-automation/internal/refclock"
	"github.com/okkyPratama/jira-task-automation/internal/runner"
	"github.com/okkyPratama/jira-task-automation/internal/schedule"
)

type fakeRunner struct {
	slots    []schedule.Slot
	outcomes []executor.Outcome
	err      error
}

func (f *fakeRunner) RunSlot(ctx context.Context, slot schedule.Slot, opts runner.Options) ([]executor.Outcome, error) {
	f.slots = append(f.slots, slot)
	return f.outcomes, f.err
}

type fakeLocker struct {
	acquired bool
	err      error
	calls    int
}

func (f *fakeLocker) Acquire(ctx context.Context, slotName string) (bool, error) {
	f.calls++
	return f.acquired, f.err
}

// 2026-02-23 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2026, 2, 23, hour, minute, 0, 0, refclock.FixedZone(7))
}

func newTestDispatcher(r SlotRunner, lock SlotLocker, now time.Time) (*Dispatcher, *refclock.Fake) {
	fake := refclock.NewFake(now)
	return New(r, lock, fake, schedule.Default(), time.Minute, zerolog.Nop()), fake
}

func TestNextWake(t *testing.T) {
	d, _ := newTestDispatcher(&fakeRunner{}, nil, monday(6, 0))

	tests := []struct {
		name     string
		now      time.Time
		wantSlot schedule.Slot
		wantWake time.Time
	}{
		{
			name:     "before first slot",
			now:      monday(6, 0),
			wantSlot: schedule.SlotStart,
			wantWake: monday(7, 59),
		},
		{
			name:     "between morning and lunch",
			now:      monday(9, 30),
			wantSlot: schedule.SlotPause,
			wantWake: monday(11, 59),
		},
		{
			name:     "during lunch",
			now:      monday(12, 30),
			wantSlot: schedule.SlotResume,
			wantWake: monday(12, 59),
		},
		{
			name:     "after last slot rolls to tomorrow",
			now:      monday(18, 0),
			wantSlot: schedule.SlotStart,
			wantWake: monday(7, 59).AddDate(0, 0, 1),
		},
		{
			name:     "exactly at a wake-up point moves to the next slot",
			now:      monday(7, 59),
			wantSlot: schedule.SlotPause,
			wantWake: monday(11, 59),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, wake := d.NextWake(tt.now)
			if slot != tt.wantSlot || !wake.Equal(tt.wantWake) {
				t.Errorf("NextWake(%v) = (%v, %v), want (%v, %v)",
					tt.now, slot, wake, tt.wantSlot, tt.wantWake)
			}
		})
	}
}

func TestFireRunsSlotAndRecordsStatus(t *testing.T) {
	r := &fakeRunner{outcomes: []executor.Outcome{
		{TicketKey: "SUP-101", Result: executor.ResultSuccess},
	}}
	d, _ := newTestDispatcher(r, nil, monday(7, 59))

	d.fire(context.Background(), schedule.SlotStart)

	if len(r.slots) != 1 || r.slots[0] != schedule.SlotStart {
		t.Fatalf("ran slots %v", r.slots)
	}
	status := d.Snapshot()
	if status.LastSlot != "8AM" {
		t.Errorf("LastSlot = %q", status.LastSlot)
	}
	if len(status.LastOutcomes) != 1 || status.LastOutcomes[0].TicketKey != "SUP-101" {
		t.Errorf("LastOutcomes = %+v", status.LastOutcomes)
	}
}

func TestFireSkipsWeekend(t *testing.T) {
	r := &fakeRunner{}
	saturday := time.Date(2026, 2, 21, 7, 59, 0, 0, refclock.FixedZone(7))
	d, _ := newTestDispatcher(r, nil, saturday)

	d.fire(context.Background(), schedule.SlotStart)

	if len(r.slots) != 0 {
		t.Errorf("weekend must not run slots: %v", r.slots)
	}
}

func TestFireSkipsWhenLockHeldElsewhere(t *testing.T) {
	r := &fakeRunner{}
	lock := &fakeLocker{acquired: false}
	d, _ := newTestDispatcher(r, lock, monday(7, 59))

	d.fire(context.Background(), schedule.SlotStart)

	if lock.calls != 1 {
		t.Fatalf("lock calls = %d", lock.calls)
	}
	if len(r.slots) != 0 {
		t.Errorf("held lease must skip the slot: %v", r.slots)
	}
}

func TestFireRunsWhenLockErrors(t *testing.T) {
	r := &fakeRunner{}
	lock := &fakeLocker{err: errors.New("redis: connection refused")}
	d, _ := newTestDispatcher(r, lock, monday(7, 59))

	d.fire(context.Background(), schedule.SlotStart)

	if len(r.slots) != 1 {
		t.Errorf("lock trouble must fail open: ran %v", r.slots)
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	d, _ := newTestDispatcher(&fakeRunner{}, nil, monday(6, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}

func TestIsWeekend(t *testing.T) {
	wib := refclock.FixedZone(7)
	tests := []struct {
		day  int
		want bool
	}{
		{day: 20, want: false}, // Friday
		{day: 21, want: true},  // Saturday
		{day: 22, want: true},  // Sunday
		{day: 23, want: false}, // Monday
	}
	for _, tt := range tests {
		at := time.Date(2026, 2, tt.day, 8, 0, 0, 0, wib)
		if got := IsWeekend(at); got != tt.want {
			t.Errorf("IsWeekend(%v %v) = %v, want %v", at.Weekday(), at, got, tt.want)
		}
	}
}
