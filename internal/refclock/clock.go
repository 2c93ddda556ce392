// Package refclock supplies the reference-timezone clock every time
// comparison in the automation goes through. The reference zone is a fixed
// UTC offset with no daylight-saving rules, so "today" and time-of-day math
// behave identically whether the host clock runs UTC or the target offset.
package refclock

import (
	"fmt"
	"time"
)

// DefaultOffsetHours is the default reference offset (WIB, UTC+7).
const DefaultOffsetHours = 7

// Clock yields the current instant in the reference timezone.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// System is the wall-clock implementation of Clock.
type System struct {
	loc *time.Location
}

// NewSystem builds a system clock pinned to a fixed UTC offset.
func NewSystem(offsetHours int) *System {
	return &System{loc: FixedZone(offsetHours)}
}

// Now returns the current time converted into the reference zone.
func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

// Location returns the reference zone.
func (s *System) Location() *time.Location {
	return s.loc
}

// FixedZone constructs the fixed-offset reference location.
func FixedZone(offsetHours int) *time.Location {
	name := "WIB"
	if offsetHours != DefaultOffsetHours {
		name = fmt.Sprintf("UTC%+d", offsetHours)
	}
	return time.FixedZone(name, offsetHours*3600)
}

// TimestampFormat renders timestamps with microsecond precision for
// before/after logging.
const TimestampFormat = "2006-01-02 15:04:05.000000"

// Timestamp formats t in the audit-trail format.
func Timestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// SameDay reports whether a and b fall on the same calendar day once both
// are viewed in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
