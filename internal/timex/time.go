// Package timex holds calendar and timestamp helpers.
package timex

import (
	"fmt"
	"time"
)

// DefaultTimezone is used by FromJSTimestampIn when no zone is given.
const DefaultTimezone = "Asia/Shanghai"

// DayRange returns the first and last microsecond of d's calendar day in d's
// location.
func DayRange(d time.Time) (start, end time.Time) {
	y, m, day := d.Date()
	start = time.Date(y, m, day, 0, 0, 0, 0, d.Location())
	end = time.Date(y, m, day, 23, 59, 59, 999999000, d.Location())
	return start, end
}

// FromJSTimestamp converts JavaScript milliseconds since the epoch to a time
// in loc, dropping the sub-second part. A nil loc means time.Local.
func FromJSTimestamp(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(ms/1000, 0).In(loc)
}

// FromJSTimestampIn is FromJSTimestamp with a named IANA zone.
func FromJSTimestampIn(ms int64, tz string) (time.Time, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	return FromJSTimestamp(ms, loc), nil
}
