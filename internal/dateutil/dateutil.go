// Package dateutil holds the calendar-day predicates shared by the grid
// builder and the range selector. All values are compared as instants; callers
// truncate to midnight first when day granularity is wanted.
package dateutil

import "time"

// DayLayout is the YYYY-MM-DD form used for days on the wire and on disk.
const DayLayout = "2006-01-02"

// DayStart returns the first instant of the calendar day (y, m, d) in loc.
// Out-of-range m and d normalize as in time.Date.
//
// time.Date resolves a skipped local midnight to the previous evening; zones
// such as America/Santiago start DST at 00:00. DayStart steps forward until it
// is back on the requested day, so the result always carries that day's date.
func DayStart(y int, m time.Month, d int, loc *time.Location) time.Time {
	y, m, d = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Date()
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for dayBefore(t, y, m, d) {
		t = t.Add(time.Hour)
	}
	return t
}

// dayBefore reports whether t's calendar day is earlier than (y, m, d).
func dayBefore(t time.Time, y int, m time.Month, d int) bool {
	ty, tm, td := t.Date()
	if ty != y {
		return ty < y
	}
	if tm != m {
		return tm < m
	}
	return td < d
}

// ParseDay parses a DayLayout string as the start of that day in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DayStart(t.Year(), t.Month(), t.Day(), loc), nil
}

// TruncateToMidnight returns the start of t's calendar day in t's own
// location. That is midnight except on days whose midnight is skipped.
func TruncateToMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return DayStart(y, m, d, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day. Each value is
// read in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Between tests date against [min, max) and is the form used for domain
// checks.
func Between(date time.Time, min, max *time.Time) bool {
	return BetweenWith(date, min, max, true, false)
}

// BetweenWith is the three-way range test.
//
//   - min absent: never a match.
//   - max absent: a match only when includeMin is set and date equals min.
//     This is the single-day case of a range whose end is not chosen yet.
//   - both present: min/max are each inclusive or exclusive per the flags.
func BetweenWith(date time.Time, min, max *time.Time, includeMin, includeMax bool) bool {
	if min == nil {
		return false
	}
	if max == nil {
		return includeMin && date.Equal(*min)
	}

	lowerOK := date.After(*min) || (includeMin && date.Equal(*min))
	upperOK := date.Before(*max) || (includeMax && date.Equal(*max))
	return lowerOK && upperOK
}

// Ptr returns a pointer to a copy of t. Handy for the optional bounds above.
func Ptr(t time.Time) *time.Time {
	return &t
}

// FirstOfMonth returns the start of the first day of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return DayStart(t.Year(), t.Month(), 1, t.Location())
}

// MonthAfter reports whether (y1, m1) is strictly later than (y2, m2) in
// calendar order.
func MonthAfter(y1 int, m1 time.Month, y2 int, m2 time.Month) bool {
	if y1 != y2 {
		return y1 > y2
	}
	return m1 > m2
}
