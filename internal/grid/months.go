package grid

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"rangecal/internal/dateutil"
	"rangecal/internal/model"
)

// Months lists one descriptor per calendar month from min's month through
// max's month inclusive, labelled with layout. max is the last included
// instant, not an exclusive bound.
//
// The walk never runs past December of max's year.
func Months(min, max time.Time, layout string) ([]model.MonthDescriptor, error) {
	if max.Before(min) {
		return nil, fmt.Errorf("grid: max %s is before min %s", max, min)
	}

	// Enumerate in UTC: only the year and month of each instant are used, and
	// UTC has no skipped midnights.
	start := dateutil.FirstOfMonth(calendarUTC(min))
	until := dateutil.FirstOfMonth(calendarUTC(max.In(min.Location())))

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.MONTHLY,
		Dtstart:    start,
		Bymonthday: []int{1},
		Until:      until,
	})
	if err != nil {
		return nil, fmt.Errorf("grid: month rule: %w", err)
	}

	var months []model.MonthDescriptor
	for _, t := range r.All() {
		if t.Year() > until.Year() {
			break
		}
		months = append(months, model.NewMonthDescriptor(t, layout))
	}
	return months, nil
}

// calendarUTC carries t's calendar fields over to UTC.
func calendarUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
