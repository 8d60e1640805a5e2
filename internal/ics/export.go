package ics

import (
	"errors"
	"time"

	ical "github.com/arran4/golang-ical"
)

const productID = "-//rangecal//Range Calendar//EN"

// ExportOptions controls the exported VEVENT.
type ExportOptions struct {
	// UID identifies the event. Derived from the range when empty.
	UID string
	// Summary is the event title. Defaults to "Selected range".
	Summary string
	// Now stamps DTSTAMP. Defaults to time.Now.
	Now func() time.Time
}

// ExportRange serializes the inclusive day range [start, end] as a calendar
// with one all-day VEVENT. end may equal start for a single day.
func ExportRange(start, end time.Time, opts ExportOptions) ([]byte, error) {
	if start.IsZero() || end.IsZero() {
		return nil, errors.New("ics: range endpoints must be set")
	}
	if end.Before(start) {
		return nil, errors.New("ics: range end is before start")
	}
	if opts.Summary == "" {
		opts.Summary = "Selected range"
	}
	if opts.UID == "" {
		opts.UID = start.Format("20060102") + "-" + end.Format("20060102") + "@rangecal"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	ev := cal.AddEvent(opts.UID)
	ev.SetDtStampTime(now().UTC())
	ev.SetSummary(opts.Summary)
	ev.SetAllDayStartAt(start)
	// DTEND of an all-day event is exclusive.
	ev.SetAllDayEndAt(end.AddDate(0, 0, 1))

	return []byte(cal.Serialize()), nil
}
