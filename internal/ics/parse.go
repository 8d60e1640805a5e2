package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"rangecal/internal/dateutil"
	appLog "rangecal/internal/log"
)

// Range is a selection read from an iCalendar payload. End is inclusive.
type Range struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
}

// ParseRange reads the first VEVENT of body as a day range in loc.
//
//   - All-day events (DTSTART with VALUE=DATE, or no 'T' in the value) use
//     the exclusive DTEND of RFC 5545, so the last selected day is DTEND-1.
//   - Timed events cover every day they touch; an end on midnight does not
//     pull in the following day.
//   - A missing DTEND selects the start day only.
func ParseRange(body []byte, loc *time.Location) (Range, error) {
	if len(body) == 0 {
		return Range{}, errors.New("ics: empty body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return Range{}, fmt.Errorf("ics: parse: %w", err)
	}

	events := cal.Events()
	if len(events) == 0 {
		return Range{}, errors.New("ics: no VEVENT in calendar")
	}
	if len(events) > 1 {
		appLog.Info("ics: more than one VEVENT, using the first", "count", len(events))
	}
	return parseVEvent(events[0], loc)
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (Range, error) {
	var out Range

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("ics: VEVENT without DTSTART")
	}
	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	allDay := isAllDay(dtStart)

	end := start
	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		if end, err = ve.GetEndAt(); err != nil {
			return out, err
		}
		switch {
		case allDay:
			end = end.AddDate(0, 0, -1)
		case end.After(start):
			// Exclusive end instant: midnight belongs to the previous day.
			end = end.Add(-time.Nanosecond)
		}
	}

	out.Start = dayIn(start, loc, allDay)
	out.End = dayIn(end, loc, allDay)
	if out.End.Before(out.Start) {
		out.End = out.Start
	}
	return out, nil
}

func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// dayIn maps t to midnight of its calendar day in loc. All-day values are
// floating dates, so their fields are kept as-is instead of converted.
func dayIn(t time.Time, loc *time.Location, allDay bool) time.Time {
	if !allDay {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return dateutil.DayStart(y, m, d, loc)
}
