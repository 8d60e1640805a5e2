// Package grid turns a calendar month into a week-partitioned cell matrix.
//
// A month grid always starts on the configured week start on or before the
// 1st, which may be a day of the previous month, and keeps emitting full
// seven-day rows until the row cursor has moved past the target month. A row
// that begins inside the month but runs into the next one is emitted in full,
// so a month yields between 4 and 6 rows.
package grid

import (
	"time"

	"rangecal/internal/dateutil"
	appLog "rangecal/internal/log"
	"rangecal/internal/model"
)

var logger = appLog.Named("grid")

// Builder materializes month matrices. The zero value builds Sunday-first
// weeks in time.Local.
type Builder struct {
	// WeekStart is the weekday placed in the first column.
	WeekStart time.Weekday
	// Location is the calendar-local zone every cell date is expressed in.
	Location *time.Location
}

// Bounds carries the three independently truncated ranges a cell is tested
// against.
type Bounds struct {
	// SelStart and SelEnd are the current selection; both may be nil. The
	// selection is tested inclusive on both ends.
	SelStart *time.Time
	SelEnd   *time.Time

	// DomainMin is inclusive, DomainMax exclusive.
	DomainMin time.Time
	DomainMax time.Time

	Today time.Time
}

func (b Builder) location() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

// Build returns the week matrix for month together with the cells that came
// out selected, in date order.
func (b Builder) Build(month model.MonthDescriptor, bounds Bounds) (model.Matrix, []*model.MonthCell) {
	var selected []*model.MonthCell

	matrix := b.walk(month, func(date time.Time, currentMonth bool) *model.MonthCell {
		cell := &model.MonthCell{
			Date:           date,
			IsCurrentMonth: currentMonth,
			Value:          date.Day(),
		}
		if currentMonth {
			cell.IsSelected = dateutil.BetweenWith(date, bounds.SelStart, bounds.SelEnd, true, true)
			cell.IsSelectable = dateutil.Between(date, &bounds.DomainMin, &bounds.DomainMax)
			cell.IsToday = dateutil.SameDay(date, bounds.Today)
		}
		if cell.IsSelected {
			selected = append(selected, cell)
		}
		return cell
	})

	return matrix, selected
}

// BuildStatic returns a read-only matrix for month: nothing is selectable,
// selected or flagged as today.
func (b Builder) BuildStatic(month model.MonthDescriptor) model.Matrix {
	return b.walk(month, func(date time.Time, currentMonth bool) *model.MonthCell {
		return &model.MonthCell{
			Date:           date,
			IsCurrentMonth: currentMonth,
			Value:          date.Day(),
		}
	})
}

func (b Builder) walk(month model.MonthDescriptor, newCell func(date time.Time, currentMonth bool) *model.MonthCell) model.Matrix {
	loc := b.location()

	first := dateutil.DayStart(month.Year, month.Month, 1, loc)
	back := (int(first.Weekday()) - int(b.WeekStart) + 7) % 7

	// Cell dates are rebuilt from the row origin's calendar fields rather than
	// by adding 24h; DayStart keeps each cell on its own day across DST.
	y, m, d := month.Year, month.Month, 1-back

	matrix := make(model.Matrix, 0, 6)
	offset := 0
	for {
		cursor := dateutil.DayStart(y, m, d+offset, loc)
		if dateutil.MonthAfter(cursor.Year(), cursor.Month(), month.Year, month.Month) {
			break
		}

		logger.Debug("building week row", "month", month.Label, "start", cursor.Format("2006-01-02"))

		var week model.Week
		for c := 0; c < 7; c++ {
			date := dateutil.DayStart(y, m, d+offset, loc)
			currentMonth := date.Year() == month.Year && date.Month() == month.Month
			week[c] = newCell(date, currentMonth)
			offset++
		}
		matrix = append(matrix, week)
	}

	return matrix
}

// WeekdayLabels returns the short weekday names for the header row, starting
// at weekStart.
func WeekdayLabels(weekStart time.Weekday) []string {
	labels := make([]string, 7)
	for i := range labels {
		labels[i] = time.Weekday((int(weekStart) + i) % 7).String()[:3]
	}
	return labels
}
