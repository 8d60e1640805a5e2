package model

import (
	"fmt"
	"time"
)

// MonthDescriptor identifies one calendar month in the display domain.
// It is created once per month when the domain is initialized and is never
// mutated afterwards.
type MonthDescriptor struct {
	Month time.Month `json:"month"`
	Year  int        `json:"year"`
	// Label is the display title, formatted once at construction.
	Label string `json:"label"`
}

// NewMonthDescriptor builds a descriptor for the month containing t, using
// layout (a Go time layout such as "January 2006") for the label.
func NewMonthDescriptor(t time.Time, layout string) MonthDescriptor {
	y, m, _ := t.Date()
	return MonthDescriptor{
		Month: m,
		Year:  y,
		Label: time.Date(y, m, 1, 12, 0, 0, 0, t.Location()).Format(layout),
	}
}

// String is used by debug logging.
func (m MonthDescriptor) String() string {
	return fmt.Sprintf("MonthDescriptor{label=%s, month=%s, year=%d}", m.Label, m.Month, m.Year)
}

// MonthCell is one grid cell. Fill cells (IsCurrentMonth == false) belong to
// an adjacent month and are never selectable, selected or today.
//
// Only IsSelected changes after construction.
type MonthCell struct {
	Date           time.Time `json:"date"`
	IsCurrentMonth bool      `json:"current_month"`
	IsSelectable   bool      `json:"selectable"`
	IsSelected     bool      `json:"selected"`
	IsToday        bool      `json:"today"`
	// Value is the day of month shown in the cell.
	Value int `json:"value"`
}

func (c *MonthCell) String() string {
	return fmt.Sprintf("MonthCell{date=%s, value=%d, current=%t, selectable=%t, selected=%t, today=%t}",
		c.Date.Format("2006-01-02"), c.Value, c.IsCurrentMonth, c.IsSelectable, c.IsSelected, c.IsToday)
}

// Week is a single row of seven cells starting on the configured week start.
type Week [7]*MonthCell

// Matrix is the week-partition of one month: 4 to 6 weeks.
type Matrix []Week

// Cells returns all cells of the matrix in date order.
func (m Matrix) Cells() []*MonthCell {
	out := make([]*MonthCell, 0, len(m)*7)
	for _, week := range m {
		out = append(out, week[:]...)
	}
	return out
}
