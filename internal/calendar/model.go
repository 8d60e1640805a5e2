// Package calendar owns the month list, the parallel cell matrices, the
// domain bounds and the current selection, and runs the two-click range
// selection protocol against them.
//
// A Model is not safe for concurrent use. Hosts that call it from more than
// one goroutine serialize access themselves.
package calendar

import (
	"fmt"
	"time"

	"rangecal/internal/dateutil"
	"rangecal/internal/grid"
	appLog "rangecal/internal/log"
	"rangecal/internal/model"
)

const defaultLabelLayout = "January 2006"

// Options configures a Model.
type Options struct {
	// WeekStart is the first column of every week row. Defaults to Sunday.
	WeekStart time.Weekday
	// Location is the calendar-local zone used for midnight truncation.
	// Defaults to time.Local.
	Location *time.Location
	// LabelLayout formats month labels. Defaults to "January 2006".
	LabelLayout string
	// Now supplies "today". Defaults to time.Now.
	Now func() time.Time
}

// Layout is the grid handed to the rendering surface.
type Layout struct {
	Months   []model.MonthDescriptor
	Cells    []model.Matrix
	Weekdays []string
}

// Model is the calendar model.
type Model struct {
	opts    Options
	builder grid.Builder
	log     *appLog.Logger

	months []model.MonthDescriptor
	cells  []model.Matrix

	// domainMax is the last included instant: the exclusive bound minus one
	// minute, so an exclusive bound on a month start does not pull that month
	// into the view.
	domainMin time.Time
	domainMax time.Time
	today     time.Time

	selectedStart *time.Time
	selectedEnd   *time.Time
	selectedCells []*model.MonthCell

	observer DataObserver
	listener Listener
}

// New returns an empty Model. Initialize must run before the layout can be
// read.
func New(opts Options) *Model {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LabelLayout == "" {
		opts.LabelLayout = defaultLabelLayout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Model{
		opts: opts,
		builder: grid.Builder{
			WeekStart: opts.WeekStart,
			Location:  opts.Location,
		},
		log: appLog.Named("calendar"),
	}
}

// SetObserver registers the rendering surface.
func (m *Model) SetObserver(o DataObserver) {
	m.observer = o
}

// SetListener registers the selection listener. Pass nil to remove it.
func (m *Model) SetListener(l Listener) {
	m.listener = l
}

// InitializeDomain is Initialize without an initial selection.
func (m *Model) InitializeDomain(domainMin, domainMax time.Time) error {
	return m.Initialize(nil, nil, domainMin, domainMax)
}

// Initialize rebuilds the whole model for the domain [domainMin, domainMax)
// with an optional initial selection. Time of day is ignored everywhere: with
// domainMin 2012-11-16 17:15 and domainMax 2013-11-16 04:30 the first
// selectable day is 2012-11-16 and the last is 2013-11-15.
//
// All input is validated before anything is mutated; on error the model keeps
// its previous state.
func (m *Model) Initialize(selStart, selEnd *time.Time, domainMin, domainMax time.Time) error {
	if domainMin.IsZero() || domainMax.IsZero() {
		return invalidRange("min/max dates must be set")
	}
	if !domainMin.Before(domainMax) {
		return invalidRange("min date %s must be before max date %s", fmtDay(domainMin), fmtDay(domainMax))
	}

	min := m.midnight(domainMin)
	maxExclusive := m.midnight(domainMax)
	if !min.Before(maxExclusive) {
		return invalidRange("domain [%s, %s) contains no day", fmtDay(min), fmtDay(maxExclusive))
	}
	max := maxExclusive.Add(-time.Minute)

	start, end := m.midnightPtr(selStart), m.midnightPtr(selEnd)
	if err := validateRange(start, end, min, max); err != nil {
		return err
	}

	months, err := grid.Months(min, max, m.opts.LabelLayout)
	if err != nil {
		return invalidRange("%v", err)
	}

	today := m.midnight(m.opts.Now())
	cells, selected := m.build(months, start, end, min, max, today)

	m.months = months
	m.cells = cells
	m.selectedCells = selected
	m.domainMin = min
	m.domainMax = max
	m.today = today
	m.selectedStart = start
	m.selectedEnd = end

	m.log.Info("calendar initialized",
		"min", fmtDay(min),
		"max_exclusive", fmtDay(maxExclusive),
		"months", len(months),
		"selected_cells", len(selected),
	)
	m.notifyDataChanged()
	return nil
}

// SetToday moves the today marker to t's calendar day and rebuilds the
// matrices. The selection is kept.
func (m *Model) SetToday(t time.Time) error {
	if len(m.months) == 0 {
		return m.notInitialized()
	}
	today := m.midnight(t)
	if today.Equal(m.today) {
		return nil
	}
	m.today = today
	m.cells, m.selectedCells = m.build(m.months, m.selectedStart, m.selectedEnd, m.domainMin, m.domainMax, today)
	m.log.Debug("today moved", "today", fmtDay(today))
	m.notifyDataChanged()
	return nil
}

func (m *Model) build(months []model.MonthDescriptor, start, end *time.Time, min, max, today time.Time) ([]model.Matrix, []*model.MonthCell) {
	cells := make([]model.Matrix, 0, len(months))
	var selected []*model.MonthCell
	for _, month := range months {
		m.log.Debug("adding month", "month", month)
		matrix, sel := m.builder.Build(month, grid.Bounds{
			SelStart:  start,
			SelEnd:    end,
			DomainMin: min,
			DomainMax: max,
			Today:     today,
		})
		cells = append(cells, matrix)
		selected = append(selected, sel...)
	}
	return cells, selected
}

// Layout returns the grid for the rendering surface. It fails with
// ErrIllegalState until Initialize has produced at least one month.
func (m *Model) Layout() (Layout, error) {
	if len(m.months) == 0 {
		return Layout{}, m.notInitialized()
	}
	return Layout{
		Months:   m.months,
		Cells:    m.cells,
		Weekdays: grid.WeekdayLabels(m.opts.WeekStart),
	}, nil
}

// Months returns the month descriptors; nil before Initialize.
func (m *Model) Months() []model.MonthDescriptor {
	return m.months
}

// Cells returns the matrices parallel to Months; nil before Initialize.
func (m *Model) Cells() []model.Matrix {
	return m.cells
}

// SelectedCells returns the cells currently flagged as selected, in date
// order.
func (m *Model) SelectedCells() []*model.MonthCell {
	return m.selectedCells
}

// SelectedStart returns the selection start, or nil when unset.
func (m *Model) SelectedStart() *time.Time {
	return copyTime(m.selectedStart)
}

// SelectedEnd returns the selection end, or nil when unset.
func (m *Model) SelectedEnd() *time.Time {
	return copyTime(m.selectedEnd)
}

// Domain returns the first selectable day and the exclusive upper bound.
func (m *Model) Domain() (min, maxExclusive time.Time, err error) {
	if len(m.months) == 0 {
		return time.Time{}, time.Time{}, m.notInitialized()
	}
	return m.domainMin, m.domainMax.Add(time.Minute), nil
}

// CellFor finds the current-month cell for date's calendar day.
func (m *Model) CellFor(date time.Time) (*model.MonthCell, bool) {
	date = m.midnight(date)
	for i, month := range m.months {
		if month.Year != date.Year() || month.Month != date.Month() {
			continue
		}
		for _, cell := range m.cells[i].Cells() {
			if cell.IsCurrentMonth && dateutil.SameDay(cell.Date, date) {
				return cell, true
			}
		}
	}
	return nil, false
}

// IsSelectable reports whether date lies inside the domain.
func (m *Model) IsSelectable(date time.Time) bool {
	if len(m.months) == 0 {
		return false
	}
	return dateutil.Between(m.midnight(date), &m.domainMin, &m.domainMax)
}

func (m *Model) notInitialized() error {
	return fmt.Errorf("calendar: no month to display, Initialize has not run: %w", ErrIllegalState)
}

func (m *Model) notifyDataChanged() {
	if m.observer != nil {
		m.observer.OnDataChanged()
	}
}

func (m *Model) midnight(t time.Time) time.Time {
	return dateutil.TruncateToMidnight(t.In(m.opts.Location))
}

func (m *Model) midnightPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := m.midnight(*t)
	return &v
}

// validateRange checks a selection against the domain [min, max].
func validateRange(start, end *time.Time, min, max time.Time) error {
	if start == nil && end != nil {
		return invalidRange("no end date without a start date")
	}
	if start != nil && !dateutil.Between(*start, &min, &max) {
		return invalidRange("start date %s out of range", fmtDay(*start))
	}
	if end != nil && !dateutil.Between(*end, &min, &max) {
		return invalidRange("end date %s out of range", fmtDay(*end))
	}
	if end != nil && start.After(*end) {
		return invalidRange("start date %s must not be after end date %s", fmtDay(*start), fmtDay(*end))
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func fmtDay(t time.Time) string {
	return t.Format("2006-01-02")
}
