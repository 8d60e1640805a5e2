package calendar

import (
	"time"

	"rangecal/internal/dateutil"
)

// State is the position of the range selection protocol.
type State int

const (
	// StateEmpty has no start.
	StateEmpty State = iota
	// StatePartialRange has a start and no end.
	StatePartialRange
	// StateCompleteRange has both endpoints.
	StateCompleteRange
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartialRange:
		return "partial"
	case StateCompleteRange:
		return "complete"
	default:
		return "unknown"
	}
}

// State reports the current selection state.
func (m *Model) State() State {
	switch {
	case m.selectedStart == nil:
		return StateEmpty
	case m.selectedEnd == nil:
		return StatePartialRange
	default:
		return StateCompleteRange
	}
}

// NotifyCellClicked is the single entry point for clicks coming from the
// rendering surface. It reports whether the click was accepted.
//
// Clicks outside the domain are ignored: no state change, no notification,
// no error. Otherwise:
//
//   - first click, or any click after a complete range, starts a new range
//   - the second click completes it; the earlier of the two days becomes the
//     start, whichever order they were clicked in
func (m *Model) NotifyCellClicked(date time.Time) (bool, error) {
	if !m.IsSelectable(date) {
		m.log.Debug("click ignored", "date", fmtDay(date))
		return false, nil
	}
	clicked := m.midnight(date)

	var start, end *time.Time
	if m.State() != StatePartialRange {
		start = &clicked
	} else {
		anchor := *m.selectedStart
		if clicked.Before(anchor) {
			start, end = &clicked, &anchor
		} else {
			start, end = &anchor, &clicked
		}
	}

	if err := m.selectRange(start, end); err != nil {
		return false, err
	}
	return true, nil
}

// SelectRange replaces the selection programmatically. start may be nil only
// when end is nil too, which clears the selection. Validation runs before
// anything changes; the listener fires as for clicks.
//
// Clearing fires no listener event, not even OnRangeStarted.
func (m *Model) SelectRange(start, end *time.Time) error {
	if len(m.months) == 0 {
		return m.notInitialized()
	}
	return m.selectRange(m.midnightPtr(start), m.midnightPtr(end))
}

// selectRange expects midnight-truncated endpoints.
func (m *Model) selectRange(start, end *time.Time) error {
	if err := validateRange(start, end, m.domainMin, m.domainMax); err != nil {
		return err
	}

	for _, cell := range m.selectedCells {
		cell.IsSelected = false
	}
	m.selectedCells = nil

	m.selectCellsInRange(start, end)

	m.selectedStart = copyTime(start)
	m.selectedEnd = copyTime(end)

	m.log.Debug("selection changed",
		"state", m.State(),
		"start", optDay(start),
		"end", optDay(end),
		"selected_cells", len(m.selectedCells),
	)

	m.notifyDataChanged()

	if m.listener != nil && start != nil {
		if end == nil {
			m.listener.OnRangeStarted()
		} else {
			m.listener.OnRangeCompleted()
		}
	}
	return nil
}

// selectCellsInRange visits current-month cells in date order and stops at
// the first miss after a hit: months are chronological and the range is
// contiguous, so nothing selected can follow.
func (m *Model) selectCellsInRange(start, end *time.Time) {
	selecting := false
	for _, matrix := range m.cells {
		for _, week := range matrix {
			for _, cell := range week {
				if !cell.IsCurrentMonth {
					continue
				}
				if dateutil.BetweenWith(cell.Date, start, end, true, true) {
					selecting = true
					cell.IsSelected = true
					m.selectedCells = append(m.selectedCells, cell)
				} else if selecting {
					return
				}
			}
		}
	}
}

func optDay(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmtDay(*t)
}
