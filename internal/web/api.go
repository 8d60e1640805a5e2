package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rangecal/internal/calendar"
	"rangecal/internal/config"
	"rangecal/internal/dateutil"
	"rangecal/internal/ics"
	"rangecal/internal/model"
)

// monthDTO is one month of /api/calendar.
type monthDTO struct {
	model.MonthDescriptor
	Weeks model.Matrix `json:"weeks"`
}

// calendarResponse is the JSON response shape for /api/calendar.
type calendarResponse struct {
	Months        []monthDTO `json:"months"`
	Weekdays      []string   `json:"weekdays"`
	SelectedStart *string    `json:"selected_start"`
	SelectedEnd   *string    `json:"selected_end"`
	SelectedDays  int        `json:"selected_days"`
	State         string     `json:"state"`
}

// selectionResponse answers /api/click and /api/selection.
type selectionResponse struct {
	Accepted      bool    `json:"accepted"`
	SelectedStart *string `json:"selected_start"`
	SelectedEnd   *string `json:"selected_end"`
	State         string  `json:"state"`
}

// selectionRequest is the body of POST /api/selection. Both null clears.
type selectionRequest struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// handleCalendar returns the whole grid. The encoded body is cached until the
// model reports a change.
func (s *Server) handleCalendar(w http.ResponseWriter, _ *http.Request) {
	var body []byte
	err := s.Do(func(m *calendar.Model) error {
		if s.calendarJSON != nil {
			body = s.calendarJSON
			return nil
		}
		layout, err := m.Layout()
		if err != nil {
			return err
		}
		resp := calendarResponse{
			Months:        make([]monthDTO, len(layout.Months)),
			Weekdays:      layout.Weekdays,
			SelectedStart: formatDay(m.SelectedStart()),
			SelectedEnd:   formatDay(m.SelectedEnd()),
			SelectedDays:  len(m.SelectedCells()),
			State:         m.State().String(),
		}
		for i, month := range layout.Months {
			resp.Months[i] = monthDTO{MonthDescriptor: month, Weeks: layout.Cells[i]}
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(resp); err != nil {
			return err
		}
		s.calendarJSON = buf.Bytes()
		body = s.calendarJSON
		return nil
	})
	if err != nil {
		s.writeModelError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleClick forwards one clicked day to the model.
//
// POST /api/click?date=YYYY-MM-DD
func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	date, err := dateutil.ParseDay(r.URL.Query().Get("date"), s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	var resp selectionResponse
	err = s.Do(func(m *calendar.Model) error {
		accepted, err := m.NotifyCellClicked(date)
		if err != nil {
			return err
		}
		resp = selectionSnapshot(m, accepted)
		return nil
	})
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSelection replaces the selection.
//
// POST /api/selection {"start":"YYYY-MM-DD","end":"YYYY-MM-DD"}
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, err := parseDay(req.Start, s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be YYYY-MM-DD")
		return
	}
	end, err := parseDay(req.End, s.location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be YYYY-MM-DD")
		return
	}

	var resp selectionResponse
	err = s.Do(func(m *calendar.Model) error {
		if err := m.SelectRange(start, end); err != nil {
			return err
		}
		resp = selectionSnapshot(m, true)
		return nil
	})
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSelectionICS downloads the selection as a single all-day event. A
// partial selection exports its start day alone.
func (s *Server) handleSelectionICS(w http.ResponseWriter, _ *http.Request) {
	var start, end *time.Time
	err := s.Do(func(m *calendar.Model) error {
		start, end = m.SelectedStart(), m.SelectedEnd()
		return nil
	})
	if err != nil {
		s.writeModelError(w, err)
		return
	}
	if start == nil {
		writeError(w, http.StatusNotFound, "no selection")
		return
	}
	if end == nil {
		end = start
	}

	body, err := ics.ExportRange(*start, *end, ics.ExportOptions{})
	if err != nil {
		logger.Error("selection export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export selection")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="selection.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// writeModelError maps engine errors onto status codes.
func (s *Server) writeModelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, calendar.ErrIllegalState), errors.Is(err, errNoModel):
		writeError(w, http.StatusServiceUnavailable, "calendar not initialized")
	default:
		logger.Error("request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) location() *time.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loc
}

func selectionSnapshot(m *calendar.Model, accepted bool) selectionResponse {
	return selectionResponse{
		Accepted:      accepted,
		SelectedStart: formatDay(m.SelectedStart()),
		SelectedEnd:   formatDay(m.SelectedEnd()),
		State:         m.State().String(),
	}
}

func formatDay(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(config.DateLayout)
	return &s
}

func parseDay(v *string, loc *time.Location) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := dateutil.ParseDay(*v, loc)
	if err != nil {
		return nil, fmt.Errorf("web: %q: %w", *v, err)
	}
	return &t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
