package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"rangecal/internal/calendar"
	"rangecal/internal/config"
	"rangecal/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var intl = message.NewPrinter(language.English)

var templateFunctions = template.FuncMap{
	"formatNumber": intl.Sprint,
	"isoDay": func(c *model.MonthCell) string {
		return c.Date.Format(config.DateLayout)
	},
	"cellClass": cellClass,
}

var calendarTemplate = template.Must(
	template.New("calendar.html").Funcs(templateFunctions).ParseFS(templateFS, "templates/calendar.html"),
)

type monthView struct {
	Label string
	Weeks model.Matrix
}

type pageData struct {
	Months        []monthView
	Weekdays      []string
	SelectedStart string
	SelectedEnd   string
	SelectedDays  int
	State         string
}

func cellClass(c *model.MonthCell) string {
	class := "cell"
	if !c.IsCurrentMonth {
		return class + " fill"
	}
	if c.IsSelectable {
		class += " selectable"
	}
	if c.IsSelected {
		class += " selected"
	}
	if c.IsToday {
		class += " today"
	}
	return class
}

// handleCalendarPage renders the grid as HTML. The root element carries
// data-ready="true" once rendered, which the PNG capture waits for.
func (s *Server) handleCalendarPage(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	err := s.Do(func(m *calendar.Model) error {
		layout, err := m.Layout()
		if err != nil {
			return err
		}
		data := pageData{
			Months:       make([]monthView, len(layout.Months)),
			Weekdays:     layout.Weekdays,
			SelectedDays: len(m.SelectedCells()),
			State:        m.State().String(),
		}
		for i, month := range layout.Months {
			data.Months[i] = monthView{Label: month.Label, Weeks: layout.Cells[i]}
		}
		if p := formatDay(m.SelectedStart()); p != nil {
			data.SelectedStart = *p
		}
		if p := formatDay(m.SelectedEnd()); p != nil {
			data.SelectedEnd = *p
		}
		return calendarTemplate.Execute(&buf, data)
	})
	if err != nil {
		s.writeModelError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
