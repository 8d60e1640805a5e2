package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"sync"
	"time"

	"rangecal/internal/calendar"
	"rangecal/internal/config"
	appLog "rangecal/internal/log"
)

var logger = appLog.Named("web")

// Server is the HTTP rendering surface of one calendar model.
//
// The model is not safe for concurrent use; every handler, the clock and
// config reloads reach it through Do, which holds mu.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	mu  sync.Mutex
	cal *calendar.Model
	loc *time.Location

	// calendarJSON caches the encoded /api/calendar body. OnDataChanged
	// drops it; it is only touched with mu held.
	calendarJSON []byte
}

// NewServer constructs a Server for cfg. m may be nil and installed later
// with Swap; until then calendar endpoints answer 503.
func NewServer(cfg *config.Config, m *calendar.Model, loc *time.Location) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
		loc: loc,
	}
	if m != nil {
		s.Swap(m, loc)
	}
	s.registerRoutes()
	return s
}

// Swap installs m as the served model. loc is the zone dates in requests are
// parsed in; it must match the model's own location.
func (s *Server) Swap(m *calendar.Model, loc *time.Location) {
	m.SetObserver(s)
	m.SetListener(calendar.ListenerFuncs{
		Started:   func() { logger.Info("range started") },
		Completed: func() { logger.Info("range completed") },
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cal = m
	if loc != nil {
		s.loc = loc
	}
	s.calendarJSON = nil
}

// Do runs fn with exclusive access to the model.
func (s *Server) Do(fn func(*calendar.Model) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cal == nil {
		return errNoModel
	}
	return fn(s.cal)
}

var errNoModel = errors.New("web: no calendar model installed")

// OnDataChanged implements calendar.DataObserver. It runs inside Do.
func (s *Server) OnDataChanged() {
	s.calendarJSON = nil
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		logger.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down with a
// five second grace period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("POST /api/click", s.handleClick)
	s.mux.HandleFunc("POST /api/selection", s.handleSelection)
	s.mux.HandleFunc("GET /api/selection.ics", s.handleSelectionICS)
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. An empty
// username or password counts as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="rangecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
