package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	// Resolve timezone names on hosts without a zoneinfo database.
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"rangecal/internal/dateutil"
	appLog "rangecal/internal/log"
)

// DateLayout is the on-disk format of every date in the config file.
const DateLayout = dateutil.DayLayout

const (
	defaultListen      = "127.0.0.1:8080"
	defaultWeekStart   = "sunday"
	defaultLabelLayout = "January 2006"
	defaultRefresh     = "0 0 * * *"
	defaultLogLevel    = "info"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the web surface.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address of the rendering surface.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone whose calendar days the picker works in.
	// Empty means the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart is the first column of every week row: "sunday" (default)
	// or "monday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// MinDate is the first selectable day (inclusive), YYYY-MM-DD. Empty means
	// today.
	MinDate string `yaml:"min_date" json:"min_date"`
	// MaxDate is the exclusive upper bound, YYYY-MM-DD. Empty means one year
	// after MinDate.
	MaxDate string `yaml:"max_date" json:"max_date"`

	// SelectedStart and SelectedEnd seed the initial selection.
	SelectedStart string `yaml:"selected_start,omitempty" json:"selected_start,omitempty"`
	SelectedEnd   string `yaml:"selected_end,omitempty" json:"selected_end,omitempty"`

	// SelectionICS, if set, seeds the initial selection from the first VEVENT
	// of an .ics file path or http(s) URL. SelectedStart/End take precedence.
	SelectionICS string `yaml:"selection_ics,omitempty" json:"selection_ics,omitempty"`

	// MonthLabelFormat is a Go time layout for month titles.
	MonthLabelFormat string `yaml:"month_label_format" json:"month_label_format"`

	// RefreshCron is the cron schedule that moves the "today" marker.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of debug, info, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration. The domain is
// left empty and resolved against "today" at startup.
func DefaultConfig() *Config {
	return &Config{
		Listen:           defaultListen,
		WeekStart:        defaultWeekStart,
		MonthLabelFormat: defaultLabelLayout,
		RefreshCron:      defaultRefresh,
		LogLevel:         defaultLogLevel,
	}
}

// Normalize fills in missing values with defaults so that partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = defaultWeekStart
	}
	if c.MonthLabelFormat == "" {
		c.MonthLabelFormat = defaultLabelLayout
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate checks every field that can be checked without a clock. Domain
// ordering is left to the calendar model, which owns that rule.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Weekday(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	for name, v := range map[string]string{
		"min_date":       c.MinDate,
		"max_date":       c.MaxDate,
		"selected_start": c.SelectedStart,
		"selected_end":   c.SelectedEnd,
	} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, v); err != nil {
			errs = append(errs, fmt.Errorf("config: %s: %w", name, err))
		}
	}
	if _, err := appLog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: log_level: %w", err))
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		errs = append(errs, fmt.Errorf("config: refresh %q: %w", c.RefreshCron, err))
	}
	return errors.Join(errs...)
}

// Weekday resolves WeekStart.
func (c *Config) Weekday() (time.Weekday, error) {
	switch c.WeekStart {
	case "", "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	default:
		return time.Sunday, fmt.Errorf("config: unsupported week_start %q", c.WeekStart)
	}
}

// Location resolves Timezone; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Domain resolves MinDate/MaxDate in loc, defaulting to [today, today+1y).
func (c *Config) Domain(now time.Time, loc *time.Location) (from, to time.Time, err error) {
	if c.MinDate == "" {
		from = dateutil.TruncateToMidnight(now.In(loc))
	} else if from, err = dateutil.ParseDay(c.MinDate, loc); err != nil {
		return from, to, fmt.Errorf("config: min_date: %w", err)
	}

	if c.MaxDate == "" {
		y, m, d := from.Date()
		to = dateutil.DayStart(y+1, m, d, loc)
	} else if to, err = dateutil.ParseDay(c.MaxDate, loc); err != nil {
		return from, to, fmt.Errorf("config: max_date: %w", err)
	}
	return from, to, nil
}

// Selection resolves SelectedStart/SelectedEnd in loc; nil when unset.
func (c *Config) Selection(loc *time.Location) (start, end *time.Time, err error) {
	parse := func(name, v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		t, err := dateutil.ParseDay(v, loc)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
		return &t, nil
	}
	if start, err = parse("selected_start", c.SelectedStart); err != nil {
		return nil, nil, err
	}
	if end, err = parse("selected_end", c.SelectedEnd); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file in the same directory, then
// rename) with 0600 permissions, creating the parent directory with 0700.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rangecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
