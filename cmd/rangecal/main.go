package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rangecal/internal/calendar"
	"rangecal/internal/capture"
	"rangecal/internal/clock"
	"rangecal/internal/config"
	"rangecal/internal/ics"
	appLog "rangecal/internal/log"
	"rangecal/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	capture    string
	exportICS  string
}

func main() {
	flags := parseFlags()

	if err := run(flags); err != nil {
		appLog.Error("rangecal failed", err)
		os.Exit(1)
	}
}

func run(flags flagConfig) error {
	appLog.Info("rangecal starting", "version", version)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", flags.configPath, err)
	}
	// Reloads are compared against the file as loaded, before flag overrides.
	loaded := *conf

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	applyLogLevel(conf.LogLevel)

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"min_date", conf.MinDate,
		"max_date", conf.MaxDate,
		"refresh", conf.RefreshCron,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cal, loc, err := buildModel(ctx, conf)
	if err != nil {
		return err
	}

	if flags.exportICS != "" {
		return exportSelection(cal, flags.exportICS)
	}

	srv := web.NewServer(conf, cal, loc)

	if flags.capture != "" {
		return captureOnce(ctx, srv, conf, flags.capture)
	}

	ticker := clock.New(conf.RefreshCron, loc, nil, func(now time.Time) error {
		return srv.Do(func(m *calendar.Model) error { return m.SetToday(now) })
	})
	if err := ticker.Start(); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		ticker.Stop(stopCtx)
	}()

	go func() {
		err := config.Watch(ctx, flags.configPath, func(next *config.Config) error {
			m, nextLoc, err := buildModel(ctx, next)
			if err != nil {
				return err
			}
			srv.Swap(m, nextLoc)
			applyLogLevel(next.LogLevel)
			if fields := restartFields(&loaded, next); len(fields) > 0 {
				appLog.Info("config changes apply after restart", "fields", strings.Join(fields, ","))
			}
			return nil
		})
		if err != nil {
			appLog.Error("config watch stopped", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		return err
	}
	appLog.Info("rangecal exiting")
	return nil
}

// restartFields names the settings that differ between two loads of the
// config file but are only read at startup by the server and the clock.
func restartFields(prev, next *config.Config) []string {
	var fields []string
	if next.Listen != prev.Listen {
		fields = append(fields, "listen")
	}
	if next.RefreshCron != prev.RefreshCron {
		fields = append(fields, "refresh")
	}
	if next.Timezone != prev.Timezone {
		fields = append(fields, "timezone")
	}
	return fields
}

// buildModel constructs and initializes a calendar model from conf. The
// initial selection comes from selected_start/selected_end, or failing those
// from selection_ics.
func buildModel(ctx context.Context, conf *config.Config) (*calendar.Model, *time.Location, error) {
	loc, err := conf.Location()
	if err != nil {
		return nil, nil, err
	}
	weekStart, err := conf.Weekday()
	if err != nil {
		return nil, nil, err
	}

	domainMin, domainMax, err := conf.Domain(time.Now(), loc)
	if err != nil {
		return nil, nil, err
	}
	start, end, err := conf.Selection(loc)
	if err != nil {
		return nil, nil, err
	}
	if start == nil && conf.SelectionICS != "" {
		r, err := ics.NewLoader().LoadRange(ctx, conf.SelectionICS, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("selection_ics: %w", err)
		}
		start, end = &r.Start, &r.End
	}

	m := calendar.New(calendar.Options{
		WeekStart:   weekStart,
		Location:    loc,
		LabelLayout: conf.MonthLabelFormat,
	})
	if err := m.Initialize(start, end, domainMin, domainMax); err != nil {
		return nil, nil, err
	}
	return m, loc, nil
}

func exportSelection(cal *calendar.Model, path string) error {
	start, end := cal.SelectedStart(), cal.SelectedEnd()
	if start == nil {
		return errors.New("export: no selection configured")
	}
	if end == nil {
		end = start
	}
	body, err := ics.ExportRange(*start, *end, ics.ExportOptions{})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return err
	}
	appLog.Info("selection exported", "path", path)
	return nil
}

// captureOnce serves the calendar just long enough to snapshot /calendar.
func captureOnce(ctx context.Context, srv *web.Server, conf *config.Config, out string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	if err := waitHealthy(ctx, "http://"+conf.Listen+"/health"); err != nil {
		return err
	}

	opts := capture.Options{
		URL:        "http://" + conf.Listen + "/calendar",
		OutputPath: out,
	}
	if conf.BasicAuth != nil {
		opts.Username, opts.Password = conf.BasicAuth.Username, conf.BasicAuth.Password
	}
	capErr := capture.CalendarPNG(ctx, opts)

	cancel()
	if err := <-errCh; err != nil {
		appLog.Error("HTTP server shutdown failed", err)
	}
	if capErr != nil {
		return capErr
	}
	appLog.Info("calendar captured", "path", out)
	return nil
}

func waitHealthy(ctx context.Context, url string) error {
	client := &http.Client{Timeout: time.Second}
	for i := 0; i < 50; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("server at %s did not become healthy", url)
}

func applyLogLevel(name string) {
	level, err := appLog.ParseLevel(name)
	if err != nil {
		appLog.Error("invalid log_level; keeping current level", err, "log_level", name)
		return
	}
	appLog.SetLevel(level)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/rangecal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.capture, "capture", "", "Render /calendar to this PNG path with headless Chromium and exit")
	flag.StringVar(&cfg.exportICS, "export-ics", "", "Write the configured selection as an .ics file and exit")

	flag.Parse()

	return cfg
}
