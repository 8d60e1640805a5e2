package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("week_start: Monday\nmin_date: 2013-01-01\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, defaultListen, cfg.Listen)
	assert.Equal(t, defaultLabelLayout, cfg.MonthLabelFormat)
	assert.Equal(t, defaultRefresh, cfg.RefreshCron)

	wd, err := cfg.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, wd)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "listen: [",
		"bad week start": "week_start: friday\n",
		"bad timezone":   "timezone: Nowhere/Special\n",
		"bad date":       "min_date: 01/02/2013\n",
		"bad selection":  "selected_end: tomorrow\n",
		"bad cron":       "refresh: every day\n",
		"bad log level":  "log_level: verbose\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDomainDefaults(t *testing.T) {
	now := time.Date(2013, time.January, 8, 23, 30, 0, 0, time.UTC)
	cfg := DefaultConfig()

	min, max, err := cfg.Domain(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2013, time.January, 8, 0, 0, 0, 0, time.UTC), min)
	assert.Equal(t, time.Date(2014, time.January, 8, 0, 0, 0, 0, time.UTC), max)

	cfg.MinDate, cfg.MaxDate = "2012-11-16", "2013-11-16"
	min, max, err = cfg.Domain(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2012, time.November, 16, 0, 0, 0, 0, time.UTC), min)
	assert.Equal(t, time.Date(2013, time.November, 16, 0, 0, 0, 0, time.UTC), max)
}

func TestSelection(t *testing.T) {
	cfg := DefaultConfig()

	start, end, err := cfg.Selection(time.UTC)
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	cfg.SelectedStart = "2013-01-05"
	start, end, err = cfg.Selection(time.UTC)
	require.NoError(t, err)
	require.NotNil(t, start)
	assert.Equal(t, time.Date(2013, time.January, 5, 0, 0, 0, 0, time.UTC), *start)
	assert.Nil(t, end)

	cfg.SelectedEnd = "bogus"
	_, _, err = cfg.Selection(time.UTC)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "Asia/Seoul"
	cfg.BasicAuth = &BasicAuthConfig{Username: "admin", Password: "secret"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) error {
			changes <- c
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	updated := DefaultConfig()
	updated.WeekStart = "monday"
	require.NoError(t, Save(path, updated))

	select {
	case c := <-changes:
		assert.Equal(t, "monday", c.WeekStart)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestDatesOnSkippedMidnight(t *testing.T) {
	loc, err := time.LoadLocation("America/Santiago")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MinDate, cfg.SelectedStart = "2019-09-08", "2019-09-08"

	from, to, err := cfg.Domain(time.Now(), loc)
	require.NoError(t, err)
	assert.Equal(t, 8, from.Day(), from.String())
	assert.Equal(t, 2020, to.Year())

	start, _, err := cfg.Selection(loc)
	require.NoError(t, err)
	assert.True(t, start.Equal(from), start.String())
}
