// Package clock moves the calendar's "today" marker on a cron schedule.
package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "rangecal/internal/log"
)

var logger = appLog.Named("clock")

// TickFunc receives the current time on every scheduled run.
type TickFunc func(now time.Time) error

// Ticker runs a TickFunc on a standard five-field cron schedule evaluated in a
// fixed location.
type Ticker struct {
	spec string
	loc  *time.Location
	now  func() time.Time
	tick TickFunc

	mu   sync.Mutex
	cron *cron.Cron
}

// New returns a Ticker; the schedule is parsed by Start. A nil loc means
// time.Local and a nil now means time.Now.
func New(spec string, loc *time.Location, now func() time.Time, tick TickFunc) *Ticker {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Ticker{spec: spec, loc: loc, now: now, tick: tick}
}

// Start schedules the tick. It returns an error if the schedule does not parse;
// calling Start twice is an error too.
func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron != nil {
		return fmt.Errorf("clock: already started")
	}

	c := cron.New(cron.WithLocation(t.loc))
	if _, err := c.AddFunc(t.spec, t.RunOnce); err != nil {
		return fmt.Errorf("clock: schedule %q: %w", t.spec, err)
	}
	c.Start()
	t.cron = c
	logger.Info("clock started", "spec", t.spec, "timezone", t.loc.String())
	return nil
}

// Stop halts the schedule and waits for an in-flight tick, bounded by ctx.
func (t *Ticker) Stop(ctx context.Context) {
	t.mu.Lock()
	c := t.cron
	t.cron = nil
	t.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce invokes the tick immediately. Errors are logged, not returned.
func (t *Ticker) RunOnce() {
	now := t.now().In(t.loc)
	if err := t.tick(now); err != nil {
		logger.Error("tick failed", err, "now", now.Format(time.RFC3339))
		return
	}
	logger.Debug("tick", "now", now.Format(time.RFC3339))
}
