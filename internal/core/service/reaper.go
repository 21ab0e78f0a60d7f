package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yndnr/docmesh-go/internal/telemetry/logger"
)

// Reaper periodically deletes sessions idle for longer than a threshold
// and purges expired join tickets. Both durations can change while it runs.
type Reaper struct {
	registry *Registry
	gate     *Gate
	idle     atomic.Int64
	interval atomic.Int64
	reset    chan struct{}
	now      func() time.Time
	logger   logger.Logger
}

// ReaperOption configures a Reaper.
type ReaperOption func(*Reaper)

// WithReaperGate purges the gate's expired tickets on each sweep.
func WithReaperGate(g *Gate) ReaperOption {
	return func(r *Reaper) { r.gate = g }
}

// WithReaperClock sets the time source used by Run.
func WithReaperClock(now func() time.Time) ReaperOption {
	return func(r *Reaper) { r.now = now }
}

// WithReaperLogger sets the logger.
func WithReaperLogger(l logger.Logger) ReaperOption {
	return func(r *Reaper) { r.logger = l }
}

// NewReaper creates a reaper over registry.
func NewReaper(registry *Registry, idle, interval time.Duration, opts ...ReaperOption) *Reaper {
	r := &Reaper{
		registry: registry,
		reset:    make(chan struct{}, 1),
		now:      time.Now,
		logger:   logger.Default(),
	}
	r.idle.Store(int64(idle))
	r.interval.Store(int64(interval))
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Idle returns the idle threshold.
func (r *Reaper) Idle() time.Duration { return time.Duration(r.idle.Load()) }

// Interval returns the sweep interval.
func (r *Reaper) Interval() time.Duration { return time.Duration(r.interval.Load()) }

// SetIdle changes the idle threshold from the next sweep on.
func (r *Reaper) SetIdle(d time.Duration) {
	if d > 0 {
		r.idle.Store(int64(d))
	}
}

// SetInterval changes the sweep interval. A running loop picks it up
// immediately.
func (r *Reaper) SetInterval(d time.Duration) {
	if d <= 0 || r.interval.Swap(int64(d)) == int64(d) {
		return
	}
	select {
	case r.reset <- struct{}{}:
	default:
	}
}

// Run sweeps on every tick until ctx is canceled.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Interval())
	defer ticker.Stop()

	r.logger.Info("reaper started",
		"idle", r.Idle().String(),
		"interval", r.Interval().String(),
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reaper stopped")
			return
		case <-r.reset:
			ticker.Reset(r.Interval())
			r.logger.Info("reaper interval changed", "interval", r.Interval().String())
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

// Sweep deletes every session idle for longer than the threshold at now
// and returns the deleted ids.
func (r *Reaper) Sweep(now time.Time) []string {
	ids := r.registry.DeleteIdle(now, r.Idle())
	var purged int
	if r.gate != nil {
		purged = r.gate.PurgeExpired(now)
	}
	if len(ids) > 0 || purged > 0 {
		r.logger.Info("reaper sweep",
			"deleted", len(ids),
			"tickets_purged", purged,
			"remaining", r.registry.Count(),
		)
	}
	return ids
}
