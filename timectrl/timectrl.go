package timectrl

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SimClock is an interface for accessing simulation time, so consumers can
// depend on a clock abstraction rather than the concrete controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// Elapsed returns seconds of simulation time since the start.
	Elapsed() float64
}

var _ SimClock = (*TimeController)(nil)

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run (or as the
	// optional rate limit allows) while still stepping by Tick.
	Accelerated
)

func (m Mode) String() string {
	switch m {
	case RealTime:
		return "realtime"
	case Accelerated:
		return "accelerated"
	default:
		return "unknown"
	}
}

// Listener is invoked on every tick with the new simulation time and the
// elapsed simulation seconds since StartTime.
type Listener func(simTime time.Time, elapsed float64)

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	limiter     *rate.Limiter
	currentTime time.Time
	listeners   []Listener
}

// Option customises a TimeController.
type Option func(*TimeController)

// WithMaxRate caps accelerated mode at ticksPerSecond wall-clock ticks.
// Non-positive values leave it uncapped.
func WithMaxRate(ticksPerSecond float64) Option {
	return func(tc *TimeController) {
		if ticksPerSecond > 0 {
			tc.limiter = rate.NewLimiter(rate.Limit(ticksPerSecond), 1)
		}
	}
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode, opts ...Option) *TimeController {
	tc := &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// Elapsed returns the simulation seconds since StartTime.
func (tc *TimeController) Elapsed() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime.Sub(tc.StartTime).Seconds()
}

// SetTime jumps the controller to t without notifying listeners.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn Listener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller from StartTime for the given simulation duration
// (forever when duration <= 0) in a separate goroutine. It returns a channel
// that is closed when the run finishes or ctx is cancelled.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if tc.Tick <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		var ticks <-chan time.Time
		if tc.Mode == RealTime {
			ticker := time.NewTicker(tc.Tick)
			defer ticker.Stop()
			ticks = ticker.C
		}

		for elapsed := time.Duration(0); duration <= 0 || elapsed < duration; {
			if !tc.wait(ctx, ticks) {
				return
			}
			simTime = simTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = simTime
			listeners := append([]Listener(nil), tc.listeners...)
			tc.mu.Unlock()

			secs := simTime.Sub(tc.StartTime).Seconds()
			for _, fn := range listeners {
				fn(simTime, secs)
			}
		}
	}()
	return done
}

// wait blocks until the next tick is due. It returns false once ctx is done.
func (tc *TimeController) wait(ctx context.Context, ticks <-chan time.Time) bool {
	if ticks != nil {
		select {
		case <-ctx.Done():
			return false
		case <-ticks:
			return true
		}
	}
	if tc.limiter != nil {
		return tc.limiter.Wait(ctx) == nil
	}
	return ctx.Err() == nil
}
