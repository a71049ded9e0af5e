package core

import (
	"context"
	"fmt"
)

// TickListener observes the result of one engine tick.
type TickListener func(tick int, t float64, topology *ConnectionGraph, delta Delta)

// SimulationEngine steps a connectivity service through fixed simulation
// time increments without a wall clock.
type SimulationEngine struct {
	Service *ConnectivityService
	Step    float64 // seconds between ticks

	tickListeners []TickListener
}

func NewSimulationEngine(svc *ConnectivityService, step float64) *SimulationEngine {
	return &SimulationEngine{Service: svc, Step: step}
}

func (se *SimulationEngine) RegisterTickListener(fn TickListener) {
	se.tickListeners = append(se.tickListeners, fn)
}

// Run evaluates ticks 0..ticks-1 at t = start + tick*Step and stops at the
// first error or when ctx is done.
func (se *SimulationEngine) Run(ctx context.Context, start float64, ticks int) error {
	if !(se.Step > 0) {
		return fmt.Errorf("SimulationEngine: step must be positive, got %g", se.Step)
	}
	for tick := 0; tick < ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := start + float64(tick)*se.Step
		topology, delta, err := se.Service.UpdateConnectivity(ctx, t)
		if err != nil {
			return fmt.Errorf("tick %d: %w", tick, err)
		}
		for _, fn := range se.tickListeners {
			fn(tick, t, topology, delta)
		}
	}
	return nil
}
