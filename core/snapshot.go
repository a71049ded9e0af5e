package core

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/orbit-kinematics/orbit"
)

// SatelliteState is the kinematic state of one satellite at an instant.
type SatelliteState struct {
	ID       int
	PlaneID  int
	Position orbit.Vector3D
	Velocity orbit.Vector3D
}

// Snapshot evaluates every satellite at time t using up to workers
// goroutines (GOMAXPROCS when workers <= 0). The result preserves the order
// of sats. Kinematics are pure, so satellites are evaluated independently.
func Snapshot(ctx context.Context, sats []*orbit.Satellite, t float64, workers int) ([]SatelliteState, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	states := make([]SatelliteState, len(sats))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range sats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			states[i] = SatelliteState{
				ID:       s.ID(),
				PlaneID:  s.Plane().ID(),
				Position: s.Position(t),
				Velocity: s.Velocity(t),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return states, nil
}
