package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/signalsfoundry/orbit-kinematics/orbit"
)

// ErrIrregularGrid is returned by GridStrategy when planes carry different
// numbers of satellites.
var ErrIrregularGrid = errors.New("irregular grid")

// ConnectionStrategy decides which satellite pairs are linked at the model's
// current time.
type ConnectionStrategy interface {
	Run(m *Model) (*ConnectionGraph, error)
}

func addLink(g *ConnectionGraph, a, b *orbit.Satellite, t float64) {
	if a == b {
		return
	}
	g.AddLink(a.ID(), b.ID(), a.DistanceTo(b, t))
}

// GridStrategy links each satellite to its two neighbours in the same plane
// (a ring) and to the satellite with the same index in the adjacent planes,
// with the last plane wrapping back to the first.
type GridStrategy struct{}

// NewGridStrategy returns a GridStrategy.
func NewGridStrategy() *GridStrategy { return &GridStrategy{} }

// Run builds the grid at m.T().
func (GridStrategy) Run(m *Model) (*ConnectionGraph, error) {
	t := m.T()
	topology := NewConnectionGraph()
	for _, s := range m.Satellites() {
		topology.AddSatellite(s.ID())
	}

	planes := m.Planes()
	if len(planes) == 0 {
		return topology, nil
	}

	grid := make([][]*orbit.Satellite, len(planes))
	for i, p := range planes {
		grid[i] = m.SatellitesInPlane(p.ID())
		if len(grid[i]) != len(grid[0]) {
			return nil, fmt.Errorf("plane %d has %d satellites, plane %d has %d: %w",
				p.ID(), len(grid[i]), planes[0].ID(), len(grid[0]), ErrIrregularGrid)
		}
	}
	perPlane := len(grid[0])
	if perPlane == 0 {
		return topology, nil
	}

	for _, ring := range grid {
		for i := 0; i < perPlane-1; i++ {
			addLink(topology, ring[i], ring[i+1], t)
		}
		addLink(topology, ring[0], ring[perPlane-1], t)
	}

	last := len(grid) - 1
	for i := range perPlane {
		for p := 0; p < last; p++ {
			addLink(topology, grid[p][i], grid[p+1][i], t)
		}
		addLink(topology, grid[0][i], grid[last][i], t)
	}

	return topology, nil
}

// RangeStrategy links every pair of satellites closer than MaxRange whose
// line of sight clears a sphere of BlockingRadius.
type RangeStrategy struct {
	MaxRange       float64 // metres
	BlockingRadius float64 // metres; DefaultBlockingRadius when zero
	Workers        int     // snapshot parallelism; GOMAXPROCS when zero
}

// NewRangeStrategy returns a RangeStrategy with the default blocking radius.
func NewRangeStrategy(maxRange float64) *RangeStrategy {
	return &RangeStrategy{MaxRange: maxRange, BlockingRadius: DefaultBlockingRadius}
}

// Run evaluates all pairs at m.T().
func (rs *RangeStrategy) Run(m *Model) (*ConnectionGraph, error) {
	radius := rs.BlockingRadius
	if radius == 0 {
		radius = DefaultBlockingRadius
	}

	sats := m.Satellites()
	states, err := Snapshot(context.Background(), sats, m.T(), rs.Workers)
	if err != nil {
		return nil, fmt.Errorf("RangeStrategy: %w", err)
	}

	topology := NewConnectionGraph()
	for _, st := range states {
		topology.AddSatellite(st.ID)
	}
	for i := range states {
		for j := i + 1; j < len(states); j++ {
			pa, pb := states[i].Position, states[j].Position
			d := pa.Sub(pb).Mag()
			if d > rs.MaxRange || !hasLineOfSight(pa, pb, radius) {
				continue
			}
			topology.AddLink(states[i].ID, states[j].ID, d)
		}
	}
	return topology, nil
}
