package orbit

import (
	"fmt"
	"math"
	"slices"
	"sync"
)

const twoPi = 2 * math.Pi

// Satellite is a body on an OrbitalPlane at a fixed phase offset. Position
// and velocity are pure functions of time; the connection set is the only
// mutable state.
type Satellite struct {
	id           int
	plane        *OrbitalPlane
	argPeriapsis float64

	mu          sync.RWMutex
	connections map[int]struct{}
}

// NewSatellite places a satellite on plane with the given argument of
// periapsis. The plane is shared, never copied.
func (f *Factory) NewSatellite(plane *OrbitalPlane, argPeriapsis float64) *Satellite {
	return &Satellite{
		id:           f.satelliteIDs.Next(),
		plane:        plane,
		argPeriapsis: argPeriapsis,
		connections:  make(map[int]struct{}),
	}
}

func (s *Satellite) ID() int               { return s.id }
func (s *Satellite) Plane() *OrbitalPlane  { return s.plane }
func (s *Satellite) ArgPeriapsis() float64 { return s.argPeriapsis }

// TrueAnomaly returns (t·ω) wrapped into [0, 2π). Negative times wrap to a
// non-negative angle.
func (s *Satellite) TrueAnomaly(t float64) float64 {
	return wrapAngle(t * s.plane.angularSpeed)
}

// Position returns the satellite position in metres at time t (seconds).
func (s *Satellite) Position(t float64) Vector3D {
	return s.toReference(s.inPlane(t))
}

// Velocity returns the satellite velocity in m/s at time t: the position
// turned a quarter turn about the reference Y axis, scaled to the plane's
// orbital speed. It is tangent to the orbit only while the position has no
// Y component, which always holds for inclination 0; TangentVelocity is the
// true orbital tangent for any inclination.
func (s *Satellite) Velocity(t float64) Vector3D {
	return s.Position(t).RotateY(math.Pi / 2).Unit().Scale(s.plane.orbitalSpeed)
}

// TangentVelocity returns the time derivative of Position at t. The quarter
// turn is applied inside the orbital plane before the plane is tilted, so the
// result is tangent for every inclination. It equals Velocity when the
// inclination is 0.
func (s *Satellite) TangentVelocity(t float64) Vector3D {
	tangent := s.toReference(s.inPlane(t).RotateY(math.Pi / 2))
	return tangent.Unit().Scale(s.plane.orbitalSpeed)
}

// DistanceTo returns the straight-line distance to other at time t.
func (s *Satellite) DistanceTo(other *Satellite, t float64) float64 {
	return s.Position(t).Sub(other.Position(t)).Mag()
}

// inPlane is the position in the plane's own frame, before inclination and
// longitude are applied.
func (s *Satellite) inPlane(t float64) Vector3D {
	r := s.plane.semimajorAxis
	return NewVector3D(r, 0, 0).RotateY(s.argPeriapsis + s.TrueAnomaly(t))
}

// toReference tilts by inclination about X, then turns the ascending node
// about Y. The order matters.
func (s *Satellite) toReference(v Vector3D) Vector3D {
	return v.RotateX(s.plane.inclination).RotateY(s.plane.longitude)
}

// Connect records an active link to otherID. Connecting twice is a no-op.
func (s *Satellite) Connect(otherID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[otherID] = struct{}{}
}

// Disconnect removes the link to otherID. It fails with ErrNotFound if the
// link is not present.
func (s *Satellite) Disconnect(otherID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.connections[otherID]; !ok {
		return fmt.Errorf("satellite %d has no connection to %d: %w", s.id, otherID, ErrNotFound)
	}
	delete(s.connections, otherID)
	return nil
}

// IsConnected reports whether otherID is in the connection set.
func (s *Satellite) IsConnected(otherID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.connections[otherID]
	return ok
}

// Connections returns a sorted snapshot of the connection set.
func (s *Satellite) Connections() []int {
	s.mu.RLock()
	ids := make([]int, 0, len(s.connections))
	for id := range s.connections {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// ConnectionCount returns the number of active links.
func (s *Satellite) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func wrapAngle(a float64) float64 {
	r := math.Mod(a, twoPi)
	if r < 0 {
		r += twoPi
	}
	// -tiny + 2π rounds to 2π
	if r >= twoPi {
		r = 0
	}
	return r
}
