package core

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/signalsfoundry/orbit-kinematics/orbit"
)

// MotionModel yields a position in the model frame (metres) for a
// simulation time in seconds.
type MotionModel interface {
	Position(t float64) orbit.Vector3D
}

var _ MotionModel = (*orbit.Satellite)(nil)

// SGP4MotionModel propagates an externally tracked object from its TLE.
// Simulation time t is measured in seconds from Epoch.
type SGP4MotionModel struct {
	Name  string
	Epoch time.Time

	sat satellite.Satellite
}

// NewSGP4MotionModel constructs a motion model from TLE lines.
func NewSGP4MotionModel(name, line1, line2 string, epoch time.Time) *SGP4MotionModel {
	return &SGP4MotionModel{
		Name:  name,
		Epoch: epoch.UTC(),
		sat:   satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
	}
}

// Position propagates to Epoch + t and maps the ECI result into the model
// frame. go-satellite works in kilometres; the model uses metres.
//
// The model frame uses Y as the polar axis, so ECI (x, y, z) becomes
// (x, z, -y). Rotating about model +Y then matches rotating about ECI +Z.
func (m *SGP4MotionModel) Position(t float64) orbit.Vector3D {
	at := m.Epoch.Add(time.Duration(t * float64(time.Second)))
	year, month, day := at.Date()
	hour, minute, sec := at.Clock()

	eci, _ := satellite.Propagate(m.sat, year, int(month), day, hour, minute, sec)

	const kmToM = 1000.0
	return orbit.NewVector3D(eci.X*kmToM, eci.Z*kmToM, -eci.Y*kmToM)
}

// NearestSatellite returns the satellite closest to target at time t and
// the distance to it. It returns nil and +Inf when sats is empty.
func NearestSatellite(target MotionModel, sats []*orbit.Satellite, t float64) (*orbit.Satellite, float64) {
	pos := target.Position(t)
	var (
		best     *orbit.Satellite
		bestDist = math.Inf(1)
	)
	for _, s := range sats {
		if d := s.Position(t).Sub(pos).Mag(); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist
}
