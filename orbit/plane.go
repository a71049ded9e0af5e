package orbit

import (
	"fmt"
	"math"
)

// OrbitalPlane holds the geometry of a circular orbit shared by every
// satellite riding on it. Planes are immutable once built.
type OrbitalPlane struct {
	id            int
	gm            float64
	eccentricity  float64
	semimajorAxis float64
	inclination   float64
	longitude     float64

	orbitalSpeed float64
	angularSpeed float64
}

// NewOrbitalPlane builds a circular orbital plane. Only eccentricity 0 is
// supported; anything else fails with ErrUnsupportedFeature and consumes no
// identity.
//
// semimajorAxis is not validated: a zero or negative radius yields non-finite
// speeds which then propagate into every position and velocity.
func (f *Factory) NewOrbitalPlane(eccentricity, semimajorAxis, inclination, longitude float64) (*OrbitalPlane, error) {
	if eccentricity != 0 {
		return nil, fmt.Errorf("orbital plane with eccentricity %g: %w", eccentricity, ErrUnsupportedFeature)
	}

	p := &OrbitalPlane{
		id:            f.planeIDs.Next(),
		gm:            f.gm,
		eccentricity:  eccentricity,
		semimajorAxis: semimajorAxis,
		inclination:   inclination,
		longitude:     longitude,
	}
	p.orbitalSpeed = math.Sqrt(p.gm / semimajorAxis)
	p.angularSpeed = p.orbitalSpeed / semimajorAxis
	return p, nil
}

func (p *OrbitalPlane) ID() int                { return p.id }
func (p *OrbitalPlane) GM() float64            { return p.gm }
func (p *OrbitalPlane) Eccentricity() float64  { return p.eccentricity }
func (p *OrbitalPlane) SemimajorAxis() float64 { return p.semimajorAxis }
func (p *OrbitalPlane) Inclination() float64   { return p.inclination }
func (p *OrbitalPlane) Longitude() float64     { return p.longitude }

// OrbitalSpeed is sqrt(GM/a) in m/s, fixed at construction.
func (p *OrbitalPlane) OrbitalSpeed() float64 { return p.orbitalSpeed }

// AngularSpeed is OrbitalSpeed/a in rad/s, fixed at construction.
func (p *OrbitalPlane) AngularSpeed() float64 { return p.angularSpeed }

// OrbitalPeriod returns 2π·sqrt(a³/GM) in seconds. It is recomputed on every call.
func (p *OrbitalPlane) OrbitalPeriod() float64 {
	return 2 * math.Pi * math.Sqrt(math.Pow(p.semimajorAxis, 3)/p.gm)
}

// Finite reports whether the derived speeds are finite numbers, which holds
// exactly when the semimajor axis is positive.
func (p *OrbitalPlane) Finite() bool {
	for _, v := range [2]float64{p.orbitalSpeed, p.angularSpeed} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p *OrbitalPlane) String() string {
	return fmt.Sprintf("plane %d (a=%.0fm i=%.4f Ω=%.4f)", p.id, p.semimajorAxis, p.inclination, p.longitude)
}
