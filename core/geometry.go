package core

import "github.com/signalsfoundry/orbit-kinematics/orbit"

// DefaultBlockingRadius is the sphere that blocks inter-satellite links:
// the mean Earth radius plus 80 km of dense atmosphere (metres).
const DefaultBlockingRadius = orbit.EarthRadius + 80e3

// hasLineOfSight checks whether the straight segment between p1 and p2
// clears a sphere of the given radius centred at the origin.
func hasLineOfSight(p1, p2 orbit.Vector3D, radius float64) bool {
	v := p2.Sub(p1)
	a := v.Dot(v)
	if a == 0 {
		// Same point: visible only if it is outside the sphere.
		return p1.Dot(p1) > radius*radius
	}

	// Closest point on the segment to the origin; t* minimises |p1 + t v|^2.
	t := -p1.Dot(v) / a
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	closest := p1.Add(v.Scale(t))
	return closest.Dot(closest) > radius*radius
}
