package orbit

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"
)

const (
	testAxis        = 6_921_000.0
	testInclination = 0.6
	posTol          = 1e-3 // metres
)

func mustPlane(t *testing.T, f *Factory, inclination, longitude float64) *OrbitalPlane {
	t.Helper()
	p, err := f.NewOrbitalPlane(0, testAxis, inclination, longitude)
	if err != nil {
		t.Fatalf("NewOrbitalPlane: %v", err)
	}
	return p
}

func TestSatellitePositionMagnitudeAndVelocity(t *testing.T) {
	f := NewFactory()
	inclined := f.NewSatellite(mustPlane(t, f, testInclination, 0.8), 0.3)
	equatorial := f.NewSatellite(mustPlane(t, f, 0, 0.8), 0.3)
	speed := inclined.Plane().OrbitalSpeed()

	for _, tt := range []float64{-12345.6, -1, 0, 1, 600, 5400, 86400, 1e6} {
		for _, sat := range []*Satellite{inclined, equatorial} {
			if got := sat.Position(tt).Mag(); math.Abs(got-testAxis) > posTol {
				t.Fatalf("t=%v |position| = %v, want %v", tt, got, testAxis)
			}
			for name, vel := range map[string]Vector3D{
				"Velocity":        sat.Velocity(tt),
				"TangentVelocity": sat.TangentVelocity(tt),
			} {
				if got := vel.Mag(); math.Abs(got-speed) > 1e-9*speed {
					t.Fatalf("t=%v |%s| = %v, want %v", tt, name, got, speed)
				}
			}
		}

		// The quarter turn about the reference Y axis is orthogonal to the
		// position only on an equatorial plane.
		pos, vel := equatorial.Position(tt), equatorial.Velocity(tt)
		if cos := pos.Dot(vel) / (pos.Mag() * vel.Mag()); math.Abs(cos) > 1e-9 {
			t.Fatalf("t=%v equatorial velocity not orthogonal to position, cos=%v", tt, cos)
		}
		pos, vel = inclined.Position(tt), inclined.TangentVelocity(tt)
		if cos := pos.Dot(vel) / (pos.Mag() * vel.Mag()); math.Abs(cos) > 1e-9 {
			t.Fatalf("t=%v tangent velocity not orthogonal to position, cos=%v", tt, cos)
		}
	}
}

func TestSatelliteVelocityIsQuarterTurnOfReferencePosition(t *testing.T) {
	f := NewFactory()
	p := mustPlane(t, f, testInclination, 0)
	sat := f.NewSatellite(p, 0)

	// At t=0 the satellite sits on the X axis, which the inclination leaves
	// in place, so the quarter turn about Y points straight down -Z.
	want := NewVector3D(0, 0, -p.OrbitalSpeed())
	if got := sat.Velocity(0); !approxVec(got, want, 1e-6) {
		t.Fatalf("Velocity(0) = %v, want %v", got, want)
	}

	inclined := f.NewSatellite(mustPlane(t, f, testInclination, 1.1), 0.25)
	for _, tt := range []float64{0, 1000, 4000} {
		want := inclined.Position(tt).RotateY(math.Pi / 2).Unit().Scale(p.OrbitalSpeed())
		if got := inclined.Velocity(tt); !approxVec(got, want, 1e-6) {
			t.Fatalf("t=%v velocity %v, want %v", tt, got, want)
		}
	}
}

func TestSatelliteTangentVelocityMatchesFiniteDifference(t *testing.T) {
	f := NewFactory()
	p := mustPlane(t, f, testInclination, 1.1)
	sat := f.NewSatellite(p, 0.25)

	const h = 1e-3
	for _, tt := range []float64{0, 100, 4000} {
		fd := sat.Position(tt + h).Sub(sat.Position(tt - h)).Scale(1 / (2 * h))
		if !approxVec(fd, sat.TangentVelocity(tt), 1e-3) {
			t.Fatalf("t=%v tangent velocity %v, finite difference %v", tt, sat.TangentVelocity(tt), fd)
		}
	}
}

func TestSatelliteVelocityEquatorialMatchesTangent(t *testing.T) {
	f := NewFactory()
	p := mustPlane(t, f, 0, 0.7)
	sat := f.NewSatellite(p, 0.2)

	const h = 1e-3
	for _, tt := range []float64{0, 321, 2222} {
		if !approxVec(sat.Velocity(tt), sat.TangentVelocity(tt), 1e-6) {
			t.Fatalf("t=%v velocity %v, tangent %v", tt, sat.Velocity(tt), sat.TangentVelocity(tt))
		}
		fd := sat.Position(tt + h).Sub(sat.Position(tt - h)).Scale(1 / (2 * h))
		if !approxVec(fd, sat.Velocity(tt), 1e-3) {
			t.Fatalf("t=%v velocity %v, finite difference %v", tt, sat.Velocity(tt), fd)
		}
	}
}

func TestSatellitePositionIsPeriodic(t *testing.T) {
	f := NewFactory()
	p := mustPlane(t, f, testInclination, 2)
	sat := f.NewSatellite(p, 1)
	period := p.OrbitalPeriod()

	for _, tt := range []float64{-500, 0, 17, 3000, 50000} {
		if a, b := sat.Position(tt), sat.Position(tt+period); !approxVec(a, b, posTol) {
			t.Fatalf("t=%v position %v, one period later %v", tt, a, b)
		}
	}
}

func TestSatelliteTrueAnomalyWrapsNegativeTime(t *testing.T) {
	f := NewFactory()
	sat := f.NewSatellite(mustPlane(t, f, 0, 0), 0)
	w := sat.Plane().AngularSpeed()

	got := sat.TrueAnomaly(-1)
	if got < 0 || got >= 2*math.Pi {
		t.Fatalf("TrueAnomaly(-1) = %v, want value in [0, 2π)", got)
	}
	if want := 2*math.Pi - w; math.Abs(got-want) > 1e-12 {
		t.Fatalf("TrueAnomaly(-1) = %v, want %v", got, want)
	}
}

// Fixed angles with closed-form coordinates for Y(phase) -> X(i) -> Y(Ω).
func TestSatellitePositionRotationOrder(t *testing.T) {
	const (
		inc = 0.6
		lon = 0.3
		arg = 0.5
	)
	f := NewFactory()
	sat := f.NewSatellite(mustPlane(t, f, inc, lon), arg)

	r := testAxis
	want := NewVector3D(
		r*(math.Cos(arg)*math.Cos(lon)-math.Sin(arg)*math.Cos(inc)*math.Sin(lon)),
		r*math.Sin(arg)*math.Sin(inc),
		r*(-math.Cos(arg)*math.Sin(lon)-math.Sin(arg)*math.Cos(inc)*math.Cos(lon)),
	)
	got := sat.Position(0)
	if !approxVec(got, want, posTol) {
		t.Fatalf("Position(0) = %v, want %v", got, want)
	}

	reversed := NewVector3D(r, 0, 0).RotateY(lon).RotateX(inc).RotateY(arg)
	if approxVec(got, reversed, 1) {
		t.Fatalf("reversed rotation order produced the same position %v", reversed)
	}
}

func TestSatelliteTwoPlaneScenario(t *testing.T) {
	f := NewFactory()
	a := f.NewSatellite(mustPlane(t, f, testInclination, 0), 0)
	b := f.NewSatellite(mustPlane(t, f, testInclination, 1), 0)

	posA, posB := a.Position(0), b.Position(0)
	for name, pos := range map[string]Vector3D{"A": posA, "B": posB} {
		if math.Abs(pos.Mag()-testAxis) > posTol {
			t.Fatalf("|%s| = %v, want %v", name, pos.Mag(), testAxis)
		}
	}

	// (r,0,0) sits on the X axis, so the inclination leaves it in place.
	if want := NewVector3D(testAxis, 0, 0); !approxVec(posA, want, posTol) {
		t.Fatalf("A = %v, want %v", posA, want)
	}
	if want := NewVector3D(testAxis*math.Cos(1), 0, -testAxis*math.Sin(1)); !approxVec(posB, want, posTol) {
		t.Fatalf("B = %v, want %v", posB, want)
	}

	d := a.DistanceTo(b, 0)
	if d != posA.Sub(posB).Mag() {
		t.Fatalf("DistanceTo = %v, want %v", d, posA.Sub(posB).Mag())
	}
	if want := 2 * testAxis * math.Sin(0.5); math.Abs(d-want) > posTol {
		t.Fatalf("DistanceTo = %v, want %v", d, want)
	}
	if d <= 0 {
		t.Fatalf("DistanceTo = %v, want > 0", d)
	}
	if d != b.DistanceTo(a, 0) {
		t.Fatalf("distance not symmetric")
	}
}

func TestSatelliteSharesPlane(t *testing.T) {
	f := NewFactory()
	p := mustPlane(t, f, 0, 0)
	s1 := f.NewSatellite(p, 0)
	s2 := f.NewSatellite(p, math.Pi)
	if s1.Plane() != s2.Plane() {
		t.Fatalf("satellites do not share the plane")
	}
	if d := s1.DistanceTo(s2, 1234); math.Abs(d-2*testAxis) > posTol {
		t.Fatalf("opposite satellites distance = %v, want %v", d, 2*testAxis)
	}
}

func TestSatelliteConnections(t *testing.T) {
	f := NewFactory()
	sat := f.NewSatellite(mustPlane(t, f, 0, 0), 0)

	if sat.ConnectionCount() != 0 {
		t.Fatalf("new satellite has connections %v", sat.Connections())
	}

	sat.Connect(7)
	sat.Connect(3)
	before := sat.Connections()
	sat.Connect(7)
	if got := sat.Connections(); !slices.Equal(got, before) {
		t.Fatalf("second Connect changed set: %v -> %v", before, got)
	}
	if !slices.Equal(before, []int{3, 7}) {
		t.Fatalf("Connections = %v, want [3 7]", before)
	}

	sat.Connect(9)
	if err := sat.Disconnect(9); err != nil {
		t.Fatalf("Disconnect(9): %v", err)
	}
	if got := sat.Connections(); !slices.Equal(got, before) {
		t.Fatalf("connect+disconnect did not restore set: %v", got)
	}

	err := sat.Disconnect(42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Disconnect(42) err = %v, want ErrNotFound", err)
	}
	if got := sat.Connections(); !slices.Equal(got, before) {
		t.Fatalf("failed Disconnect mutated set: %v", got)
	}
	if sat.IsConnected(42) || !sat.IsConnected(3) {
		t.Fatalf("IsConnected mismatch")
	}
}

func TestSatelliteConcurrentConnect(t *testing.T) {
	f := NewFactory()
	sat := f.NewSatellite(mustPlane(t, f, 0, 0), 0)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sat.Connect(id % 10)
			_ = sat.Position(float64(id))
		}(i)
	}
	wg.Wait()

	if got := sat.ConnectionCount(); got != 10 {
		t.Fatalf("ConnectionCount = %d, want 10", got)
	}
}
