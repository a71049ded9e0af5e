// core/scenario_loader.go
package core

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/signalsfoundry/orbit-kinematics/orbit"
)

// Scenario is the decoded form of a TOML scenario file.
type Scenario struct {
	Epoch   time.Time     `toml:"epoch"`
	GM      float64       `toml:"gm"`
	Walker  *WalkerConfig `toml:"walker"`
	Planes  []PlaneSpec   `toml:"plane"`
	Tracked []TrackedSpec `toml:"tracked"`
}

// PlaneSpec describes one explicit orbital plane and its satellites. When
// ArgPeriapsis is empty, Satellites are phased evenly starting at
// PhaseOffset.
type PlaneSpec struct {
	Eccentricity  float64   `toml:"eccentricity"`
	SemimajorAxis float64   `toml:"semimajor_axis"`
	Inclination   float64   `toml:"inclination"`
	Longitude     float64   `toml:"longitude"`
	Satellites    int       `toml:"satellites"`
	PhaseOffset   float64   `toml:"phase_offset"`
	ArgPeriapsis  []float64 `toml:"arg_periapsis"`
}

// TrackedSpec is an external object propagated from its TLE.
type TrackedSpec struct {
	Name  string `toml:"name"`
	Line1 string `toml:"line1"`
	Line2 string `toml:"line2"`
}

// LoadScenario decodes a TOML scenario from r and validates it.
//
// Unlike the orbit package, the loader rejects non-positive semimajor axes:
// a scenario file is user input and a zero radius is always a mistake there.
// Eccentricity is left to the plane constructor so the unsupported-feature
// error surfaces unchanged from Build.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	md, err := toml.NewDecoder(r).Decode(&sc)
	if err != nil {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("LoadScenario: unknown keys %v", undecoded)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("LoadScenario: %w", err)
	}
	return &sc, nil
}

// LoadScenarioFile opens path and calls LoadScenario.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadScenario: %w", err)
	}
	defer f.Close()
	return LoadScenario(f)
}

// Validate checks structural constraints that do not depend on the
// orbit package.
func (sc *Scenario) Validate() error {
	if sc.GM < 0 {
		return fmt.Errorf("gm must be positive, got %g", sc.GM)
	}
	if sc.Walker == nil && len(sc.Planes) == 0 {
		return fmt.Errorf("scenario defines no walker and no planes")
	}
	if w := sc.Walker; w != nil {
		if w.Planes <= 0 || w.SatellitesPerPlane <= 0 {
			return fmt.Errorf("walker needs planes and satellites_per_plane > 0")
		}
		if !(w.SemimajorAxis > 0) {
			return fmt.Errorf("walker semimajor_axis must be positive, got %g", w.SemimajorAxis)
		}
	}
	for i, p := range sc.Planes {
		if !(p.SemimajorAxis > 0) {
			return fmt.Errorf("plane %d: semimajor_axis must be positive, got %g", i, p.SemimajorAxis)
		}
		if p.Satellites < 0 {
			return fmt.Errorf("plane %d: satellites must not be negative", i)
		}
		if len(p.ArgPeriapsis) > 0 && p.Satellites > 0 && p.Satellites != len(p.ArgPeriapsis) {
			return fmt.Errorf("plane %d: satellites=%d does not match %d arg_periapsis values",
				i, p.Satellites, len(p.ArgPeriapsis))
		}
	}
	if len(sc.Tracked) > 0 && sc.Epoch.IsZero() {
		return fmt.Errorf("tracked objects need an epoch")
	}
	for i, tr := range sc.Tracked {
		if tr.Line1 == "" || tr.Line2 == "" {
			return fmt.Errorf("tracked %d (%q): both TLE lines are required", i, tr.Name)
		}
	}
	return nil
}

// Build constructs the model and tracked objects described by the scenario.
// A nil factory means a fresh one using the scenario's GM.
func (sc *Scenario) Build(f *orbit.Factory) (*Model, []*SGP4MotionModel, error) {
	if f == nil {
		var opts []orbit.FactoryOption
		if sc.GM > 0 {
			opts = append(opts, orbit.WithGM(sc.GM))
		}
		f = orbit.NewFactory(opts...)
	}

	m := NewModel()
	if sc.Walker != nil {
		if err := BuildWalker(f, m, *sc.Walker); err != nil {
			return nil, nil, err
		}
	}

	for i, spec := range sc.Planes {
		plane, err := f.NewOrbitalPlane(spec.Eccentricity, spec.SemimajorAxis, spec.Inclination, spec.Longitude)
		if err != nil {
			return nil, nil, fmt.Errorf("plane %d: %w", i, err)
		}
		if err := m.AddPlane(plane); err != nil {
			return nil, nil, err
		}
		for _, arg := range spec.phases() {
			if err := m.AddSatellite(f.NewSatellite(plane, arg)); err != nil {
				return nil, nil, err
			}
		}
	}

	tracked := make([]*SGP4MotionModel, 0, len(sc.Tracked))
	for _, tr := range sc.Tracked {
		tracked = append(tracked, NewSGP4MotionModel(tr.Name, tr.Line1, tr.Line2, sc.Epoch))
	}
	return m, tracked, nil
}

func (p PlaneSpec) phases() []float64 {
	if len(p.ArgPeriapsis) > 0 {
		return p.ArgPeriapsis
	}
	phases := make([]float64, p.Satellites)
	for j := range phases {
		phases[j] = p.PhaseOffset + 2*math.Pi*float64(j)/float64(p.Satellites)
	}
	return phases
}
