package core

import (
	"fmt"
	"math"
	"sync"

	"github.com/signalsfoundry/orbit-kinematics/orbit"
)

// Model is a constellation: its orbital planes, the satellites riding on
// them, and the current simulation time in seconds. Satellites keep their
// insertion order, which strategies rely on for index-based topologies.
type Model struct {
	mu sync.RWMutex

	planes     []*orbit.OrbitalPlane
	planeByID  map[int]*orbit.OrbitalPlane
	satellites []*orbit.Satellite
	satByID    map[int]*orbit.Satellite
	byPlane    map[int][]*orbit.Satellite

	t float64
}

// NewModel returns an empty constellation at t = 0.
func NewModel() *Model {
	return &Model{
		planeByID: make(map[int]*orbit.OrbitalPlane),
		satByID:   make(map[int]*orbit.Satellite),
		byPlane:   make(map[int][]*orbit.Satellite),
	}
}

// AddPlane registers a plane. It returns an error if the ID is already present.
func (m *Model) AddPlane(p *orbit.OrbitalPlane) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.planeByID[p.ID()]; exists {
		return fmt.Errorf("orbital plane with ID %d already exists", p.ID())
	}
	m.planes = append(m.planes, p)
	m.planeByID[p.ID()] = p
	return nil
}

// AddSatellite registers a satellite. Its plane must already be registered.
func (m *Model) AddSatellite(s *orbit.Satellite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.satByID[s.ID()]; exists {
		return fmt.Errorf("satellite with ID %d already exists", s.ID())
	}
	if s.Plane() == nil {
		return fmt.Errorf("orbital plane not found for satellite %d", s.ID())
	}
	planeID := s.Plane().ID()
	if m.planeByID[planeID] != s.Plane() {
		return fmt.Errorf("orbital plane %d not found for satellite %d", planeID, s.ID())
	}
	m.satellites = append(m.satellites, s)
	m.satByID[s.ID()] = s
	m.byPlane[planeID] = append(m.byPlane[planeID], s)
	return nil
}

// Planes returns the registered planes in insertion order.
func (m *Model) Planes() []*orbit.OrbitalPlane {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*orbit.OrbitalPlane(nil), m.planes...)
}

// Satellites returns the registered satellites in insertion order.
func (m *Model) Satellites() []*orbit.Satellite {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*orbit.Satellite(nil), m.satellites...)
}

// Satellite looks up a satellite by ID.
func (m *Model) Satellite(id int) (*orbit.Satellite, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.satByID[id]
	return s, ok
}

// SatellitesInPlane returns the satellites on the given plane in insertion order.
func (m *Model) SatellitesInPlane(planeID int) []*orbit.Satellite {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*orbit.Satellite(nil), m.byPlane[planeID]...)
}

// T returns the current simulation time in seconds.
func (m *Model) T() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.t
}

// SetT moves the model to simulation time t (seconds).
func (m *Model) SetT(t float64) {
	m.mu.Lock()
	m.t = t
	m.mu.Unlock()
}

// WalkerConfig describes a Walker-style constellation of Planes planes with
// SatellitesPerPlane satellites each, all on the same circular shell.
type WalkerConfig struct {
	Planes             int     `toml:"planes"`
	SatellitesPerPlane int     `toml:"satellites_per_plane"`
	Phasing            int     `toml:"phasing"`
	SemimajorAxis      float64 `toml:"semimajor_axis"`
	Inclination        float64 `toml:"inclination"`
}

// BuildWalker adds a Walker constellation to m. Planes are spread evenly in
// longitude over 2π; satellite j on plane k sits at
// 2πj/S + 2πF·k/(P·S).
func BuildWalker(f *orbit.Factory, m *Model, cfg WalkerConfig) error {
	if cfg.Planes <= 0 || cfg.SatellitesPerPlane <= 0 {
		return fmt.Errorf("BuildWalker: need at least one plane and one satellite per plane, got %d x %d",
			cfg.Planes, cfg.SatellitesPerPlane)
	}

	total := float64(cfg.Planes * cfg.SatellitesPerPlane)
	for k := range cfg.Planes {
		lon := 2 * math.Pi * float64(k) / float64(cfg.Planes)
		plane, err := f.NewOrbitalPlane(0, cfg.SemimajorAxis, cfg.Inclination, lon)
		if err != nil {
			return fmt.Errorf("BuildWalker: plane %d: %w", k, err)
		}
		if err := m.AddPlane(plane); err != nil {
			return fmt.Errorf("BuildWalker: %w", err)
		}
		for j := range cfg.SatellitesPerPlane {
			arg := 2*math.Pi*float64(j)/float64(cfg.SatellitesPerPlane) +
				2*math.Pi*float64(cfg.Phasing*k)/total
			if err := m.AddSatellite(f.NewSatellite(plane, arg)); err != nil {
				return fmt.Errorf("BuildWalker: %w", err)
			}
		}
	}
	return nil
}
