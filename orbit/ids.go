package orbit

import "sync/atomic"

// IDCounter hands out monotonically increasing integer identities.
// Values are never reused. Safe for concurrent use.
type IDCounter struct {
	next atomic.Int64
}

// NewIDCounter returns a counter whose first Next call yields start.
func NewIDCounter(start int) *IDCounter {
	c := &IDCounter{}
	c.next.Store(int64(start))
	return c
}

// Next returns the current value and advances the counter.
func (c *IDCounter) Next() int {
	return int(c.next.Add(1) - 1)
}

// Peek returns the value the next call to Next will yield.
func (c *IDCounter) Peek() int {
	return int(c.next.Load())
}

// Factory constructs planes and satellites, drawing identities from two
// independent counters.
type Factory struct {
	gm           float64
	planeIDs     *IDCounter
	satelliteIDs *IDCounter
}

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithPlaneIDs injects the counter used for orbital plane identities.
func WithPlaneIDs(c *IDCounter) FactoryOption {
	return func(f *Factory) { f.planeIDs = c }
}

// WithSatelliteIDs injects the counter used for satellite identities.
func WithSatelliteIDs(c *IDCounter) FactoryOption {
	return func(f *Factory) { f.satelliteIDs = c }
}

// WithGM overrides the gravitational parameter of the orbited body.
func WithGM(gm float64) FactoryOption {
	return func(f *Factory) { f.gm = gm }
}

// NewFactory returns a factory for Earth orbits with both counters starting at 0.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{gm: GM}
	for _, opt := range opts {
		opt(f)
	}
	if f.planeIDs == nil {
		f.planeIDs = NewIDCounter(0)
	}
	if f.satelliteIDs == nil {
		f.satelliteIDs = NewIDCounter(0)
	}
	return f
}

// GM returns the gravitational parameter used for new planes.
func (f *Factory) GM() float64 { return f.gm }
