package orbit

import "errors"

var (
	// ErrUnsupportedFeature is returned when a construction parameter asks for
	// behaviour the model does not implement (e.g. eccentric orbits).
	ErrUnsupportedFeature = errors.New("unsupported feature")

	// ErrNotFound is returned when removing a connection that is not present.
	ErrNotFound = errors.New("not found")
)
