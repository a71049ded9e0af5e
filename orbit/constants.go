package orbit

const (
	// GM is Earth's standard gravitational parameter in m^3 s^-2.
	GM = 3.986004418e14

	// EarthRadius is the mean Earth radius in metres.
	EarthRadius = 6.371e6
)
