package orbit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	xAxis = r3.Vec{X: 1}
	yAxis = r3.Vec{Y: 1}
)

// Vector3D is a Cartesian vector in metres (or m/s for velocities).
// All operations return new values and leave the receiver unchanged.
type Vector3D struct {
	X, Y, Z float64
}

// NewVector3D builds a vector from its Cartesian components.
func NewVector3D(x, y, z float64) Vector3D {
	return Vector3D{X: x, Y: y, Z: z}
}

func fromR3(v r3.Vec) Vector3D { return Vector3D{X: v.X, Y: v.Y, Z: v.Z} }

func (v Vector3D) r3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// RotateX rotates v by angle radians about the X axis (right-handed).
func (v Vector3D) RotateX(angle float64) Vector3D {
	return fromR3(r3.NewRotation(angle, xAxis).Rotate(v.r3()))
}

// RotateY rotates v by angle radians about the Y axis (right-handed).
func (v Vector3D) RotateY(angle float64) Vector3D {
	return fromR3(r3.NewRotation(angle, yAxis).Rotate(v.r3()))
}

// Mag returns the Euclidean magnitude.
func (v Vector3D) Mag() float64 {
	return r3.Norm(v.r3())
}

// Unit returns the vector of magnitude 1 pointing along v. The direction of
// a zero vector is undefined, so every component of the result is NaN.
func (v Vector3D) Unit() Vector3D {
	m := v.Mag()
	if m == 0 {
		nan := math.NaN()
		return Vector3D{X: nan, Y: nan, Z: nan}
	}
	return v.Scale(1 / m)
}

// Add returns v + other.
func (v Vector3D) Add(other Vector3D) Vector3D {
	return fromR3(r3.Add(v.r3(), other.r3()))
}

// Sub returns v - other.
func (v Vector3D) Sub(other Vector3D) Vector3D {
	return fromR3(r3.Sub(v.r3(), other.r3()))
}

// Scale returns f * v.
func (v Vector3D) Scale(f float64) Vector3D {
	return fromR3(r3.Scale(f, v.r3()))
}

// Dot returns the dot product of v and other.
func (v Vector3D) Dot(other Vector3D) float64 {
	return r3.Dot(v.r3(), other.r3())
}

// IsFinite reports whether every component is a finite number.
func (v Vector3D) IsFinite() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (v Vector3D) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
