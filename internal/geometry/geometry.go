// Package geometry provides the vector primitives used by pose and room analysis.
package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Angle returns the angle in degrees at vertex b formed by the rays b→a and b→c.
// Only the X and Y components are used, matching image-plane landmark geometry.
// The result is always in [0, 180]; reflex angles are folded back (360 - angle),
// so Angle(a, b, c) == Angle(c, b, a).
func Angle(a, b, c r3.Vector) float64 {
	radians := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	angle := math.Abs(radians * 180.0 / math.Pi)
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// Distance3D returns the Euclidean distance between a and b.
func Distance3D(a, b r3.Vector) float64 {
	return a.Sub(b).Norm()
}

// Distance2D returns the Euclidean distance between a and b ignoring Z.
func Distance2D(a, b r3.Vector) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b r3.Vector) r3.Vector {
	return a.Add(b).Mul(0.5)
}

// Tilt returns the absolute inclination in degrees of the segment a→b relative to
// the horizontal image axis, folded into [0, 90].
func Tilt(a, b r3.Vector) float64 {
	deg := math.Abs(math.Atan2(b.Y-a.Y, b.X-a.X) * 180.0 / math.Pi)
	if deg > 90.0 {
		deg = 180.0 - deg
	}
	return deg
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent limits v to [0, 100].
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}
