package body

import (
	"errors"
	"math"
)

// ErrDegenerateGeometry is returned when a ray of the angle has zero or
// unrepresentable length, so the angle is undefined.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Angle returns the angle at vertex between the rays vertex→a and vertex→c,
// in degrees within [0, 180]. It never returns NaN.
func Angle(a, vertex, c Point) (float64, error) {
	u := a.sub(vertex)
	v := c.sub(vertex)

	nu, nv := u.norm(), v.norm()
	if !usable(nu) || !usable(nv) {
		return 0, ErrDegenerateGeometry
	}

	// Unit vectors keep the dot product bounded at any coordinate scale.
	cos := u.scale(1 / nu).dot(v.scale(1 / nv))
	if math.IsNaN(cos) || math.IsInf(cos, 0) {
		return 0, ErrDegenerateGeometry
	}
	// Rounding can push the cosine just past ±1, where Acos is NaN.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, nil
}

// usable reports whether a ray length can be normalized.
func usable(n float64) bool {
	return n > 0 && !math.IsInf(n, 0) && !math.IsNaN(n) && !math.IsInf(1/n, 0)
}

func (p Point) sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

func (p Point) scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k, Z: p.Z * k}
}

func (p Point) dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// norm is the Euclidean length, computed without intermediate overflow or
// underflow.
func (p Point) norm() float64 {
	return math.Hypot(math.Hypot(p.X, p.Y), p.Z)
}
