// Package body models detected body landmarks and the joint geometry
// computed from them.
package body

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/okian/formcheck/internal/domain/skills"
)

// Point is a landmark position. Two dimensional points leave Z at zero.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// UnmarshalJSON accepts [x, y], [x, y, z] or {"x": .., "y": .., "z": ..}.
func (p *Point) UnmarshalJSON(data []byte) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var coords []float64
		if err := json.Unmarshal(trimmed, &coords); err != nil {
			return fmt.Errorf("point: %w", err)
		}
		switch len(coords) {
		case 2:
			*p = Point{X: coords[0], Y: coords[1]}
		case 3:
			*p = Point{X: coords[0], Y: coords[1], Z: coords[2]}
		default:
			return fmt.Errorf("point: want 2 or 3 coordinates, got %d", len(coords))
		}
		return nil
	}
	type plain Point
	var obj plain
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	*p = Point(obj)
	return nil
}

// Frame holds the landmarks detected in one photograph. A landmark that was
// not detected is simply absent.
type Frame map[skills.Landmark]Point

// Get returns the position of l and whether it was detected.
func (f Frame) Get(l skills.Landmark) (Point, bool) {
	p, ok := f[l]
	return p, ok
}

// WithMidHip returns a copy of f that also carries MID_HIP, the midpoint of
// both hips, when both hips were detected and MID_HIP is not already set.
func (f Frame) WithMidHip() Frame {
	out := make(Frame, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	if _, ok := out[skills.MidHip]; ok {
		return out
	}
	l, okL := f[skills.LeftHip]
	r, okR := f[skills.RightHip]
	if okL && okR {
		out[skills.MidHip] = Point{
			X: (l.X + r.X) / 2,
			Y: (l.Y + r.Y) / 2,
			Z: (l.Z + r.Z) / 2,
		}
	}
	return out
}
