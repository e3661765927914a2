// Package path provides the geometric path model of the motion engine: straight and
// circular segments, and compound paths that chain segments into one continuous
// arc-length-parameterized curve.
//
// All positions passed to At are fractions of arc length in [0, 1]. Poses are expressed
// in the path's own frame: every path starts at the origin heading along +X.
package path

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// Vector is a 2D point or displacement.
type Vector = r2.Point

// Rotation is a planar rotation. Rotations compose by adding their angles and compare
// by angle, so a full turn is not equal to the identity.
type Rotation struct {
	Angle s1.Angle
}

// Radians returns a rotation of rad radians. Positive values turn counter-clockwise.
func Radians(rad float64) Rotation {
	return Rotation{Angle: s1.Angle(rad) * s1.Radian}
}

// Radians returns the rotation angle in radians.
func (r Rotation) Radians() float64 { return r.Angle.Radians() }

// Compose returns r followed by o.
func (r Rotation) Compose(o Rotation) Rotation {
	return Rotation{Angle: r.Angle + o.Angle}
}

// Transform rotates v by r.
func (r Rotation) Transform(v Vector) Vector {
	sin, cos := math.Sincos(r.Radians())
	return Vector{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Pose is a position paired with a heading.
type Pose struct {
	Position Vector
	Heading  Rotation
}

// Then maps a pose expressed in p's local frame into the frame p itself lives in.
func (p Pose) Then(local Pose) Pose {
	return Pose{
		Position: p.Heading.Transform(local.Position).Add(p.Position),
		Heading:  p.Heading.Compose(local.Heading),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
