package kinematics

import (
	"errors"
	"fmt"
	"math"

	"github.com/rabid-robot/motion-engine/internal/path"
)

// ErrInvalidRobot is returned for chassis dimensions that are not positive.
var ErrInvalidRobot = errors.New("invalid robot geometry")

// WheelPositions holds the ground-contact points of both wheels.
type WheelPositions struct {
	Left  path.Vector
	Right path.Vector
}

// TwoWheelRobot is a differential-drive chassis. The left wheel sits at (0, -wheelbase/2)
// and the right wheel at (0, +wheelbase/2) in the robot's own frame.
type TwoWheelRobot struct {
	wheelbase     float64 // distance between the wheels' contact points
	wheelDiameter float64
}

// NewTwoWheelRobot returns a chassis with the given wheel spacing and diameter.
func NewTwoWheelRobot(wheelbase, wheelDiameter float64) (TwoWheelRobot, error) {
	if math.IsNaN(wheelbase) || math.IsInf(wheelbase, 0) || wheelbase <= 0 {
		return TwoWheelRobot{}, fmt.Errorf("%w: wheelbase %v", ErrInvalidRobot, wheelbase)
	}
	if math.IsNaN(wheelDiameter) || math.IsInf(wheelDiameter, 0) || wheelDiameter <= 0 {
		return TwoWheelRobot{}, fmt.Errorf("%w: wheel diameter %v", ErrInvalidRobot, wheelDiameter)
	}
	return TwoWheelRobot{wheelbase: wheelbase, wheelDiameter: wheelDiameter}, nil
}

func (r TwoWheelRobot) Wheelbase() float64     { return r.wheelbase }
func (r TwoWheelRobot) WheelDiameter() float64 { return r.wheelDiameter }

// WheelPositionAt places the robot's center on p at position and returns where both
// wheels touch the ground.
func (r TwoWheelRobot) WheelPositionAt(p path.Segment, position float64) (WheelPositions, error) {
	pose, err := p.At(position)
	if err != nil {
		return WheelPositions{}, err
	}
	return r.WheelPositions(pose), nil
}

// WheelPositions returns the wheel contact points for a robot centered at pose.
func (r TwoWheelRobot) WheelPositions(pose path.Pose) WheelPositions {
	left := path.Vector{Y: -r.wheelbase / 2}
	right := left.Mul(-1)
	return WheelPositions{
		Left:  pose.Position.Add(pose.Heading.Transform(left)),
		Right: pose.Position.Add(pose.Heading.Transform(right)),
	}
}

// WheelVelocities splits a center velocity v on a path of signed curvature into the
// ground velocities of each wheel. A counter-clockwise turn (positive curvature) puts
// the left wheel on the outside.
func (r TwoWheelRobot) WheelVelocities(v, curvature float64) (left, right float64) {
	d := curvature * r.wheelbase / 2
	return v * (1 + d), v * (1 - d)
}

// Revolutions returns how many turns a wheel makes rolling distance along the ground.
func (r TwoWheelRobot) Revolutions(distance float64) float64 {
	return distance / (math.Pi * r.wheelDiameter)
}
