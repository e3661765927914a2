package path

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDegeneratePath is returned for geometry that has no usable arc length:
	// zero or non-finite lengths, zero radius or zero arc.
	ErrDegeneratePath = errors.New("degenerate path")
	// ErrOutOfRange is returned when a position lies outside [0, 1] or when an
	// empty path is queried.
	ErrOutOfRange = errors.New("position out of range")
)

// Segment is a piece of path geometry parameterized by fractional arc length.
//
// At(0) is always the identity pose. At(1) is the segment's exit pose and is what a
// CompoundPath uses to place the following segment.
type Segment interface {
	// Length returns the arc length of the segment.
	Length() float64
	// At returns the pose at fractional distance position in [0, 1] along the segment.
	At(position float64) (Pose, error)
}

// Curved is implemented by segments that can report their signed curvature.
// Positive curvature turns counter-clockwise.
type Curved interface {
	CurvatureAt(position float64) (float64, error)
}

func checkPosition(position float64) error {
	if math.IsNaN(position) || position < 0 || position > 1 {
		return fmt.Errorf("%w: %v not in [0, 1]", ErrOutOfRange, position)
	}
	return nil
}

// LinearSegment is a straight line along the local +X axis.
type LinearSegment struct {
	length float64
}

// NewLinearSegment returns a straight segment of the given length.
func NewLinearSegment(length float64) (LinearSegment, error) {
	if !finite(length) || length <= 0 {
		return LinearSegment{}, fmt.Errorf("%w: linear segment length %v", ErrDegeneratePath, length)
	}
	return LinearSegment{length: length}, nil
}

func (s LinearSegment) Length() float64 { return s.length }

func (s LinearSegment) At(position float64) (Pose, error) {
	if err := checkPosition(position); err != nil {
		return Pose{}, err
	}
	return Pose{Position: Vector{X: position * s.length}}, nil
}

func (s LinearSegment) CurvatureAt(position float64) (float64, error) {
	if err := checkPosition(position); err != nil {
		return 0, err
	}
	return 0, nil
}

// Data returns the document form of the segment.
func (s LinearSegment) Data() SegmentData {
	return SegmentData{Type: LinearSegmentType, Length: s.length}
}

func (s LinearSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Data())
}

// CircleSegment is a circular arc of a given radius. Arc is the signed swept angle in
// radians: positive arcs turn counter-clockwise (towards +Y), negative arcs clockwise.
type CircleSegment struct {
	radius float64
	arc    float64
}

// NewCircleSegment returns an arc of the given radius sweeping arc radians.
func NewCircleSegment(radius, arc float64) (CircleSegment, error) {
	if !finite(radius) || radius <= 0 {
		return CircleSegment{}, fmt.Errorf("%w: circle segment radius %v", ErrDegeneratePath, radius)
	}
	if !finite(arc) || arc == 0 {
		return CircleSegment{}, fmt.Errorf("%w: circle segment arc %v", ErrDegeneratePath, arc)
	}
	return CircleSegment{radius: radius, arc: arc}, nil
}

func (s CircleSegment) Radius() float64 { return s.radius }
func (s CircleSegment) Arc() float64    { return s.arc }

func (s CircleSegment) Length() float64 { return math.Abs(s.arc) * s.radius }

// At rotates the vector from the turn center to the start point by the swept angle and
// returns the resulting displacement from the start point.
func (s CircleSegment) At(position float64) (Pose, error) {
	if err := checkPosition(position); err != nil {
		return Pose{}, err
	}
	toStart := Vector{Y: -s.radius * math.Copysign(1, s.arc)}
	swept := Radians(s.arc * position)
	return Pose{
		Position: swept.Transform(toStart).Sub(toStart),
		Heading:  swept,
	}, nil
}

func (s CircleSegment) CurvatureAt(position float64) (float64, error) {
	if err := checkPosition(position); err != nil {
		return 0, err
	}
	return math.Copysign(1/s.radius, s.arc), nil
}

// Data returns the document form of the segment.
func (s CircleSegment) Data() SegmentData {
	return SegmentData{Type: CircleSegmentType, Radius: s.radius, Arc: s.arc}
}

func (s CircleSegment) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Data())
}
