package path

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertPose(t *testing.T, want, got Pose) {
	t.Helper()
	assert.InDelta(t, want.Position.X, got.Position.X, eps, "x")
	assert.InDelta(t, want.Position.Y, got.Position.Y, eps, "y")
	assert.InDelta(t, want.Heading.Radians(), got.Heading.Radians(), eps, "heading")
}

func TestLinearSegmentLength(t *testing.T) {
	s, err := NewLinearSegment(10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, s.Length())
}

func TestLinearSegmentAt(t *testing.T) {
	s, err := NewLinearSegment(10)
	require.NoError(t, err)

	start, err := s.At(0)
	require.NoError(t, err)
	assert.Equal(t, Pose{}, start)

	end, err := s.At(1)
	require.NoError(t, err)
	assert.Equal(t, Pose{Position: Vector{X: 10}}, end)

	for _, p := range []float64{0.1, 0.25, 0.5, 0.9} {
		got, err := s.At(p)
		require.NoError(t, err)
		assert.InDelta(t, 10*p, got.Position.X, 1e-12)
		assert.Zero(t, got.Position.Y)
		assert.Zero(t, got.Heading.Radians())
	}
}

func TestCircleSegmentLength(t *testing.T) {
	s, err := NewCircleSegment(4, -math.Pi/2)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi, s.Length(), 1e-12)
}

func TestCircleSegmentAt(t *testing.T) {
	tests := []struct {
		name string
		arc  float64
		want Pose
	}{
		{"quarter turn left", math.Pi / 2, Pose{Position: Vector{X: 4, Y: 4}, Heading: Radians(math.Pi / 2)}},
		{"quarter turn right", -math.Pi / 2, Pose{Position: Vector{X: 4, Y: -4}, Heading: Radians(-math.Pi / 2)}},
		{"half turn left", math.Pi, Pose{Position: Vector{X: 0, Y: 8}, Heading: Radians(math.Pi)}},
		{"full turn", 2 * math.Pi, Pose{Position: Vector{}, Heading: Radians(2 * math.Pi)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewCircleSegment(4, tt.arc)
			require.NoError(t, err)

			start, err := s.At(0)
			require.NoError(t, err)
			assertPose(t, Pose{}, start)

			end, err := s.At(1)
			require.NoError(t, err)
			assertPose(t, tt.want, end)
		})
	}
}

func TestCircleSegmentStaysOnCircle(t *testing.T) {
	s, err := NewCircleSegment(3, 1.5*math.Pi)
	require.NoError(t, err)
	center := Vector{Y: 3}
	for p := 0.0; p <= 1; p += 0.05 {
		pose, err := s.At(p)
		require.NoError(t, err)
		assert.InDelta(t, 3, pose.Position.Sub(center).Norm(), 1e-9)
	}
}

func TestCircleSegmentCurvature(t *testing.T) {
	left, err := NewCircleSegment(5, 1)
	require.NoError(t, err)
	right, err := NewCircleSegment(5, -1)
	require.NoError(t, err)

	c, err := left.CurvatureAt(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, c, 1e-12)

	c, err = right.CurvatureAt(0.5)
	require.NoError(t, err)
	assert.InDelta(t, -0.2, c, 1e-12)
}

func TestDegenerateSegments(t *testing.T) {
	_, err := NewLinearSegment(0)
	assert.ErrorIs(t, err, ErrDegeneratePath)
	_, err = NewLinearSegment(-1)
	assert.ErrorIs(t, err, ErrDegeneratePath)
	_, err = NewLinearSegment(math.Inf(1))
	assert.ErrorIs(t, err, ErrDegeneratePath)
	_, err = NewCircleSegment(0, 1)
	assert.ErrorIs(t, err, ErrDegeneratePath)
	_, err = NewCircleSegment(1, 0)
	assert.ErrorIs(t, err, ErrDegeneratePath)
	_, err = NewCircleSegment(math.NaN(), 1)
	assert.ErrorIs(t, err, ErrDegeneratePath)
}

func TestSegmentAtOutOfRange(t *testing.T) {
	line, err := NewLinearSegment(1)
	require.NoError(t, err)
	arc, err := NewCircleSegment(1, 1)
	require.NoError(t, err)

	for _, s := range []Segment{line, arc} {
		for _, p := range []float64{-0.01, 1.01, math.NaN()} {
			_, err := s.At(p)
			assert.ErrorIs(t, err, ErrOutOfRange, "%T.At(%v)", s, p)
		}
	}
}

func TestSegmentMarshalJSON(t *testing.T) {
	line, err := NewLinearSegment(10)
	require.NoError(t, err)
	out, err := json.Marshal(line)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"linear","length":10}`, string(out))

	arc, err := NewCircleSegment(10, math.Pi/2)
	require.NoError(t, err)
	out, err = json.Marshal(arc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"circle","radius":10,"arc":1.5707963267948966}`, string(out))
}

func TestRotation(t *testing.T) {
	r := Radians(math.Pi / 2)
	v := r.Transform(Vector{X: 1})
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 1, v.Y, 1e-12)

	assert.InDelta(t, math.Pi, r.Compose(r).Radians(), 1e-12)
	assert.NotEqual(t, Radians(0), Radians(2*math.Pi))
}
