package kinematics

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// RampModelName is the document discriminator string for the Ramp profile.
const RampModelName = "ramp"

// ErrInvalidProfile is returned for profile parameters that cannot describe motion.
var ErrInvalidProfile = errors.New("invalid profile parameters")

// Ramp implements Profile as a symmetric trapezoidal velocity profile: accelerate at
// the maximum rate, cruise at the maximum velocity, then decelerate at the same rate.
// When the length is too short to reach the maximum velocity the cruise phase is
// dropped and the profile is triangular.
//
// Ramp is a value; every query recomputes from its three parameters.
type Ramp struct {
	length          float64
	maxVelocity     float64 // length units per second
	maxAcceleration float64 // length units per second²
}

var _ Profile = Ramp{}

// NewRamp returns a ramp covering length. maxVelocity and maxAcceleration must be
// positive; a zero length yields a profile that has already arrived.
func NewRamp(length, maxVelocity, maxAcceleration float64) (Ramp, error) {
	if math.IsNaN(length) || math.IsInf(length, 0) || length < 0 {
		return Ramp{}, fmt.Errorf("%w: length %v", ErrInvalidProfile, length)
	}
	if math.IsNaN(maxVelocity) || math.IsInf(maxVelocity, 0) || maxVelocity <= 0 {
		return Ramp{}, fmt.Errorf("%w: max velocity %v", ErrInvalidProfile, maxVelocity)
	}
	if math.IsNaN(maxAcceleration) || math.IsInf(maxAcceleration, 0) || maxAcceleration <= 0 {
		return Ramp{}, fmt.Errorf("%w: max acceleration %v", ErrInvalidProfile, maxAcceleration)
	}
	r := Ramp{length: length, maxVelocity: maxVelocity, maxAcceleration: maxAcceleration}
	if rs, fs := r.segmentSeconds(); rs+fs >= maxSeconds {
		return Ramp{}, fmt.Errorf("%w: duration %gs overflows time.Duration", ErrInvalidProfile, rs+fs)
	}
	return r, nil
}

// maxSeconds is the longest duration, in seconds, a time.Duration can hold.
var maxSeconds = float64(math.MaxInt64) / float64(time.Second)

func (r Ramp) Length() float64          { return r.length }
func (r Ramp) MaxVelocity() float64     { return r.maxVelocity }
func (r Ramp) MaxAcceleration() float64 { return r.maxAcceleration }

// segmentSeconds returns the combined acceleration and deceleration time and the
// cruise time, in seconds.
func (r Ramp) segmentSeconds() (ramp, fullSpeed float64) {
	if r.length <= 0 || r.maxVelocity <= 0 || r.maxAcceleration <= 0 {
		return 0, 0
	}
	ramp = 2 * math.Sqrt(r.length/r.maxAcceleration)
	if ramp/2*r.maxAcceleration <= r.maxVelocity {
		return ramp, 0
	}
	// The triangle would overshoot the maximum velocity: accelerate to it, cruise, brake.
	ramp = 2 * r.maxVelocity / r.maxAcceleration
	rampLength := ramp / 2 * r.maxVelocity
	return ramp, (r.length - rampLength) / r.maxVelocity
}

// SegmentDuration returns the time spent accelerating plus decelerating, and the time
// spent cruising at maximum velocity.
func (r Ramp) SegmentDuration() (ramp, fullSpeed time.Duration) {
	rs, fs := r.segmentSeconds()
	return seconds(rs), seconds(fs)
}

func (r Ramp) TotalDuration() time.Duration {
	rs, fs := r.segmentSeconds()
	return seconds(rs + fs)
}

// PeakVelocity returns the highest velocity reached, which is below MaxVelocity for
// triangular profiles.
func (r Ramp) PeakVelocity() float64 {
	rs, _ := r.segmentSeconds()
	return rs / 2 * r.maxAcceleration
}

func (r Ramp) PositionAt(elapsed time.Duration) float64 {
	if elapsed >= r.TotalDuration() {
		return r.length
	}
	t := elapsed.Seconds()
	if t <= 0 {
		return 0
	}

	rs, fs := r.segmentSeconds()
	half := rs / 2
	a := r.maxAcceleration
	if t <= half {
		return math.Min(r.length, 0.5*a*t*t)
	}

	accelDist := 0.5 * a * half * half
	t -= half
	pos := accelDist + math.Min(fs, t)*r.maxVelocity
	if t -= fs; t > 0 {
		left := half - math.Min(t, half)
		pos += accelDist - 0.5*a*left*left
	}
	return math.Max(0, math.Min(r.length, pos))
}

func (r Ramp) VelocityAt(elapsed time.Duration) float64 {
	if elapsed >= r.TotalDuration() {
		return 0
	}
	t := elapsed.Seconds()
	if t <= 0 {
		return 0
	}

	rs, fs := r.segmentSeconds()
	half := rs / 2
	a := r.maxAcceleration
	switch {
	case t <= half:
		return a * t
	case t-half <= fs:
		return a * half
	default:
		return math.Max(0, a*(half-(t-half-fs)))
	}
}

func (r Ramp) PhaseAt(elapsed time.Duration) Phase {
	if elapsed >= r.TotalDuration() {
		return PhaseArrived
	}
	rs, fs := r.segmentSeconds()
	half := rs / 2
	t := elapsed.Seconds()
	switch {
	case t < half:
		return PhaseAccelerating
	case t-half < fs:
		return PhaseCruising
	default:
		return PhaseDecelerating
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
