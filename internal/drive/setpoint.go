// Package drive is the boundary between the motion engine and the motor controller.
// It turns wheel velocities into normalized setpoints and encodes them for the
// controller's speed registers. It never talks to hardware itself.
package drive

import (
	"context"
	"math"
)

// Setpoint is a pair of wheel speeds normalized to [-1, 1], where 1 is full speed forward.
type Setpoint struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Stop is the setpoint that halts both wheels.
var Stop = Setpoint{}

// NewSetpoint normalizes wheel velocities by maxVelocity and clamps them to [-1, 1].
// A non-positive maxVelocity yields Stop.
func NewSetpoint(left, right, maxVelocity float64) Setpoint {
	if maxVelocity <= 0 || math.IsNaN(maxVelocity) {
		return Stop
	}
	return Setpoint{
		Left:  clamp(left / maxVelocity),
		Right: clamp(right / maxVelocity),
	}
}

// EncodeMD23 converts a normalized speed to the MD23 speed register value: 0 is full
// reverse, 128 is stop and 255 is full forward.
func EncodeMD23(speed float64) uint8 {
	return uint8(clamp(speed)*127 + 128)
}

// MD23 returns the register values for speed1 (left) and speed2 (right).
func (s Setpoint) MD23() [2]uint8 {
	return [2]uint8{EncodeMD23(s.Left), EncodeMD23(s.Right)}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

// Driver accepts setpoints. Implementations own the actuator loop.
type Driver interface {
	Drive(ctx context.Context, s Setpoint) error
	Stop(ctx context.Context) error
}
