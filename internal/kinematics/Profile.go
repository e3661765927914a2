// Package kinematics turns path geometry into motion: the time-domain velocity profile
// that covers a path's length, and the wheel geometry of a two-wheel chassis following it.
//
// Adding a new velocity profile requires only implementing Profile; the drive engine
// never needs to change.
package kinematics

import "time"

// Phase names the part of a profile a vehicle is in at a given instant.
type Phase string

const (
	PhaseAccelerating Phase = "accelerating"
	PhaseCruising     Phase = "cruising"
	PhaseDecelerating Phase = "decelerating"
	PhaseArrived      Phase = "arrived"
)

// Profile maps elapsed time to distance travelled along a fixed length.
// Distances are in the caller's length unit, velocities in that unit per second.
type Profile interface {
	// Length returns the distance the profile covers.
	Length() float64

	// TotalDuration returns the time needed to cover Length.
	TotalDuration() time.Duration

	// PositionAt returns the distance travelled after elapsed. The result never
	// decreases with elapsed and is clamped to [0, Length].
	PositionAt(elapsed time.Duration) float64

	// VelocityAt returns the velocity after elapsed; zero once the profile has ended.
	VelocityAt(elapsed time.Duration) float64

	// PhaseAt returns which part of the profile elapsed falls into.
	PhaseAt(elapsed time.Duration) Phase
}
