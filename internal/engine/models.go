package engine

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rabid-robot/motion-engine/internal/drive"
	"github.com/rabid-robot/motion-engine/internal/kinematics"
	"github.com/rabid-robot/motion-engine/internal/path"
)

// RunMeta holds the identity and timing parameters for a drive run.
type RunMeta struct {
	RunID    string  `json:"run_id" yaml:"run_id"`
	TimeStep float64 `json:"time_step" yaml:"time_step"`                   // seconds
	RunTime  float64 `json:"run_time,omitempty" yaml:"run_time,omitempty"` // seconds; 0 = until the profile ends
}

// ProfileData selects and parameterizes the velocity profile.
//
// Supported models:
//   - "ramp" (default when empty): trapezoidal ramp with max_velocity and max_acceleration.
type ProfileData struct {
	Model           string  `json:"model,omitempty" yaml:"model,omitempty"`
	MaxVelocity     float64 `json:"max_velocity" yaml:"max_velocity"`         // length units/s
	MaxAcceleration float64 `json:"max_acceleration" yaml:"max_acceleration"` // length units/s²
}

// RobotData describes the chassis driving the path.
type RobotData struct {
	Wheelbase     float64 `json:"wheelbase" yaml:"wheelbase"`
	WheelDiameter float64 `json:"wheel_diameter" yaml:"wheel_diameter"`
}

// DriveInput is the serialisable input to the engine.
type DriveInput struct {
	Meta    RunMeta       `json:"run_meta" yaml:"run_meta"`
	Path    path.PathData `json:"path" yaml:"path"`
	Profile ProfileData   `json:"profile" yaml:"profile"`
	Robot   *RobotData    `json:"robot,omitempty" yaml:"robot,omitempty"`
}

// Point is a serialisable 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v path.Vector) Point { return Point{X: v.X, Y: v.Y} }

// PoseLog is a serialisable pose.
type PoseLog struct {
	Point
	Heading float64 `json:"heading"` // radians
}

// WheelLog is the state of both wheels at a single timestep.
type WheelLog struct {
	Left          Point          `json:"left"`
	Right         Point          `json:"right"`
	LeftVelocity  float64        `json:"left_velocity"`
	RightVelocity float64        `json:"right_velocity"`
	Setpoint      drive.Setpoint `json:"setpoint"`
	MD23          [2]uint8       `json:"md23"`
}

// DriveLogRow is the state of the drive at a single timestep.
type DriveLogRow struct {
	Timestamp float64          `json:"timestamp"` // seconds
	Phase     kinematics.Phase `json:"phase"`
	Distance  float64          `json:"distance"`
	Velocity  float64          `json:"velocity"`
	Fraction  float64          `json:"fraction"` // distance / path length
	Curvature float64          `json:"curvature"`
	Pose      PoseLog          `json:"pose"`
	Wheels    *WheelLog        `json:"wheels,omitempty"`
}

// DriveLog is the complete output of a drive run.
type DriveLog struct {
	Meta          RunMeta       `json:"run_meta"`
	PathLength    float64       `json:"path_length"`
	TotalDuration float64       `json:"total_duration"` // seconds
	Output        []DriveLogRow `json:"output"`
}

// ParseJSON decodes a DriveInput from JSON.
func ParseJSON(data []byte) (DriveInput, error) {
	var input DriveInput
	if err := json.Unmarshal(data, &input); err != nil {
		return DriveInput{}, fmt.Errorf("invalid input JSON: %w", err)
	}
	return input, nil
}

// ParseYAML decodes a DriveInput from YAML.
func ParseYAML(data []byte) (DriveInput, error) {
	var input DriveInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return DriveInput{}, fmt.Errorf("invalid input YAML: %w", err)
	}
	return input, nil
}

// Parse decodes a DriveInput read from the file called name: YAML for .yaml and .yml
// files, JSON otherwise.
func Parse(name string, data []byte) (DriveInput, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// Stage names the step of RunJSON or RunYAML that failed.
type Stage string

const (
	StageParse  Stage = "parse"
	StageBuild  Stage = "build"
	StageRun    Stage = "run"
	StageEncode Stage = "encode"
)

// StageError is an error from RunJSON or RunYAML, tagged with the failing stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return string(e.Stage) + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }
