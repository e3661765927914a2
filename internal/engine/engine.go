// Package engine implements the drive sampler: it plays a velocity profile along a
// compound path at a fixed timestep, the way a real-time control loop would.
//
// Each step:
//
//  1. Profile pass - the profile maps elapsed time to distance travelled, velocity and phase.
//  2. Geometry pass - distance is mapped to a fraction of the path length and the path
//     is queried for the pose and curvature there.
//  3. Chassis pass - when a robot is configured, the pose is projected onto wheel
//     contact points and the velocity is split into per-wheel setpoints.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rabid-robot/motion-engine/internal/drive"
	"github.com/rabid-robot/motion-engine/internal/kinematics"
	"github.com/rabid-robot/motion-engine/internal/logging"
	"github.com/rabid-robot/motion-engine/internal/path"
)

// MaxRows bounds the number of rows a single run may produce.
const MaxRows = 1_000_000

// Engine samples one drive: a path, a profile covering its length, and optionally a robot.
type Engine struct {
	meta        RunMeta
	path        *path.CompoundPath
	profile     kinematics.Profile
	maxVelocity float64
	robot       *kinematics.TwoWheelRobot
	driver      drive.Driver
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l) }
}

// WithDriver forwards every row's setpoint to d while running. It has no effect
// without a robot.
func WithDriver(d drive.Driver) Option {
	return func(e *Engine) { e.driver = d }
}

// New constructs an Engine from a DriveInput, building the path, the profile over the
// path's length and the robot.
func New(input DriveInput, opts ...Option) (*Engine, error) {
	meta := input.Meta
	if math.IsNaN(meta.TimeStep) || math.IsInf(meta.TimeStep, 0) || meta.TimeStep <= 0 {
		return nil, fmt.Errorf("run_meta: time_step must be positive, got %v", meta.TimeStep)
	}
	if math.IsNaN(meta.RunTime) || math.IsInf(meta.RunTime, 0) || meta.RunTime < 0 {
		return nil, fmt.Errorf("run_meta: run_time must not be negative, got %v", meta.RunTime)
	}
	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}

	p, err := input.Path.Build()
	if err != nil {
		return nil, fmt.Errorf("building path: %w", err)
	}

	profile, err := newProfile(input.Profile, p.Length())
	if err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}

	e := &Engine{
		meta:        meta,
		path:        p,
		profile:     profile,
		maxVelocity: input.Profile.MaxVelocity,
		logger:      zap.NewNop(),
	}
	if input.Robot != nil {
		robot, err := kinematics.NewTwoWheelRobot(input.Robot.Wheelbase, input.Robot.WheelDiameter)
		if err != nil {
			return nil, fmt.Errorf("building robot: %w", err)
		}
		e.robot = &robot
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// newProfile resolves the profile model discriminator.
func newProfile(data ProfileData, length float64) (kinematics.Profile, error) {
	switch data.Model {
	case "", kinematics.RampModelName:
		return kinematics.NewRamp(length, data.MaxVelocity, data.MaxAcceleration)
	default:
		return nil, fmt.Errorf("unknown profile model %q", data.Model)
	}
}

// Meta returns the run parameters, with the run ID filled in.
func (e *Engine) Meta() RunMeta { return e.meta }

// Path returns the compound path being driven.
func (e *Engine) Path() *path.CompoundPath { return e.path }

// Profile returns the velocity profile covering the path.
func (e *Engine) Profile() kinematics.Profile { return e.profile }

// RunTime returns how long the run lasts.
func (e *Engine) RunTime() time.Duration {
	if e.meta.RunTime > 0 {
		return seconds(e.meta.RunTime)
	}
	return e.profile.TotalDuration()
}

// Run samples the drive from t=0 to the run time in fixed steps and returns the log.
// The final row is always taken at the run time itself.
func (e *Engine) Run(ctx context.Context) (out DriveLog, err error) {
	logger := e.logger.With(zap.String("run_id", e.meta.RunID))
	defer logging.Time(logger, "engine.run")(&err)

	runTime := e.RunTime()
	step := seconds(e.meta.TimeStep)
	if step <= 0 {
		return DriveLog{}, fmt.Errorf("time step %vs is below clock resolution", e.meta.TimeStep)
	}
	n := int64(runTime / step)
	if n+2 > MaxRows {
		return DriveLog{}, fmt.Errorf("run of %v at %v steps exceeds %d rows", runTime, step, MaxRows)
	}

	ticks := make([]time.Duration, 0, n+2)
	for i := int64(0); i <= n; i++ {
		ticks = append(ticks, time.Duration(i)*step)
	}
	if ticks[len(ticks)-1] < runTime {
		ticks = append(ticks, runTime)
	}

	out = DriveLog{
		Meta:          e.meta,
		PathLength:    e.path.Length(),
		TotalDuration: e.profile.TotalDuration().Seconds(),
		Output:        make([]DriveLogRow, 0, len(ticks)),
	}
	logger.Info("drive run started",
		zap.Float64("path_length", out.PathLength),
		zap.Duration("total_duration", e.profile.TotalDuration()),
		zap.Int("rows", len(ticks)),
	)

	for _, elapsed := range ticks {
		if err := ctx.Err(); err != nil {
			return DriveLog{}, err
		}
		row, err := e.Sample(elapsed)
		if err != nil {
			return DriveLog{}, fmt.Errorf("at t=%v: %w", elapsed, err)
		}
		if e.driver != nil && row.Wheels != nil {
			if err := e.driver.Drive(ctx, row.Wheels.Setpoint); err != nil {
				return DriveLog{}, fmt.Errorf("at t=%v: driving: %w", elapsed, err)
			}
		}
		out.Output = append(out.Output, row)
	}
	if e.driver != nil && e.robot != nil {
		if err := e.driver.Stop(ctx); err != nil {
			return DriveLog{}, fmt.Errorf("stopping driver: %w", err)
		}
	}

	logger.Info("drive run finished", zap.Int("rows", len(out.Output)))
	return out, nil
}

// Sample returns the drive state after elapsed.
func (e *Engine) Sample(elapsed time.Duration) (DriveLogRow, error) {
	distance := e.profile.PositionAt(elapsed)
	velocity := e.profile.VelocityAt(elapsed)
	fraction := math.Max(0, math.Min(1, distance/e.path.Length()))

	pose, err := e.path.At(fraction)
	if err != nil {
		return DriveLogRow{}, fmt.Errorf("pose at %v: %w", fraction, err)
	}
	curvature, err := e.path.CurvatureAt(fraction)
	if err != nil {
		return DriveLogRow{}, fmt.Errorf("curvature at %v: %w", fraction, err)
	}

	row := DriveLogRow{
		Timestamp: elapsed.Seconds(),
		Phase:     e.profile.PhaseAt(elapsed),
		Distance:  distance,
		Velocity:  velocity,
		Fraction:  fraction,
		Curvature: curvature,
		Pose:      PoseLog{Point: pointOf(pose.Position), Heading: pose.Heading.Radians()},
	}
	if e.robot != nil {
		wheels := e.robot.WheelPositions(pose)
		left, right := e.robot.WheelVelocities(velocity, curvature)
		sp := drive.NewSetpoint(left, right, e.maxVelocity)
		row.Wheels = &WheelLog{
			Left:          pointOf(wheels.Left),
			Right:         pointOf(wheels.Right),
			LeftVelocity:  left,
			RightVelocity: right,
			Setpoint:      sp,
			MD23:          sp.MD23(),
		}
	}
	return row, nil
}

// RunJSON is the primary entry point for the CLI and WASM targets.
// It accepts a JSON-encoded DriveInput, runs the drive, and returns a
// JSON-encoded DriveLog. Errors are *StageError.
func RunJSON(jsonInput string) (string, error) {
	input, err := ParseJSON([]byte(jsonInput))
	if err != nil {
		return "", &StageError{Stage: StageParse, Err: err}
	}
	return run(input)
}

// RunYAML is RunJSON for a YAML-encoded DriveInput. The output is still JSON.
func RunYAML(yamlInput string) (string, error) {
	input, err := ParseYAML([]byte(yamlInput))
	if err != nil {
		return "", &StageError{Stage: StageParse, Err: err}
	}
	return run(input)
}

func run(input DriveInput) (string, error) {
	e, err := New(input)
	if err != nil {
		return "", &StageError{Stage: StageBuild, Err: err}
	}

	driveLog, err := e.Run(context.Background())
	if err != nil {
		return "", &StageError{Stage: StageRun, Err: err}
	}

	out, err := json.Marshal(driveLog)
	if err != nil {
		return "", &StageError{Stage: StageEncode, Err: fmt.Errorf("marshaling output: %w", err)}
	}
	return string(out), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
