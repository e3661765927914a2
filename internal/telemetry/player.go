package telemetry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/rabid-robot/motion-engine/internal/drive"
	"github.com/rabid-robot/motion-engine/internal/engine"
	"github.com/rabid-robot/motion-engine/internal/logging"
)

// Broadcaster accepts telemetry messages. Hub is the production implementation.
type Broadcaster interface {
	Broadcast(v any) error
}

// Frame is one message on the telemetry stream.
type Frame struct {
	RunID string             `json:"run_id"`
	Pass  int                `json:"pass"` // 0 on the first playback, incremented per loop
	Row   engine.DriveLogRow `json:"row"`
}

// Player replays a drive log in real time, one row per time step.
type Player struct {
	out    Broadcaster
	log    engine.DriveLog
	step   time.Duration
	loop   bool
	driver drive.Driver
	logger *zap.Logger
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLoop restarts playback from the first row after the last one.
func WithLoop(loop bool) PlayerOption {
	return func(p *Player) { p.loop = loop }
}

// WithPlayerDriver forwards each row's setpoint to d during playback and stops it
// when playback ends.
func WithPlayerDriver(d drive.Driver) PlayerOption {
	return func(p *Player) { p.driver = d }
}

// WithPlayerLogger sets the logger used for playback diagnostics.
func WithPlayerLogger(l *zap.Logger) PlayerOption {
	return func(p *Player) { p.logger = logging.OrNop(l) }
}

// NewPlayer returns a player for log. The log's time step sets the playback rate.
func NewPlayer(out Broadcaster, log engine.DriveLog, opts ...PlayerOption) (*Player, error) {
	if out == nil {
		return nil, errors.New("telemetry player: nil broadcaster")
	}
	ts := log.Meta.TimeStep
	if math.IsNaN(ts) || math.IsInf(ts, 0) || ts <= 0 {
		return nil, fmt.Errorf("telemetry player: time_step must be positive, got %v", ts)
	}
	step := time.Duration(math.Round(ts * float64(time.Second)))
	if step <= 0 {
		return nil, fmt.Errorf("telemetry player: time step %vs is below clock resolution", ts)
	}
	p := &Player{out: out, log: log, step: step, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Play sends the rows until the log ends, or until ctx is done when looping.
func (p *Player) Play(ctx context.Context) (err error) {
	logger := p.logger.With(zap.String("run_id", p.log.Meta.RunID))
	defer logging.Time(logger, "telemetry.play")(&err)
	defer func() {
		if p.driver == nil {
			return
		}
		// The driver must stop even when ctx is already cancelled.
		if stopErr := p.driver.Stop(context.WithoutCancel(ctx)); stopErr != nil && err == nil {
			err = fmt.Errorf("stopping driver: %w", stopErr)
		}
	}()

	if len(p.log.Output) == 0 {
		return nil
	}

	ticker := time.NewTicker(p.step)
	defer ticker.Stop()

	for pass := 0; ; pass++ {
		logger.Debug("telemetry playback pass", zap.Int("pass", pass), zap.Int("rows", len(p.log.Output)))
		for i, row := range p.log.Output {
			if err := p.out.Broadcast(Frame{RunID: p.log.Meta.RunID, Pass: pass, Row: row}); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if p.driver != nil && row.Wheels != nil {
				if err := p.driver.Drive(ctx, row.Wheels.Setpoint); err != nil {
					return fmt.Errorf("row %d: driving: %w", i, err)
				}
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if !p.loop {
			return nil
		}
	}
}
