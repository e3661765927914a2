package drive

import (
	"context"
	"sync"
)

// Recorder is a Driver that keeps every setpoint it receives. It is safe for
// concurrent use.
type Recorder struct {
	mu        sync.Mutex
	setpoints []Setpoint
}

var _ Driver = (*Recorder)(nil)

func (r *Recorder) Drive(ctx context.Context, s Setpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setpoints = append(r.setpoints, s)
	return nil
}

func (r *Recorder) Stop(ctx context.Context) error {
	return r.Drive(ctx, Stop)
}

// Setpoints returns a copy of everything recorded so far.
func (r *Recorder) Setpoints() []Setpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Setpoint, len(r.setpoints))
	copy(out, r.setpoints)
	return out
}

// Last returns the most recent setpoint, or Stop if none was recorded.
func (r *Recorder) Last() Setpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.setpoints) == 0 {
		return Stop
	}
	return r.setpoints[len(r.setpoints)-1]
}
