package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rabid-robot/motion-engine/internal/drive"
	"github.com/rabid-robot/motion-engine/internal/engine"
	"github.com/rabid-robot/motion-engine/internal/kinematics"
)

func dial(t *testing.T, s *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	return conn
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	s := httptest.NewServer(hub)
	defer s.Close()
	defer hub.Close()

	a := dial(t, s)
	defer a.Close()
	b := dial(t, s)
	defer b.Close()
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 5*time.Millisecond)

	sent := Frame{RunID: "r1", Row: engine.DriveLogRow{Timestamp: 0.5, Distance: 1.25, Phase: kinematics.PhaseCruising}}
	require.NoError(t, hub.Broadcast(sent))

	for _, conn := range []*websocket.Conn{a, b} {
		var got Frame
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, sent, got)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(nil)
	s := httptest.NewServer(hub)
	defer s.Close()

	conn := dial(t, s)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, hub.Broadcast(Frame{RunID: "nobody"}))
}

func TestHubClose(t *testing.T) {
	hub := NewHub(nil)
	s := httptest.NewServer(hub)
	defer s.Close()

	conn := dial(t, s)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Zero(t, hub.Len())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestHubRefusesClientsAfterClose(t *testing.T) {
	hub := NewHub(nil)
	s := httptest.NewServer(hub)
	defer s.Close()

	hub.Close()

	u := "ws" + strings.TrimPrefix(s.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Zero(t, hub.Len())
}

func TestHubRejectsPlainHTTP(t *testing.T) {
	hub := NewHub(nil)
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 400, rec.Code)
	assert.Zero(t, hub.Len())
}

type collector struct {
	mu     sync.Mutex
	frames []Frame
}

func (c *collector) Broadcast(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, v.(Frame))
	return nil
}

func (c *collector) Frames() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Frame(nil), c.frames...)
}

func sampleLog() engine.DriveLog {
	sp := drive.Setpoint{Left: 0.5, Right: 0.25}
	return engine.DriveLog{
		Meta: engine.RunMeta{RunID: "play", TimeStep: 0.001},
		Output: []engine.DriveLogRow{
			{Timestamp: 0, Wheels: &engine.WheelLog{Setpoint: drive.Stop}},
			{Timestamp: 0.001, Wheels: &engine.WheelLog{Setpoint: sp}},
			{Timestamp: 0.002, Wheels: &engine.WheelLog{Setpoint: sp}},
		},
	}
}

func TestPlayerPlaysOnce(t *testing.T) {
	out := &collector{}
	rec := &drive.Recorder{}
	p, err := NewPlayer(out, sampleLog(), WithPlayerDriver(rec))
	require.NoError(t, err)

	require.NoError(t, p.Play(context.Background()))

	frames := out.Frames()
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, "play", f.RunID)
		assert.Zero(t, f.Pass)
		assert.Equal(t, sampleLog().Output[i].Timestamp, f.Row.Timestamp)
	}
	assert.Len(t, rec.Setpoints(), 4)
	assert.Equal(t, drive.Stop, rec.Last())
}

func TestPlayerLoopsUntilCancelled(t *testing.T) {
	out := &collector{}
	rec := &drive.Recorder{}
	p, err := NewPlayer(out, sampleLog(), WithLoop(true), WithPlayerDriver(rec))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Play(ctx) }()

	require.Eventually(t, func() bool { return len(out.Frames()) > 7 }, 2*time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("player did not stop")
	}
	frames := out.Frames()
	assert.Equal(t, 2, frames[6].Pass)
	assert.Equal(t, drive.Stop, rec.Last())
}

func TestPlayerEmptyLog(t *testing.T) {
	out := &collector{}
	p, err := NewPlayer(out, engine.DriveLog{Meta: engine.RunMeta{TimeStep: 1}})
	require.NoError(t, err)
	assert.NoError(t, p.Play(context.Background()))
	assert.Empty(t, out.Frames())
}

func TestNewPlayerRejectsBadInput(t *testing.T) {
	_, err := NewPlayer(nil, sampleLog())
	assert.Error(t, err)

	bad := sampleLog()
	bad.Meta.TimeStep = 0
	_, err = NewPlayer(&collector{}, bad)
	assert.Error(t, err)

	bad.Meta.TimeStep = 1e-12
	_, err = NewPlayer(&collector{}, bad)
	assert.Error(t, err)
}
