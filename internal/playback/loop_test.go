package playback

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFrameMedia is a fakeMedia that also delivers frame callbacks, so the
// enforcer selects the frame driver for it
type fakeFrameMedia struct {
	fakeMedia
	frameMu sync.Mutex
	onFrame func(position float64)
}

func (m *fakeFrameMedia) OnFrame(fn func(position float64)) (cancel func()) {
	m.frameMu.Lock()
	m.onFrame = fn
	m.frameMu.Unlock()
	return func() {
		m.frameMu.Lock()
		m.onFrame = nil
		m.frameMu.Unlock()
	}
}

func (m *fakeFrameMedia) emitFrame(position float64) {
	m.frameMu.Lock()
	fn := m.onFrame
	m.frameMu.Unlock()
	if fn != nil {
		fn(position)
	}
}

func TestLoopWindowContains(t *testing.T) {
	w := NewLoopWindow(2.0)
	assert.Equal(t, 5.0, w.End())

	assert.True(t, w.Contains(2.0), "start is inclusive")
	assert.True(t, w.Contains(4.999))
	assert.False(t, w.Contains(5.0), "end is exclusive")
	assert.False(t, w.Contains(1.999))
	assert.False(t, w.Contains(7.3))
}

func TestNewLoopWindowClampsNegativeStart(t *testing.T) {
	w := NewLoopWindow(-1.5)
	assert.Equal(t, 0.0, w.Start)
	assert.Equal(t, DefaultLoopDuration, w.Duration)
}

func TestEnforcerSnapsOnAttach(t *testing.T) {
	m := &fakeFrameMedia{}
	m.position = 7.3
	e := NewLoopEnforcer(m, NewLoopWindow(2.0))

	e.Attach()
	defer e.Detach()

	assert.Equal(t, 2.0, m.Position(), "attach snaps an out-of-window playhead to the loop start")
}

func TestEnforcerNoSnapInsideWindow(t *testing.T) {
	m := &fakeFrameMedia{}
	m.position = 3.4
	e := NewLoopEnforcer(m, NewLoopWindow(2.0))

	e.Attach()
	defer e.Detach()

	assert.Empty(t, m.seeks, "a playhead already inside the window is left alone")
}

func TestEnforcerClampsFrameOvershoot(t *testing.T) {
	m := &fakeFrameMedia{}
	m.position = 2.0
	e := NewLoopEnforcer(m, NewLoopWindow(2.0))
	e.Attach()
	defer e.Detach()

	m.position = 4.9
	m.emitFrame(4.9)
	assert.Equal(t, 4.9, m.Position(), "inside the window nothing moves")

	m.position = 5.2
	m.emitFrame(5.2)
	assert.Equal(t, 2.0, m.Position(), "overshoot snaps back to the loop start")
}

func TestEnforcerDetachStopsClamping(t *testing.T) {
	m := &fakeFrameMedia{}
	m.position = 2.0
	e := NewLoopEnforcer(m, NewLoopWindow(2.0))
	e.Attach()
	e.Detach()

	m.position = 9.0
	m.emitFrame(9.0)
	assert.Equal(t, 9.0, m.Position(), "no clamping after detach")

	// Both calls are idempotent.
	e.Detach()
	e.Attach()
	e.Attach()
	e.Detach()
}

func TestEnforcerNeverStartsOrStopsPlayback(t *testing.T) {
	m := &fakeFrameMedia{}
	m.position = 8.0
	e := NewLoopEnforcer(m, NewLoopWindow(0))

	e.Attach()
	m.emitFrame(9.0)
	e.Detach()

	assert.Equal(t, 0, m.playCalls)
	assert.Equal(t, 0, m.pauseCalls)
}

func TestEnforcerSelectsPollDriverWithoutFrames(t *testing.T) {
	m := &fakeMedia{}
	e := NewLoopEnforcer(m, NewLoopWindow(0))
	_, isPoll := e.driver.(*PeriodicPollDriver)
	assert.True(t, isPoll)

	fm := &fakeFrameMedia{}
	e = NewLoopEnforcer(fm, NewLoopWindow(0))
	_, isFrame := e.driver.(*FrameCallbackDriver)
	assert.True(t, isFrame)
}

func TestPeriodicPollDriverClamps(t *testing.T) {
	m := &fakeMedia{}
	m.position = 6.0

	e := NewLoopEnforcerWithDriver(m, NewLoopWindow(2.0), NewPeriodicPollDriver(m, 5*time.Millisecond))
	e.Attach()
	defer e.Detach()

	// Attach snapped it in; push it out and wait for a tick to recover it.
	m.Seek(5.5)
	require.Eventually(t, func() bool {
		return m.Position() == 2.0
	}, time.Second, 2*time.Millisecond, "a poll tick must snap the playhead back")
}

func TestPeriodicPollDriverStopTerminates(t *testing.T) {
	m := &fakeMedia{}
	d := NewPeriodicPollDriver(m, time.Millisecond)

	var mu sync.Mutex
	ticks := 0
	d.Start(func(position float64) {
		mu.Lock()
		ticks++
		mu.Unlock()
	})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return ticks > 0
	}, time.Second, time.Millisecond)

	d.Stop()
	mu.Lock()
	after := ticks
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, ticks, "no ticks after Stop returns")
	mu.Unlock()

	// Stop is idempotent; Start after Stop works again.
	d.Stop()
	d.Start(func(position float64) {})
	d.Stop()
}
