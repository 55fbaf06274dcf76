package playback

import (
	"sync"
	"time"
)

// DefaultLoopDuration is the clip playback window in seconds
const DefaultLoopDuration = 3.0

// DefaultPollInterval is the clamp cadence for media without frame
// callbacks. Coarse timing means the playhead can overshoot the window by
// up to one interval; the next tick snaps it back.
const DefaultPollInterval = 250 * time.Millisecond

// LoopWindow is the playhead range a playing clip is confined to
type LoopWindow struct {
	Start    float64 // seconds
	Duration float64 // seconds
}

// NewLoopWindow builds the standard 3-second window at the given offset.
// Clips without an explicit loop start use offset 0.
func NewLoopWindow(start float64) LoopWindow {
	if start < 0 {
		start = 0
	}
	return LoopWindow{Start: start, Duration: DefaultLoopDuration}
}

// End returns the exclusive upper bound of the window
func (w LoopWindow) End() float64 {
	return w.Start + w.Duration
}

// Contains reports whether pos satisfies start <= pos < start+duration
func (w LoopWindow) Contains(pos float64) bool {
	return pos >= w.Start && pos < w.End()
}

// LoopDriver delivers playhead samples to a clamp function. The strategy is
// picked once per element at setup: frame callbacks when the media supports
// them, periodic polling otherwise.
type LoopDriver interface {
	Start(clamp func(position float64))
	Stop()
}

// FrameCallbackDriver clamps on every rendered frame
type FrameCallbackDriver struct {
	notifier FrameNotifier
	cancel   func()
}

// NewFrameCallbackDriver creates a driver over a frame-capable media handle
func NewFrameCallbackDriver(notifier FrameNotifier) *FrameCallbackDriver {
	return &FrameCallbackDriver{notifier: notifier}
}

func (d *FrameCallbackDriver) Start(clamp func(position float64)) {
	d.Stop()
	d.cancel = d.notifier.OnFrame(clamp)
}

func (d *FrameCallbackDriver) Stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// PeriodicPollDriver samples the playhead on a fixed interval, tolerating
// timeupdate-grade granularity
type PeriodicPollDriver struct {
	media    Media
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewPeriodicPollDriver creates a polling driver for the given media
func NewPeriodicPollDriver(media Media, interval time.Duration) *PeriodicPollDriver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PeriodicPollDriver{media: media, interval: interval}
}

func (d *PeriodicPollDriver) Start(clamp func(position float64)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return
	}
	stop := make(chan struct{})
	d.stop = stop

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				clamp(d.media.Position())
			}
		}
	}()
}

func (d *PeriodicPollDriver) Stop() {
	d.mu.Lock()
	if d.stop == nil {
		d.mu.Unlock()
		return
	}
	close(d.stop)
	d.stop = nil
	d.mu.Unlock()
	d.wg.Wait()
}

// LoopEnforcer keeps a playing clip's playhead inside its loop window.
// It only ever seeks; starting and stopping playback belongs to the
// coordinator.
type LoopEnforcer struct {
	media  Media
	window LoopWindow
	driver LoopDriver

	mu       sync.Mutex
	attached bool
}

// NewLoopEnforcer builds an enforcer, selecting the loop driver once based
// on the media's capabilities
func NewLoopEnforcer(media Media, window LoopWindow) *LoopEnforcer {
	var driver LoopDriver
	if notifier, ok := media.(FrameNotifier); ok {
		driver = NewFrameCallbackDriver(notifier)
	} else {
		driver = NewPeriodicPollDriver(media, DefaultPollInterval)
	}
	return &LoopEnforcer{media: media, window: window, driver: driver}
}

// NewLoopEnforcerWithDriver builds an enforcer with an explicit driver
func NewLoopEnforcerWithDriver(media Media, window LoopWindow, driver LoopDriver) *LoopEnforcer {
	return &LoopEnforcer{media: media, window: window, driver: driver}
}

// Window returns the enforced loop window
func (e *LoopEnforcer) Window() LoopWindow {
	return e.window
}

// Attach snaps the playhead into the window and starts clamp delivery, so
// every activation begins a clean loop cycle. Idempotent.
func (e *LoopEnforcer) Attach() {
	e.mu.Lock()
	if e.attached {
		e.mu.Unlock()
		return
	}
	e.attached = true
	e.mu.Unlock()

	if !e.window.Contains(e.media.Position()) {
		e.media.Seek(e.window.Start)
	}
	e.driver.Start(e.clamp)
}

// Detach stops clamp delivery. Idempotent.
func (e *LoopEnforcer) Detach() {
	e.mu.Lock()
	if !e.attached {
		e.mu.Unlock()
		return
	}
	e.attached = false
	e.mu.Unlock()

	e.driver.Stop()
}

// clamp snaps the playhead back to the loop start whenever a sample lands
// outside the window. Overshoot from coarse event timing is expected and
// recovered on the next tick.
func (e *LoopEnforcer) clamp(position float64) {
	if !e.window.Contains(position) {
		e.media.Seek(e.window.Start)
	}
}
