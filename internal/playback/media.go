// Package playback implements the exclusive-playback runtime for feed
// cards: a coordinator that guarantees at most one clip plays at a time, a
// visibility tracker that decides which card should be active, and a loop
// enforcer that confines the playhead to each clip's 3-second window.
//
// Everything here drives an abstract Media handle, so the invariants are
// testable without a real player. Frontends bridge Media to an actual
// video element (or kiosk pipeline) and feed intersection ratios and
// document visibility into the tracker.
package playback

import (
	"context"
	"errors"
)

// ErrAutoplayBlocked is returned by Media.Play when the platform refuses to
// start playback, typically because the element is unmuted and no user
// gesture has occurred yet.
var ErrAutoplayBlocked = errors.New("playback: autoplay blocked")

// Media is the imperative surface of one mounted clip element. Play may
// reject; Pause is always a no-op on an already-paused element.
// Implementations must be safe for concurrent use: the loop driver clamps
// the playhead from its own goroutine.
type Media interface {
	Play(ctx context.Context) error
	Pause()

	SetMuted(muted bool)
	Muted() bool

	// Position reports the current playhead in seconds.
	Position() float64
	// Seek moves the playhead. Seeking never starts or stops playback.
	Seek(seconds float64)

	// OnFirstGesture arms a one-shot hook for the next user pointer or
	// touch gesture on this element. The returned cancel detaches the
	// hook; calling it after the gesture fired is a no-op.
	OnFirstGesture(fn func()) (cancel func())
}

// FrameNotifier is implemented by media that can deliver a callback per
// rendered video frame. When available, loop enforcement uses it instead of
// periodic polling for tighter clamp precision.
type FrameNotifier interface {
	// OnFrame registers a per-frame callback receiving the playhead at
	// frame presentation time. The returned cancel stops delivery.
	OnFrame(fn func(position float64)) (cancel func())
}
