package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"go.uber.org/zap"
)

// CardState is the per-card playback state machine
type CardState int

const (
	StateIdle CardState = iota
	StateRequesting
	StatePlaying
	StatePaused
)

func (s CardState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Token is the exclusivity permit. At most one valid token exists at any
// instant; it is owned by the coordinator and invalidated whenever another
// card activates or the document hides.
type Token struct {
	cardID string
	serial uint64
}

// CardID reports which card the token was granted to
func (t *Token) CardID() string {
	if t == nil {
		return ""
	}
	return t.cardID
}

type card struct {
	id    string
	media Media
	state CardState

	enforcer *LoopEnforcer

	// wantUnmuted remembers the user's preference so a gesture-deferred
	// start can restore it.
	wantUnmuted bool

	cancelGesture func()
}

// Coordinator enforces the single-active-video invariant across all mounted
// cards. Cards never touch the token directly; they request and relinquish
// through this API and observe holdership via HolderID.
type Coordinator struct {
	mu     sync.Mutex
	cards  map[string]*card
	holder *card
	token  *Token
	serial uint64
}

// NewCoordinator creates an empty coordinator
func NewCoordinator() *Coordinator {
	return &Coordinator{cards: make(map[string]*card)}
}

// Register mounts a card with its media handle and loop window
func (c *Coordinator) Register(cardID string, media Media, window LoopWindow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cards[cardID]; ok {
		return
	}
	c.cards[cardID] = &card{
		id:       cardID,
		media:    media,
		enforcer: NewLoopEnforcer(media, window),
	}
}

// Unregister unmounts a card. A card that unmounts while Requesting or
// Playing releases the token and detaches its loop enforcement.
func (c *Coordinator) Unregister(cardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	crd, ok := c.cards[cardID]
	if !ok {
		return
	}
	c.revokeLocked(crd)
	delete(c.cards, cardID)
}

// Activate is the visibility tracker's entry point for a card becoming
// sufficiently visible
func (c *Coordinator) Activate(ctx context.Context, cardID string) {
	c.RequestToken(ctx, cardID)
}

// Deactivate pauses and releases a card that scrolled away or whose
// document hid. Idempotent: deactivating a non-holder is a no-op.
func (c *Coordinator) Deactivate(cardID string) {
	c.Release(cardID)
}

// RequestToken revokes the current holder, grants the token to the card,
// and attempts to start playback. The revoke pauses the previous holder
// before the new card's play begins, so two audible elements never settle.
func (c *Coordinator) RequestToken(ctx context.Context, cardID string) *Token {
	c.mu.Lock()
	defer c.mu.Unlock()

	crd, ok := c.cards[cardID]
	if !ok {
		return nil
	}
	if c.holder == crd {
		// Holding but not playing happens after a tap-pause; restart
		// instead of minting a new token.
		if crd.state == StatePaused || crd.state == StateIdle {
			c.startPlaybackLocked(ctx, crd)
			c.verifyExclusiveLocked()
		}
		return c.token
	}

	if c.holder != nil {
		c.revokeLocked(c.holder)
	}

	c.serial++
	c.token = &Token{cardID: cardID, serial: c.serial}
	c.holder = crd

	c.startPlaybackLocked(ctx, crd)
	c.verifyExclusiveLocked()
	return c.token
}

// Release relinquishes the token if the card holds it. Pausing an
// already-paused element is a no-op, not an error.
func (c *Coordinator) Release(cardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	crd, ok := c.cards[cardID]
	if !ok {
		return
	}
	if c.holder != crd {
		// Not the holder; still clear any pending gesture arm.
		c.disarmGestureLocked(crd)
		if crd.state == StateRequesting {
			crd.state = StateIdle
		}
		return
	}
	c.revokeLocked(crd)
}

// Tap applies manual interaction on top of the automatic flow:
// playing+muted unmutes in place, playing+unmuted pauses, anything else
// requests the token.
func (c *Coordinator) Tap(ctx context.Context, cardID string) {
	c.mu.Lock()
	crd, ok := c.cards[cardID]
	if !ok {
		c.mu.Unlock()
		return
	}

	if c.holder == crd && crd.state == StatePlaying {
		if crd.media.Muted() {
			// Unmute in place without re-requesting the token.
			crd.wantUnmuted = true
			crd.media.SetMuted(false)
			c.mu.Unlock()
			return
		}
		crd.media.Pause()
		crd.enforcer.Detach()
		crd.state = StatePaused
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.RequestToken(ctx, cardID)
}

// ToggleMute flips the card's mute flag. It never grants a token, so
// toggling mute can never start a second element.
func (c *Coordinator) ToggleMute(cardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	crd, ok := c.cards[cardID]
	if !ok {
		return
	}
	muted := !crd.media.Muted()
	crd.media.SetMuted(muted)
	crd.wantUnmuted = !muted
}

// HolderID reports which card currently holds the token, "" if none
func (c *Coordinator) HolderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token.CardID()
}

// State reports a card's current playback state
func (c *Coordinator) State(cardID string) CardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if crd, ok := c.cards[cardID]; ok {
		return crd.state
	}
	return StateIdle
}

// revokeLocked pauses a card, detaches loop enforcement, and invalidates
// its token if it is the holder. Effectively immediate and idempotent.
func (c *Coordinator) revokeLocked(crd *card) {
	c.disarmGestureLocked(crd)
	crd.media.Pause()
	crd.enforcer.Detach()
	crd.state = StateIdle
	if c.holder == crd {
		c.holder = nil
		c.token = nil
	}
}

// startPlaybackLocked walks the autoplay ladder: unmuted play, then muted
// retry, then a one-shot gesture arm. AutoplayRejected is never surfaced as
// an error; the card just waits for the gesture.
func (c *Coordinator) startPlaybackLocked(ctx context.Context, crd *card) {
	crd.state = StateRequesting
	crd.wantUnmuted = !crd.media.Muted()

	// Clean loop cycle: snap into the window before playback resumes.
	crd.enforcer.Attach()

	err := crd.media.Play(ctx)
	if errors.Is(err, ErrAutoplayBlocked) && !crd.media.Muted() {
		crd.media.SetMuted(true)
		err = crd.media.Play(ctx)
	}
	if errors.Is(err, ErrAutoplayBlocked) {
		// Defer to the first user gesture on the element; retry there and
		// restore the user's mute preference.
		serial := c.serial
		crd.cancelGesture = crd.media.OnFirstGesture(func() {
			c.onGesture(crd.id, serial)
		})
		return
	}
	if err != nil {
		logger.Log.Warn("Playback start failed",
			zap.String("card_id", crd.id),
			zap.Error(err))
		c.revokeLocked(crd)
		return
	}
	crd.state = StatePlaying
}

// onGesture retries a gesture-deferred start. The serial guards against a
// stale gesture firing after the token moved on.
func (c *Coordinator) onGesture(cardID string, serial uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	crd, ok := c.cards[cardID]
	if !ok || c.holder != crd || c.serial != serial || crd.state != StateRequesting {
		return
	}
	crd.cancelGesture = nil

	if crd.wantUnmuted {
		crd.media.SetMuted(false)
	}
	if err := crd.media.Play(context.Background()); err != nil {
		logger.Log.Warn("Gesture-deferred playback failed",
			zap.String("card_id", cardID),
			zap.Error(err))
		return
	}
	crd.state = StatePlaying
	c.verifyExclusiveLocked()
}

func (c *Coordinator) disarmGestureLocked(crd *card) {
	if crd.cancelGesture != nil {
		crd.cancelGesture()
		crd.cancelGesture = nil
	}
}

// verifyExclusiveLocked is the TokenConflict tripwire. More than one card
// in Playing state means a coordinator bug, not an environmental failure:
// every non-canonical holder is forced to pause and a diagnostic is logged.
func (c *Coordinator) verifyExclusiveLocked() {
	for _, crd := range c.cards {
		if crd.state == StatePlaying && crd != c.holder {
			logger.Log.Error("Playback token conflict detected",
				zap.String("card_id", crd.id),
				zap.String("holder_id", c.token.CardID()))
			crd.media.Pause()
			crd.enforcer.Detach()
			crd.state = StateIdle
		}
	}
}
