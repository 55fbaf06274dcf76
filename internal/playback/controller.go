package playback

import "context"

// Controller bundles a coordinator and a visibility tracker for one feed
// surface, wiring activation transitions straight into token requests.
type Controller struct {
	Coordinator *Coordinator
	Tracker     *VisibilityTracker
}

// NewController creates a coordinator/tracker pair for a mounted feed
func NewController() *Controller {
	coord := NewCoordinator()
	tracker := NewVisibilityTracker(func(cardID string, active bool) {
		if active {
			coord.Activate(context.Background(), cardID)
		} else {
			coord.Deactivate(cardID)
		}
	})
	return &Controller{Coordinator: coord, Tracker: tracker}
}

// Mount registers a rendered card with both halves
func (c *Controller) Mount(cardID string, media Media, window LoopWindow) {
	c.Coordinator.Register(cardID, media, window)
	c.Tracker.Observe(cardID)
}

// Unmount tears a card down on all exit paths: visibility first so an
// active card deactivates and releases the token, then the registration.
func (c *Controller) Unmount(cardID string) {
	c.Tracker.Unobserve(cardID)
	c.Coordinator.Unregister(cardID)
}
