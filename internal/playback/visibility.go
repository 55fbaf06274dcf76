package playback

import (
	"sort"
	"sync"
)

// Hysteresis thresholds for card activation. A card activates once ~70% of
// its area is visible and only deactivates after dropping below 55%, so
// scroll jitter at the boundary doesn't flap playback.
const (
	ActivateRatio   = 0.70
	DeactivateRatio = 0.55
)

// ActivationHandler receives card activation transitions
type ActivationHandler func(cardID string, active bool)

type cardVisibility struct {
	ratio  float64
	active bool
}

// VisibilityTracker turns per-card intersection ratios and document
// visibility into activate/deactivate events. Document hidden always
// deactivates, independent of intersection state; on return the last known
// ratios are re-evaluated.
type VisibilityTracker struct {
	mu       sync.Mutex
	cards    map[string]*cardVisibility
	docShown bool
	onChange ActivationHandler
}

// NewVisibilityTracker creates a tracker reporting transitions to onChange.
// The document starts visible.
func NewVisibilityTracker(onChange ActivationHandler) *VisibilityTracker {
	return &VisibilityTracker{
		cards:    make(map[string]*cardVisibility),
		docShown: true,
		onChange: onChange,
	}
}

// Observe starts tracking a mounted card
func (t *VisibilityTracker) Observe(cardID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.cards[cardID]; !ok {
		t.cards[cardID] = &cardVisibility{}
	}
}

// Unobserve stops tracking a card, emitting a deactivation if it was active
func (t *VisibilityTracker) Unobserve(cardID string) {
	t.mu.Lock()
	card, ok := t.cards[cardID]
	wasActive := ok && card.active
	delete(t.cards, cardID)
	t.mu.Unlock()

	if wasActive {
		t.onChange(cardID, false)
	}
}

// ReportRatio records a card's intersection ratio and applies the
// hysteresis bands. Ratios between the bands keep the card's prior state.
func (t *VisibilityTracker) ReportRatio(cardID string, ratio float64) {
	t.mu.Lock()
	card, ok := t.cards[cardID]
	if !ok {
		t.mu.Unlock()
		return
	}
	card.ratio = ratio

	var transition *bool
	if t.docShown {
		switch {
		case !card.active && ratio >= ActivateRatio:
			card.active = true
			v := true
			transition = &v
		case card.active && ratio < DeactivateRatio:
			card.active = false
			v := false
			transition = &v
		}
	}
	t.mu.Unlock()

	if transition != nil {
		t.onChange(cardID, *transition)
	}
}

// SetDocumentVisible reflects tab visibility. Hiding deactivates every
// active card immediately; showing re-evaluates all last known ratios.
func (t *VisibilityTracker) SetDocumentVisible(visible bool) {
	t.mu.Lock()
	if t.docShown == visible {
		t.mu.Unlock()
		return
	}
	t.docShown = visible

	var changed []string
	if !visible {
		for id, card := range t.cards {
			if card.active {
				card.active = false
				changed = append(changed, id)
			}
		}
	} else {
		for id, card := range t.cards {
			if !card.active && card.ratio >= ActivateRatio {
				card.active = true
				changed = append(changed, id)
			}
		}
	}
	active := visible
	t.mu.Unlock()

	// Deterministic emit order keeps coordinator behavior reproducible
	// when several cards change at once.
	sort.Strings(changed)
	for _, id := range changed {
		t.onChange(id, active)
	}
}

// Active reports whether a card currently satisfies the activation signal
func (t *VisibilityTracker) Active(cardID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	card, ok := t.cards[cardID]
	return ok && card.active
}
