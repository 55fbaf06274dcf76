package feed

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/voycebutler18/spilkz-sub001/internal/clipstore"
	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"github.com/voycebutler18/spilkz-sub001/internal/metrics"
	"github.com/voycebutler18/spilkz-sub001/internal/models"
	"go.uber.org/zap"
)

// Kind names a feed variant with its own ratio tuning and session seed
type Kind string

const (
	KindHome      Kind = "home"
	KindDiscovery Kind = "discovery"
)

// ParseKind maps a query value to a feed kind, defaulting to home
func ParseKind(s string) Kind {
	if Kind(s) == KindDiscovery {
		return KindDiscovery
	}
	return KindHome
}

// Entry is one composed feed item: a clip plus its creator snapshot
type Entry struct {
	Clip    models.Clip     `json:"clip"`
	Creator *models.Profile `json:"creator,omitempty"`
	Source  string          `json:"source"` // "recent" or "trending"
}

// Meta describes how a feed response was composed
type Meta struct {
	Kind          Kind   `json:"kind"`
	Limit         int    `json:"limit"`
	Count         int    `json:"count"`
	Seed          uint32 `json:"seed"`
	RecentCount   int    `json:"recent_count"`
	TrendingCount int    `json:"trending_count"`
	Degraded      bool   `json:"degraded"` // one window failed and was skipped
	Pinned        bool   `json:"pinned"`   // newest clip was pinned to the top
}

// Options control one composition request
type Options struct {
	Kind  Kind
	Limit int
	Seed  uint32

	// PinNewest moves the newest candidate to index 0 after the shuffle.
	// Set on soft navigations; cleared on a hard reload.
	PinNewest bool
}

// Tuning holds the product constants of the blend. The weights and window
// sizes are observed tuning values, not a principled ranking model, so they
// stay configurable rather than baked in.
type Tuning struct {
	RecentWindow   time.Duration
	TrendingWindow time.Duration

	HomeRecentRatio        float64
	HomeTrendingRatio      float64
	DiscoveryRecentRatio   float64
	DiscoveryTrendingRatio float64

	LikeWeight    float64
	CommentWeight float64
	ViewDivisor   float64
	ViewCap       float64
}

// DefaultTuning returns the production blend constants
func DefaultTuning() Tuning {
	return Tuning{
		RecentWindow:           48 * time.Hour,
		TrendingWindow:         7 * 24 * time.Hour,
		HomeRecentRatio:        0.70,
		HomeTrendingRatio:      0.30,
		DiscoveryRecentRatio:   0.55,
		DiscoveryTrendingRatio: 0.45,
		LikeWeight:             2,
		CommentWeight:          1,
		ViewDivisor:            20,
		ViewCap:                15,
	}
}

// TrendingScore computes the engagement score used to rank the trending
// window: weighted likes and comments plus a capped view contribution,
// with any promotion boost applied on top.
func (t Tuning) TrendingScore(clip *models.Clip) float64 {
	views := float64(clip.ViewCount) / t.ViewDivisor
	if views > t.ViewCap {
		views = t.ViewCap
	}
	return t.LikeWeight*float64(clip.LikeCount) +
		t.CommentWeight*float64(clip.CommentCount) +
		views +
		clip.BoostScore
}

func (t Tuning) ratios(kind Kind) (recent, trending float64) {
	if kind == KindDiscovery {
		return t.DiscoveryRecentRatio, t.DiscoveryTrendingRatio
	}
	return t.HomeRecentRatio, t.HomeTrendingRatio
}

const (
	defaultLimit = 20
	maxLimit     = 50
)

// Composer blends the recency and trending windows into one deterministic
// per-session ordering
type Composer struct {
	store  clipstore.Store
	tuning Tuning
	now    func() time.Time
}

// NewComposer creates a composer over the given store with default tuning
func NewComposer(store clipstore.Store) *Composer {
	return &Composer{store: store, tuning: DefaultTuning(), now: time.Now}
}

// NewComposerWithTuning creates a composer with custom blend constants
func NewComposerWithTuning(store clipstore.Store, tuning Tuning) *Composer {
	return &Composer{store: store, tuning: tuning, now: time.Now}
}

// Compose fetches both windows, blends them, applies the seeded shuffle and
// hydrates creator profiles. A failure in one window degrades to the other;
// only both failing is an error.
func (c *Composer) Compose(ctx context.Context, opts Options) ([]Entry, Meta, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	now := c.now()
	fetchLimit := limit * 4

	// Fetch both windows concurrently; each failure is captured
	// independently so one window can carry the feed alone.
	type windowResult struct {
		clips  []models.Clip
		source string
		err    error
	}
	resultsChan := make(chan windowResult, 2)

	go func() {
		clips, err := c.store.RecentWindow(ctx, now.Add(-c.tuning.RecentWindow), fetchLimit)
		resultsChan <- windowResult{clips: clips, source: "recent", err: err}
	}()
	go func() {
		clips, err := c.store.TrendingWindow(ctx, now.Add(-c.tuning.TrendingWindow), fetchLimit)
		resultsChan <- windowResult{clips: clips, source: "trending", err: err}
	}()

	var rawRecent, rawTrending []models.Clip
	var recentErr, trendingErr error
	for i := 0; i < 2; i++ {
		result := <-resultsChan
		switch result.source {
		case "recent":
			rawRecent, recentErr = result.clips, result.err
		case "trending":
			rawTrending, trendingErr = result.clips, result.err
		}
		if result.err != nil {
			metrics.Get().FeedWindowFailures.WithLabelValues(result.source).Inc()
			logger.Log.Warn("Feed window fetch failed",
				zap.String("source", result.source),
				zap.Error(result.err))
		}
	}

	if recentErr != nil && trendingErr != nil {
		return nil, Meta{}, fmt.Errorf("both feed windows failed: recent: %v, trending: %w", recentErr, trendingErr)
	}

	rRatio, tRatio := c.tuning.ratios(opts.Kind)

	// Recency slice: newest first, up to ceil(limit*rRatio). An empty
	// recency window waives the ratio split and trending fills the feed.
	recentTake := int(math.Ceil(float64(limit) * rRatio))
	trendingTake := int(math.Ceil(float64(limit) * tRatio))
	if len(rawRecent) == 0 {
		trendingTake = limit
	}
	if recentTake > len(rawRecent) {
		recentTake = len(rawRecent)
	}

	// Trending slice: exact score, descending, ties broken by recency.
	scored := make([]models.Clip, len(rawTrending))
	copy(scored, rawTrending)
	sort.SliceStable(scored, func(i, j int) bool {
		si, sj := c.tuning.TrendingScore(&scored[i]), c.tuning.TrendingScore(&scored[j])
		if si == sj {
			return scored[i].CreatedAt.After(scored[j].CreatedAt)
		}
		return si > sj
	})
	if trendingTake > len(scored) {
		trendingTake = len(scored)
	}

	// Merge and dedupe by clip identity; the recency slice wins collisions.
	seen := make(map[string]bool, recentTake+trendingTake)
	merged := make([]Entry, 0, recentTake+trendingTake)
	for _, clip := range rawRecent[:recentTake] {
		if seen[clip.ID] {
			continue
		}
		seen[clip.ID] = true
		merged = append(merged, Entry{Clip: clip, Source: "recent"})
	}
	for _, clip := range scored[:trendingTake] {
		if seen[clip.ID] {
			continue
		}
		seen[clip.ID] = true
		merged = append(merged, Entry{Clip: clip, Source: "trending"})
	}

	SeededShuffle(merged, opts.Seed)

	if len(merged) > limit {
		merged = merged[:limit]
	}

	pinned := false
	if opts.PinNewest && len(merged) > 1 {
		pinned = pinNewest(merged)
	}

	c.hydrateProfiles(ctx, merged)

	var recentCount, trendingCount int
	for _, e := range merged {
		if e.Source == "recent" {
			recentCount++
		} else {
			trendingCount++
		}
	}

	meta := Meta{
		Kind:          opts.Kind,
		Limit:         limit,
		Count:         len(merged),
		Seed:          opts.Seed,
		RecentCount:   recentCount,
		TrendingCount: trendingCount,
		Degraded:      recentErr != nil || trendingErr != nil,
		Pinned:        pinned,
	}
	return merged, meta, nil
}

// pinNewest moves the newest entry to the front, preserving the relative
// order of everything else. This runs after the shuffle as a deliberate
// freshness nudge on soft navigations; it is not part of the shuffle's
// determinism contract.
func pinNewest(entries []Entry) bool {
	newest := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].Clip.CreatedAt.After(entries[newest].Clip.CreatedAt) {
			newest = i
		}
	}
	if newest == 0 {
		return false
	}
	pin := entries[newest]
	copy(entries[1:newest+1], entries[0:newest])
	entries[0] = pin
	return true
}

// hydrateProfiles attaches creator snapshots in one batched lookup.
// A missing or failed profile is non-fatal; the entry renders with a
// fallback identity downstream.
func (c *Composer) hydrateProfiles(ctx context.Context, entries []Entry) {
	idSet := make(map[string]bool, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !idSet[e.Clip.CreatorID] {
			idSet[e.Clip.CreatorID] = true
			ids = append(ids, e.Clip.CreatorID)
		}
	}

	profiles, err := c.store.ProfilesByCreator(ctx, ids)
	if err != nil {
		logger.Log.Warn("Profile hydration failed", zap.Error(err))
		return
	}

	for i := range entries {
		if p, ok := profiles[entries[i].Clip.CreatorID]; ok {
			profile := p
			entries[i].Creator = &profile
		}
	}
}
