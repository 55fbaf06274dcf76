package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/voycebutler18/spilkz-sub001/internal/errors"
	"github.com/voycebutler18/spilkz-sub001/internal/feed"
	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"github.com/voycebutler18/spilkz-sub001/internal/metrics"
	"go.uber.org/zap"
)

// GetFeed composes and returns the feed for the viewer's session.
// GET /api/v1/feed?kind=home|discovery&limit=N&reload=0|1
//
// reload=1 is the client's navigation-timing signal for a genuine hard
// reload: the session seed is discarded, a fresh one is minted, and the
// newest clip is no longer pinned to the top.
func (h *Handlers) GetFeed(c *gin.Context) {
	sid := sessionID(c)
	kind := feed.ParseKind(c.DefaultQuery("kind", "home"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	hardReload := c.DefaultQuery("reload", "0") == "1"

	m := metrics.Get()
	ctx := c.Request.Context()

	if hardReload {
		if err := h.seeds.Reset(ctx, sid, string(kind)); err != nil {
			// Seed reset failing just means the old ordering survives
			// one more load; not worth failing the request.
			logger.Log.Warn("Seed reset failed",
				logger.WithSessionID(sid),
				zap.Error(err))
		} else {
			m.SeedResetsTotal.WithLabelValues(string(kind)).Inc()
		}
	}

	seed, err := h.seeds.Seed(ctx, sid, string(kind))
	if err != nil {
		respondError(c, apierrors.InternalError("failed to establish session seed"))
		return
	}

	start := time.Now()
	entries, meta, err := h.composer.Compose(ctx, feed.Options{
		Kind:      kind,
		Limit:     limit,
		Seed:      seed,
		PinNewest: !hardReload,
	})
	if err != nil {
		m.FeedWindowFailures.WithLabelValues("both").Inc()
		respondError(c, apierrors.FeedUnavailable())
		return
	}

	m.FeedCompositionsTotal.WithLabelValues(string(kind)).Inc()
	m.FeedCompositionDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if meta.Degraded {
		m.FeedDegradedTotal.WithLabelValues(string(kind)).Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"meta":    meta,
	})
}

// ResetSeed discards the session's seed for a feed kind
// POST /api/v1/feed/seed/reset
func (h *Handlers) ResetSeed(c *gin.Context) {
	sid := sessionID(c)

	var req struct {
		Kind string `json:"kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Kind = "home"
	}
	kind := feed.ParseKind(req.Kind)

	if err := h.seeds.Reset(c.Request.Context(), sid, string(kind)); err != nil {
		respondError(c, apierrors.InternalError("failed to reset session seed"))
		return
	}
	metrics.Get().SeedResetsTotal.WithLabelValues(string(kind)).Inc()

	c.JSON(http.StatusOK, gin.H{"message": "seed_reset", "kind": kind})
}
