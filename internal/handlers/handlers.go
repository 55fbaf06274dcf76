package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/voycebutler18/spilkz-sub001/internal/clipstore"
	"github.com/voycebutler18/spilkz-sub001/internal/database"
	apierrors "github.com/voycebutler18/spilkz-sub001/internal/errors"
	"github.com/voycebutler18/spilkz-sub001/internal/feed"
	"github.com/voycebutler18/spilkz-sub001/internal/realtime"
	"github.com/voycebutler18/spilkz-sub001/internal/session"
	"github.com/voycebutler18/spilkz-sub001/internal/storage"
)

// Handlers bundles the dependencies shared by all HTTP handlers
type Handlers struct {
	composer *feed.Composer
	seeds    *session.Provider
	store    clipstore.Store
	media    storage.MediaStorage
	hub      *realtime.Hub
}

// New creates the handler set
func New(composer *feed.Composer, seeds *session.Provider, store clipstore.Store, media storage.MediaStorage, hub *realtime.Hub) *Handlers {
	return &Handlers{
		composer: composer,
		seeds:    seeds,
		store:    store,
		media:    media,
		hub:      hub,
	}
}

// RegisterRoutes attaches all API routes to the engine
func (h *Handlers) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api/v1")
	{
		api.GET("/feed", h.GetFeed)
		api.POST("/feed/seed/reset", h.ResetSeed)

		api.GET("/clips/:id", h.GetClip)
		api.POST("/clips/:id/view", h.AddView)
		api.POST("/clips/:id/counters", h.RefreshCounters)

		api.GET("/uploads/presign", h.PresignUpload)
	}

	r.GET("/ws/counters", realtime.ServeWS(h.hub))
}

// Health reports service liveness and database connectivity
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	if err := database.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"error":  "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError renders a standardized API error
func respondError(c *gin.Context, err *apierrors.APIError) {
	c.JSON(err.Status, gin.H{"error": err})
}

// sessionID returns the browsing session identity from the X-Session-ID
// header. Sessions are minted by the external auth/session provider; when
// the header is absent a fresh id is issued and echoed back so the client
// can persist it.
func sessionID(c *gin.Context) string {
	sid := c.GetHeader("X-Session-ID")
	if sid == "" {
		sid = uuid.New().String()
	}
	c.Header("X-Session-ID", sid)
	return sid
}
