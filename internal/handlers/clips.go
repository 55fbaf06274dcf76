package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/voycebutler18/spilkz-sub001/internal/errors"
	"github.com/voycebutler18/spilkz-sub001/internal/realtime"
	"gorm.io/gorm"
)

// GetClip returns a single clip with its creator snapshot
// GET /api/v1/clips/:id
func (h *Handlers) GetClip(c *gin.Context) {
	clipID := c.Param("id")

	clip, err := h.store.GetClip(c.Request.Context(), clipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apierrors.NotFound("clip"))
			return
		}
		respondError(c, apierrors.InternalError("failed to load clip"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"clip": clip})
}

// AddView increments a clip's view counter
// POST /api/v1/clips/:id/view
func (h *Handlers) AddView(c *gin.Context) {
	clipID := c.Param("id")

	if err := h.store.AddView(c.Request.Context(), clipID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apierrors.NotFound("clip"))
			return
		}
		respondError(c, apierrors.InternalError("failed to record view"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "view_recorded"})
}

// RefreshCounters applies an out-of-band engagement counter refresh and
// fans the new values out to connected feed clients
// POST /api/v1/clips/:id/counters
func (h *Handlers) RefreshCounters(c *gin.Context) {
	clipID := c.Param("id")

	var req struct {
		ViewCount    int `json:"view_count" binding:"min=0"`
		LikeCount    int `json:"like_count" binding:"min=0"`
		CommentCount int `json:"comment_count" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.BadRequest("invalid counter payload"))
		return
	}

	clip, err := h.store.RefreshCounters(c.Request.Context(), clipID,
		req.ViewCount, req.LikeCount, req.CommentCount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, apierrors.NotFound("clip"))
			return
		}
		respondError(c, apierrors.InternalError("failed to refresh counters"))
		return
	}

	h.hub.Broadcast(&realtime.CounterUpdate{
		ClipID:       clip.ID,
		ViewCount:    req.ViewCount,
		LikeCount:    req.LikeCount,
		CommentCount: req.CommentCount,
	})

	c.JSON(http.StatusOK, gin.H{"clip": clip})
}

// PresignUpload issues a direct-upload grant for new clip media
// GET /api/v1/uploads/presign?creator_id=...&filename=...
func (h *Handlers) PresignUpload(c *gin.Context) {
	creatorID := c.Query("creator_id")
	filename := c.Query("filename")
	if creatorID == "" {
		respondError(c, apierrors.ValidationError("creator_id", "creator_id is required"))
		return
	}
	if filename == "" {
		respondError(c, apierrors.ValidationError("filename", "filename is required"))
		return
	}

	result, err := h.media.PresignUpload(c.Request.Context(), creatorID, filename)
	if err != nil {
		respondError(c, apierrors.ServiceUnavailable("media storage"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload": result})
}
