package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voycebutler18/spilkz-sub001/internal/clipstore"
	"github.com/voycebutler18/spilkz-sub001/internal/feed"
	"github.com/voycebutler18/spilkz-sub001/internal/handlers"
	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"github.com/voycebutler18/spilkz-sub001/internal/models"
	"github.com/voycebutler18/spilkz-sub001/internal/realtime"
	"github.com/voycebutler18/spilkz-sub001/internal/session"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	logger.SugaredLog = logger.Log.Sugar()
	os.Exit(m.Run())
}

// setupTestDB creates an in-memory SQLite database with manually created
// tables (GORM AutoMigrate emits PostgreSQL-specific defaults)
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
		CREATE TABLE profiles (
			id TEXT PRIMARY KEY,
			handle TEXT NOT NULL,
			display_name TEXT NOT NULL,
			avatar_url TEXT,
			bio TEXT,
			follower_count INTEGER DEFAULT 0,
			clip_count INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error)

	require.NoError(t, db.Exec(`
		CREATE TABLE clips (
			id TEXT PRIMARY KEY,
			creator_id TEXT NOT NULL,
			video_key TEXT NOT NULL,
			video_url TEXT NOT NULL,
			poster_url TEXT,
			title TEXT,
			duration REAL DEFAULT 0,
			loop_start REAL DEFAULT 0,
			view_count INTEGER DEFAULT 0,
			like_count INTEGER DEFAULT 0,
			comment_count INTEGER DEFAULT 0,
			boost_score REAL DEFAULT 0,
			is_public INTEGER DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error)

	return db
}

func seedClips(t *testing.T, db *gorm.DB) {
	profile := models.Profile{ID: "creator-1", Handle: "zoe", DisplayName: "Zoe"}
	require.NoError(t, db.Create(&profile).Error)

	for i := 0; i < 20; i++ {
		clip := models.Clip{
			ID:        fmt.Sprintf("recent-%d", i),
			CreatorID: "creator-1",
			VideoKey:  fmt.Sprintf("clips/test/recent-%d.mp4", i),
			VideoURL:  fmt.Sprintf("https://cdn.example.com/recent-%d.mp4", i),
			IsPublic:  true,
			CreatedAt: time.Now().Add(-time.Duration(i+1) * time.Hour),
		}
		require.NoError(t, db.Create(&clip).Error)
	}
	for i := 0; i < 20; i++ {
		clip := models.Clip{
			ID:        fmt.Sprintf("trend-%d", i),
			CreatorID: "creator-1",
			VideoKey:  fmt.Sprintf("clips/test/trend-%d.mp4", i),
			VideoURL:  fmt.Sprintf("https://cdn.example.com/trend-%d.mp4", i),
			LikeCount: 100 + i,
			ViewCount: 2000,
			IsPublic:  true,
			CreatedAt: time.Now().Add(-time.Duration(3*24+i) * time.Hour),
		}
		require.NoError(t, db.Create(&clip).Error)
	}
}

func setupServer(t *testing.T, db *gorm.DB) (*gin.Engine, *realtime.Hub) {
	store := clipstore.NewGormStore(db)
	composer := feed.NewComposer(store)
	seeds := session.NewProvider(session.NewMemorySeedStore())
	hub := realtime.NewHub()
	hub.Run()
	t.Cleanup(hub.Stop)

	h := handlers.New(composer, seeds, store, nil, hub)
	r := gin.New()
	r.GET("/api/v1/feed", h.GetFeed)
	r.POST("/api/v1/feed/seed/reset", h.ResetSeed)
	r.GET("/api/v1/clips/:id", h.GetClip)
	r.POST("/api/v1/clips/:id/view", h.AddView)
	r.POST("/api/v1/clips/:id/counters", h.RefreshCounters)
	r.GET("/ws/counters", realtime.ServeWS(hub))
	return r, hub
}

type feedResponse struct {
	Entries []feed.Entry `json:"entries"`
	Meta    feed.Meta    `json:"meta"`
}

func TestFeedEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedClips(t, db)
	r, _ := setupServer(t, db)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed?kind=home&limit=10", nil)
	req.Header.Set("X-Session-ID", "sess-e2e")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp feedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Len(t, resp.Entries, 10)
	assert.False(t, resp.Meta.Degraded)
	assert.Positive(t, resp.Meta.RecentCount)
	assert.Positive(t, resp.Meta.TrendingCount)

	for _, e := range resp.Entries {
		require.NotNil(t, e.Creator, "profiles are hydrated from the database")
		assert.Equal(t, "zoe", e.Creator.Handle)
		assert.NotEmpty(t, e.Clip.VideoURL)
	}

	// A second soft load reproduces the order bit for bit.
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/feed?kind=home&limit=10", nil)
	req2.Header.Set("X-Session-ID", "sess-e2e")
	r.ServeHTTP(w2, req2)
	require.Equal(t, http.StatusOK, w2.Code)

	var resp2 feedResponse
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp2))
	require.Len(t, resp2.Entries, 10)
	for i := range resp.Entries {
		assert.Equal(t, resp.Entries[i].Clip.ID, resp2.Entries[i].Clip.ID)
	}
}

func TestViewCountingEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupTestDB(t)
	seedClips(t, db)
	r, _ := setupServer(t, db)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/clips/recent-0/view", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/clips/recent-0", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Clip models.Clip `json:"clip"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Clip.ViewCount)

	// Unknown clips 404.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/clips/missing/view", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
