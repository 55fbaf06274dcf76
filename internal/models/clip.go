package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the public creator identity attached to feed entries
type Profile struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Handle      string `gorm:"uniqueIndex;not null" json:"handle"`
	DisplayName string `gorm:"not null" json:"display_name"`
	AvatarURL   string `gorm:"type:text" json:"avatar_url"`
	Bio         string `gorm:"type:text" json:"bio"`

	// Cached social counts (maintained by the external data layer)
	FollowerCount int `gorm:"default:0" json:"follower_count"`
	ClipCount     int `gorm:"default:0" json:"clip_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Clip represents a short video post with a ~3 second playback window
type Clip struct {
	ID        string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CreatorID string  `gorm:"not null;index" json:"creator_id"`
	Creator   Profile `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`

	// Media data
	VideoKey  string `gorm:"not null" json:"video_key"` // object key in clip storage
	VideoURL  string `gorm:"not null" json:"video_url"` // resolved playable URL
	PosterURL string `json:"poster_url,omitempty"`
	Title     string `gorm:"type:text" json:"title"`
	Duration  float64 `json:"duration"` // full source duration, seconds

	// Loop window tuning; the playback window is [LoopStart, LoopStart+3)
	LoopStart float64 `gorm:"default:0" json:"loop_start"`

	// Engagement counters (refreshed out-of-band, never authoritative here)
	ViewCount    int `gorm:"default:0" json:"view_count"`
	LikeCount    int `gorm:"default:0" json:"like_count"`
	CommentCount int `gorm:"default:0" json:"comment_count"`

	// Optional promotion score applied on top of the trending score
	BoostScore float64 `gorm:"default:0" json:"boost_score"`

	// Status
	IsPublic bool `gorm:"default:true" json:"is_public"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
