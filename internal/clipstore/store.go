package clipstore

import (
	"context"
	"fmt"
	"time"

	"github.com/voycebutler18/spilkz-sub001/internal/models"
	"gorm.io/gorm"
)

// Store is the clip data access surface consumed by the feed composer and
// handlers. It is an interface so composer tests can run against fakes.
type Store interface {
	// RecentWindow returns public clips created after since, newest first.
	RecentWindow(ctx context.Context, since time.Time, limit int) ([]models.Clip, error)

	// TrendingWindow returns public clips created after since, coarsely
	// pre-sorted by engagement. Exact trending scoring happens in the
	// composer so the formula stays portable and unit-testable.
	TrendingWindow(ctx context.Context, since time.Time, limit int) ([]models.Clip, error)

	// ProfilesByCreator batch-loads creator profiles in one round trip.
	ProfilesByCreator(ctx context.Context, creatorIDs []string) (map[string]models.Profile, error)

	GetClip(ctx context.Context, id string) (*models.Clip, error)
	AddView(ctx context.Context, id string) error

	// RefreshCounters applies an out-of-band engagement counter update.
	RefreshCounters(ctx context.Context, id string, views, likes, comments int) (*models.Clip, error)
}

// GormStore implements Store against the relational database
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store bound to the given database handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) RecentWindow(ctx context.Context, since time.Time, limit int) ([]models.Clip, error) {
	var clips []models.Clip
	err := s.db.WithContext(ctx).
		Where("is_public = ? AND created_at > ?", true, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&clips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent window: %w", err)
	}
	return clips, nil
}

func (s *GormStore) TrendingWindow(ctx context.Context, since time.Time, limit int) ([]models.Clip, error) {
	var clips []models.Clip
	err := s.db.WithContext(ctx).
		Where("is_public = ? AND created_at > ?", true, since).
		Order("(like_count * 2 + comment_count) DESC, created_at DESC").
		Limit(limit).
		Find(&clips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get trending window: %w", err)
	}
	return clips, nil
}

func (s *GormStore) ProfilesByCreator(ctx context.Context, creatorIDs []string) (map[string]models.Profile, error) {
	profiles := make(map[string]models.Profile, len(creatorIDs))
	if len(creatorIDs) == 0 {
		return profiles, nil
	}

	var rows []models.Profile
	err := s.db.WithContext(ctx).
		Where("id IN ?", creatorIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to batch-load profiles: %w", err)
	}

	for _, p := range rows {
		profiles[p.ID] = p
	}
	return profiles, nil
}

func (s *GormStore) GetClip(ctx context.Context, id string) (*models.Clip, error) {
	var clip models.Clip
	if err := s.db.WithContext(ctx).Preload("Creator").First(&clip, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &clip, nil
}

// AddView increments the view counter atomically
func (s *GormStore) AddView(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Clip{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *GormStore) RefreshCounters(ctx context.Context, id string, views, likes, comments int) (*models.Clip, error) {
	var clip models.Clip
	if err := s.db.WithContext(ctx).First(&clip, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"view_count":    views,
		"like_count":    likes,
		"comment_count": comments,
	}
	if err := s.db.WithContext(ctx).Model(&clip).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to refresh counters: %w", err)
	}
	return &clip, nil
}
