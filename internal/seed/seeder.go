package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"github.com/voycebutler18/spilkz-sub001/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data: enough
// creators and clips that both feed windows have real candidate sets.
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating profiles...")
	profiles, err := s.seedProfiles(50)
	if err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}

	logger.Log.Info("Creating clips...")
	count, err := s.seedClips(profiles, 400)
	if err != nil {
		return fmt.Errorf("failed to seed clips: %w", err)
	}

	logger.Log.Info("Seeding complete",
		zap.Int("profiles", len(profiles)),
		zap.Int("clips", count))
	return nil
}

// SeedTest seeds a minimal dataset for test databases
func (s *Seeder) SeedTest() error {
	profiles, err := s.seedProfiles(5)
	if err != nil {
		return err
	}
	_, err = s.seedClips(profiles, 30)
	return err
}

// Clean removes all seeded data
func (s *Seeder) Clean() error {
	if err := s.db.Exec("DELETE FROM clips").Error; err != nil {
		return err
	}
	return s.db.Exec("DELETE FROM profiles").Error
}

func (s *Seeder) seedProfiles(count int) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, count)
	for i := 0; i < count; i++ {
		profile := models.Profile{
			Handle:        fmt.Sprintf("%s%d", gofakeit.Username(), i),
			DisplayName:   gofakeit.Name(),
			AvatarURL:     fmt.Sprintf("https://cdn.splikz.dev/avatars/%s.jpg", gofakeit.UUID()),
			Bio:           gofakeit.Sentence(8),
			FollowerCount: rand.Intn(5000),
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// seedClips distributes clips so both feed windows are populated: roughly
// a third inside the 48-hour recency window, the rest spread over the
// 7-day trending window and beyond.
func (s *Seeder) seedClips(profiles []models.Profile, count int) (int, error) {
	created := 0
	for i := 0; i < count; i++ {
		creator := profiles[rand.Intn(len(profiles))]

		var age time.Duration
		switch {
		case i%3 == 0:
			age = time.Duration(rand.Intn(48)) * time.Hour
		case i%3 == 1:
			age = 48*time.Hour + time.Duration(rand.Intn(5*24))*time.Hour
		default:
			age = 7*24*time.Hour + time.Duration(rand.Intn(30*24))*time.Hour
		}

		duration := 5 + rand.Float64()*25
		loopStart := 0.0
		if rand.Intn(3) == 0 && duration > 4 {
			loopStart = rand.Float64() * (duration - 3)
		}

		// Engagement skews heavily toward a small set of hits.
		views := rand.Intn(100)
		likes := rand.Intn(20)
		comments := rand.Intn(5)
		if rand.Intn(10) == 0 {
			views = 500 + rand.Intn(10000)
			likes = 50 + rand.Intn(800)
			comments = 10 + rand.Intn(120)
		}

		key := fmt.Sprintf("clips/dev/%s/%s.mp4", creator.ID, gofakeit.UUID())
		clip := models.Clip{
			CreatorID:    creator.ID,
			VideoKey:     key,
			VideoURL:     "https://cdn.splikz.dev/" + key,
			PosterURL:    fmt.Sprintf("https://cdn.splikz.dev/posters/%s.jpg", gofakeit.UUID()),
			Title:        gofakeit.Sentence(4),
			Duration:     duration,
			LoopStart:    loopStart,
			ViewCount:    views,
			LikeCount:    likes,
			CommentCount: comments,
			IsPublic:     true,
			CreatedAt:    time.Now().Add(-age),
		}
		if err := s.db.Create(&clip).Error; err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
