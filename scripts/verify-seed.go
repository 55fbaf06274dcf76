package main

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/voycebutler18/spilkz-sub001/internal/database"
	"github.com/voycebutler18/spilkz-sub001/internal/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	// Initialize database connection
	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	fmt.Println("🔍 Verifying seed data...")
	fmt.Println()

	var profileCount, clipCount, recentCount, trendingCount int64

	database.DB.Model(&models.Profile{}).Where("deleted_at IS NULL").Count(&profileCount)
	database.DB.Model(&models.Clip{}).Where("deleted_at IS NULL").Count(&clipCount)
	database.DB.Model(&models.Clip{}).
		Where("deleted_at IS NULL AND is_public = true AND created_at > ?", time.Now().Add(-48*time.Hour)).
		Count(&recentCount)
	database.DB.Model(&models.Clip{}).
		Where("deleted_at IS NULL AND is_public = true AND created_at > ?", time.Now().Add(-7*24*time.Hour)).
		Count(&trendingCount)

	fmt.Println("📊 Record Counts:")
	fmt.Printf("  Profiles:              %d\n", profileCount)
	fmt.Printf("  Clips:                 %d\n", clipCount)
	fmt.Printf("  Recency window (48h):  %d\n", recentCount)
	fmt.Printf("  Trending window (7d):  %d\n", trendingCount)
	fmt.Println()

	// Both feed windows need candidates or the blend degenerates.
	if recentCount == 0 {
		fmt.Println("⚠️  No clips inside the 48-hour recency window")
	}
	if trendingCount == 0 {
		fmt.Println("⚠️  No clips inside the 7-day trending window")
	}

	fmt.Println("📝 Sample Data:")
	fmt.Println()

	var clips []models.Clip
	database.DB.Preload("Creator").
		Where("is_public = true").
		Order("created_at DESC").
		Limit(5).
		Find(&clips)

	for _, clip := range clips {
		fmt.Printf("  [%s] %q by @%s\n", clip.ID[:8], clip.Title, clip.Creator.Handle)
		fmt.Printf("      views=%d likes=%d comments=%d loop_start=%.1fs\n",
			clip.ViewCount, clip.LikeCount, clip.CommentCount, clip.LoopStart)
	}

	fmt.Println()
	fmt.Println("✅ Verification complete")
}
