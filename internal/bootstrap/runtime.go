// Package bootstrap wires shared runtime dependencies for the commands.
package bootstrap

import (
	"fmt"

	"dakku/internal/cache"
	"dakku/internal/config"
	"dakku/internal/database"
	"dakku/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates the database with generated demo content.
	SeedDemoData bool
	SeedUsers    int
	SeedPosts    int
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. The Redis client is nil when the server is unreachable; callers
// degrade rather than fail.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData {
		users := opts.SeedUsers
		if users <= 0 {
			users = 10
		}
		posts := opts.SeedPosts
		if posts <= 0 {
			posts = 30
		}
		if err := seed.Seed(db, seed.Options{NumUsers: users, NumPosts: posts}); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}
