// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "opinion_backend/internal/feature/auth/adapters"
	"opinion_backend/internal/feature/auth/usecase"
	"opinion_backend/internal/platform/cache"
)

// NewRoleRepository creates a RoleRepository implementation.
// If Redis is available, role lookups are cached in Redis.
// Otherwise, every lookup goes to the database.
func NewRoleRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.RoleRepository {
	roles := authadapters.NewRoleGorm(db)
	if rdb != nil {
		return cache.NewCachingRoleRepository(rdb, ttl, roles, "roles")
	}
	return roles
}
