// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"opinion_backend/internal/feature/auth/domain/entity"
	"opinion_backend/internal/feature/auth/usecase"
)

// CachingRoleRepository decorates a RoleRepository with Redis caching of role
// lookups. Writes go to the inner repository and invalidate the account's entry.
//
// An invalidation can race with a reader that loaded the old value before the
// write committed; such a stale entry lives at most ttl.
type CachingRoleRepository struct {
	inner     usecase.RoleRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.RoleRepository = (*CachingRoleRepository)(nil)

// NewCachingRoleRepository decorates a RoleRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "roles".
func NewCachingRoleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.RoleRepository, namespace string) *CachingRoleRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "roles"
	}
	return &CachingRoleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// EnsureRoles is not cached.
func (c *CachingRoleRepository) EnsureRoles(ctx context.Context, roles []entity.RoleName) error {
	return c.inner.EnsureRoles(ctx, roles)
}

// SetSingleRole writes through and drops the cached roles of the account.
func (c *CachingRoleRepository) SetSingleRole(ctx context.Context, accountID uint, role entity.RoleName) error {
	if err := c.inner.SetSingleRole(ctx, accountID, role); err != nil {
		return err
	}
	c.invalidate(ctx, accountID)
	return nil
}

// RoleNames checks the cache first, then falls back to the inner repository.
func (c *CachingRoleRepository) RoleNames(ctx context.Context, accountID uint) ([]entity.RoleName, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.RoleNames(ctx, accountID)
	}

	key := c.cacheKey(accountID)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.RoleName
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.RoleNames(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// AccountsByRole is not cached; admin listings read the store directly.
func (c *CachingRoleRepository) AccountsByRole(ctx context.Context, role entity.RoleName) ([]*entity.Account, error) {
	return c.inner.AccountsByRole(ctx, role)
}

func (c *CachingRoleRepository) invalidate(ctx context.Context, accountID uint) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, c.cacheKey(accountID)).Err(); err != nil {
		slog.Warn("role cache invalidation failed", "account_id", accountID, "error", err)
	}
}

// cacheKey generates the cache key for an account's roles.
func (c *CachingRoleRepository) cacheKey(accountID uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, accountID)
}
