// Package cache holds Redis-backed read caches for hot follow-graph lookups.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jestfly/community-backend/internal/repositories"
)

const followingKeyPrefix = "following:index:"

// FollowingCache caches each user's following-id set as a Redis list so the
// feed's following-only filter and visibility checks avoid a relational
// query per request. Entries are invalidated on follow/unfollow and expire
// on a TTL as a backstop. With a nil client every read falls through to the
// repository.
type FollowingCache struct {
	rdb  *redis.Client
	repo repositories.FollowRepository
	ttl  time.Duration
}

// NewFollowingCache builds a cache over the given follow repository
func NewFollowingCache(rdb *redis.Client, repo repositories.FollowRepository, ttl time.Duration) *FollowingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &FollowingCache{rdb: rdb, repo: repo, ttl: ttl}
}

func followingKey(userID uint) string {
	return followingKeyPrefix + strconv.FormatUint(uint64(userID), 10)
}

// FollowingIDs returns the ids the user follows, served from Redis when
// possible. A cached empty set is represented by a single "-" sentinel so
// users who follow nobody do not hammer the database.
func (c *FollowingCache) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	if c.rdb != nil {
		values, err := c.rdb.LRange(ctx, followingKey(userID), 0, -1).Result()
		if err == nil && len(values) > 0 {
			if values[0] == "-" {
				return nil, nil
			}
			ids := make([]uint, 0, len(values))
			for _, v := range values {
				id, perr := strconv.ParseUint(v, 10, 32)
				if perr != nil {
					ids = nil
					break
				}
				ids = append(ids, uint(id))
			}
			if ids != nil {
				return ids, nil
			}
		}
	}

	ids, err := c.repo.GetFollowingIDs(userID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, userID, ids)
	return ids, nil
}

func (c *FollowingCache) store(ctx context.Context, userID uint, ids []uint) {
	if c.rdb == nil {
		return
	}
	key := followingKey(userID)
	values := make([]interface{}, 0, len(ids)+1)
	if len(ids) == 0 {
		values = append(values, "-")
	}
	for _, id := range ids {
		values = append(values, strconv.FormatUint(uint64(id), 10))
	}

	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, c.ttl)
	_, _ = pipe.Exec(ctx)
}

// Invalidate drops the cached set after a follow or unfollow
func (c *FollowingCache) Invalidate(ctx context.Context, userID uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, followingKey(userID)).Err()
}
