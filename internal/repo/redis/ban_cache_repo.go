package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// BanCacheRepo caches the "is this user currently banned" answer. A
// positive entry expires with the ban itself (or after the configured
// TTL for permanent bans); negative answers are cached briefly.
type BanCacheRepo struct {
	client *goredis.Client
}

func NewBanCacheRepo(client *goredis.Client) *BanCacheRepo {
	return &BanCacheRepo{client: client}
}

func (r *BanCacheRepo) Get(ctx context.Context, userID int64) (banned bool, found bool, err error) {
	if r.client == nil {
		return false, false, fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return false, false, fmt.Errorf("invalid user id")
	}

	raw, err := r.client.Get(ctx, banKey(userID)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("get ban cache: %w", err)
	}

	return raw == "1", true, nil
}

func (r *BanCacheRepo) Set(ctx context.Context, userID int64, banned bool, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	value := "0"
	if banned {
		value = "1"
	}

	if err := r.client.Set(ctx, banKey(userID), value, ttl).Err(); err != nil {
		return fmt.Errorf("set ban cache: %w", err)
	}

	return nil
}

func (r *BanCacheRepo) Invalidate(ctx context.Context, userID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if userID <= 0 {
		return fmt.Errorf("invalid user id")
	}

	if err := r.client.Del(ctx, banKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate ban cache: %w", err)
	}

	return nil
}

// FlushAll drops every cached ban answer. Used by the expiry sweep so
// freshly unbanned users are not served a stale positive.
func (r *BanCacheRepo) FlushAll(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	iter := r.client.Scan(ctx, 0, "ban:user:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("flush ban cache: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan ban cache: %w", err)
	}

	return nil
}

func banKey(userID int64) string {
	return "ban:user:" + strconv.FormatInt(userID, 10)
}
