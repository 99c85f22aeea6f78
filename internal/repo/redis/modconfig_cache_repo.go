package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

const (
	modConfigKey   = "moderation:configs"
	banSettingsKey = "moderation:ban_settings"
)

// ModConfigCacheRepo holds short-lived snapshots of the operator
// moderation settings so the hot submit path does not hit postgres on
// every evaluation.
type ModConfigCacheRepo struct {
	client *goredis.Client
}

type BanSettingsSnapshot struct {
	TierDays        []int `json:"tier_days"`
	MaxBanDays      int   `json:"max_ban_days"`
	ResetWindowDays int   `json:"reset_window_days"`
}

func NewModConfigCacheRepo(client *goredis.Client) *ModConfigCacheRepo {
	return &ModConfigCacheRepo{client: client}
}

func (r *ModConfigCacheRepo) GetConfigs(ctx context.Context) ([]model.ModerationConfig, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, modConfigKey).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get moderation config cache: %w", err)
	}

	var configs []model.ModerationConfig
	if err := json.Unmarshal([]byte(raw), &configs); err != nil {
		return nil, false, fmt.Errorf("decode moderation config cache: %w", err)
	}

	return configs, true, nil
}

func (r *ModConfigCacheRepo) SetConfigs(ctx context.Context, configs []model.ModerationConfig, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	raw, err := json.Marshal(configs)
	if err != nil {
		return fmt.Errorf("encode moderation config cache: %w", err)
	}

	if err := r.client.Set(ctx, modConfigKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set moderation config cache: %w", err)
	}

	return nil
}

func (r *ModConfigCacheRepo) GetBanSettings(ctx context.Context) (BanSettingsSnapshot, bool, error) {
	if r.client == nil {
		return BanSettingsSnapshot{}, false, fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, banSettingsKey).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return BanSettingsSnapshot{}, false, nil
		}
		return BanSettingsSnapshot{}, false, fmt.Errorf("get ban settings cache: %w", err)
	}

	var snapshot BanSettingsSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return BanSettingsSnapshot{}, false, fmt.Errorf("decode ban settings cache: %w", err)
	}

	return snapshot, true, nil
}

func (r *ModConfigCacheRepo) SetBanSettings(ctx context.Context, snapshot BanSettingsSnapshot, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode ban settings cache: %w", err)
	}

	if err := r.client.Set(ctx, banSettingsKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("set ban settings cache: %w", err)
	}

	return nil
}

func (r *ModConfigCacheRepo) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, modConfigKey, banSettingsKey).Err(); err != nil {
		return fmt.Errorf("invalidate moderation config cache: %w", err)
	}

	return nil
}
