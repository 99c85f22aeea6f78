package modconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	redrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/redis"
)

type Store interface {
	ListActive(ctx context.Context) ([]model.ModerationConfig, error)
	GetBanSettings(ctx context.Context) (pgrepo.BanSettingsRecord, error)
}

type Cache interface {
	GetConfigs(ctx context.Context) ([]model.ModerationConfig, bool, error)
	SetConfigs(ctx context.Context, configs []model.ModerationConfig, ttl time.Duration) error
	GetBanSettings(ctx context.Context) (redrepo.BanSettingsSnapshot, bool, error)
	SetBanSettings(ctx context.Context, snapshot redrepo.BanSettingsSnapshot, ttl time.Duration) error
}

// TierSettings is the resolved escalation ladder: ordered durations
// for ordinals 1..len(TierDays), then MaxBanDays beyond.
type TierSettings struct {
	TierDays        []int
	MaxBanDays      int
	ResetWindowDays int
}

// Provider reads the operator moderation settings, preferring the
// redis snapshot and falling back to postgres. File-level defaults
// cover the ban ladder when no settings row exists yet.
type Provider struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	defaults TierSettings
	logger   *zap.Logger
}

func NewProvider(store Store, cache Cache, cacheTTL time.Duration, defaults TierSettings, logger *zap.Logger) *Provider {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		defaults: defaults,
		logger:   logger,
	}
}

func (p *Provider) GetModerationConfig(ctx context.Context) ([]model.ModerationConfig, error) {
	if p.cache != nil {
		configs, found, err := p.cache.GetConfigs(ctx)
		if err != nil {
			p.logger.Debug("moderation config cache read failed", zap.Error(err))
		} else if found {
			return configs, nil
		}
	}

	if p.store == nil {
		return nil, fmt.Errorf("moderation config store is nil")
	}

	configs, err := p.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.SetConfigs(ctx, configs, p.cacheTTL); err != nil {
			p.logger.Debug("moderation config cache write failed", zap.Error(err))
		}
	}

	return configs, nil
}

func (p *Provider) GetBanTierSettings(ctx context.Context) (TierSettings, error) {
	if p.cache != nil {
		snapshot, found, err := p.cache.GetBanSettings(ctx)
		if err != nil {
			p.logger.Debug("ban settings cache read failed", zap.Error(err))
		} else if found {
			return TierSettings{
				TierDays:        snapshot.TierDays,
				MaxBanDays:      snapshot.MaxBanDays,
				ResetWindowDays: snapshot.ResetWindowDays,
			}, nil
		}
	}

	if p.store == nil {
		return TierSettings{}, fmt.Errorf("moderation config store is nil")
	}

	settings := p.defaults
	rec, err := p.store.GetBanSettings(ctx)
	switch {
	case err == nil:
		settings = TierSettings{
			TierDays:        []int{rec.Tier1Days, rec.Tier2Days, rec.Tier3Days, rec.Tier4Days},
			MaxBanDays:      rec.MaxBanDays,
			ResetWindowDays: rec.ResetWindowDays,
		}
	case errors.Is(err, pgrepo.ErrBanSettingsNotFound):
		// no row yet, file defaults apply
	default:
		return TierSettings{}, err
	}

	if p.cache != nil {
		snapshot := redrepo.BanSettingsSnapshot{
			TierDays:        settings.TierDays,
			MaxBanDays:      settings.MaxBanDays,
			ResetWindowDays: settings.ResetWindowDays,
		}
		if err := p.cache.SetBanSettings(ctx, snapshot, p.cacheTTL); err != nil {
			p.logger.Debug("ban settings cache write failed", zap.Error(err))
		}
	}

	return settings, nil
}
