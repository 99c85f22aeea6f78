package modconfig

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	redrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/redis"
)

type fakeStore struct {
	configs     []model.ModerationConfig
	settings    pgrepo.BanSettingsRecord
	settingsErr error
	listCalls   int
}

func (s *fakeStore) ListActive(_ context.Context) ([]model.ModerationConfig, error) {
	s.listCalls++
	return s.configs, nil
}

func (s *fakeStore) GetBanSettings(_ context.Context) (pgrepo.BanSettingsRecord, error) {
	if s.settingsErr != nil {
		return pgrepo.BanSettingsRecord{}, s.settingsErr
	}
	return s.settings, nil
}

func defaultTiers() TierSettings {
	return TierSettings{TierDays: []int{7, 14, 28, 56}, MaxBanDays: 180, ResetWindowDays: 90}
}

func newCache(t *testing.T) (Cache, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return redrepo.NewModConfigCacheRepo(client), cleanup
}

func TestGetModerationConfigCachesSecondRead(t *testing.T) {
	cache, cleanup := newCache(t)
	defer cleanup()

	store := &fakeStore{configs: []model.ModerationConfig{
		{Category: "hate", Threshold: 0.7, Action: enums.ModerationActionRemoved, AppliesTo: model.ScopeBoth},
	}}
	provider := NewProvider(store, cache, time.Minute, defaultTiers(), nil)

	ctx := context.Background()

	first, err := provider.GetModerationConfig(ctx)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if len(first) != 1 || first[0].Category != "hate" {
		t.Fatalf("unexpected configs: %+v", first)
	}

	second, err := provider.GetModerationConfig(ctx)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("unexpected cached configs: %+v", second)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected single store read, got %d", store.listCalls)
	}
}

func TestGetBanTierSettingsPrefersStoreRow(t *testing.T) {
	store := &fakeStore{settings: pgrepo.BanSettingsRecord{
		Tier1Days: 3, Tier2Days: 6, Tier3Days: 12, Tier4Days: 24,
		MaxBanDays: 60, ResetWindowDays: 30,
	}}
	provider := NewProvider(store, nil, time.Minute, defaultTiers(), nil)

	settings, err := provider.GetBanTierSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if len(settings.TierDays) != 4 || settings.TierDays[0] != 3 || settings.TierDays[3] != 24 {
		t.Fatalf("unexpected ladder: %v", settings.TierDays)
	}
	if settings.MaxBanDays != 60 || settings.ResetWindowDays != 30 {
		t.Fatalf("unexpected settings: %+v", settings)
	}
}

func TestGetBanTierSettingsFallsBackToDefaults(t *testing.T) {
	store := &fakeStore{settingsErr: pgrepo.ErrBanSettingsNotFound}
	provider := NewProvider(store, nil, time.Minute, defaultTiers(), nil)

	settings, err := provider.GetBanTierSettings(context.Background())
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.MaxBanDays != 180 || settings.ResetWindowDays != 90 {
		t.Fatalf("expected defaults, got %+v", settings)
	}
	if len(settings.TierDays) != 4 || settings.TierDays[0] != 7 {
		t.Fatalf("expected default ladder, got %v", settings.TierDays)
	}
}
