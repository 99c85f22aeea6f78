package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

func TestBanCacheRoundTrip(t *testing.T) {
	repo, mr, cleanup := newBanCacheRepo(t)
	defer cleanup()

	ctx := context.Background()
	userID := int64(42)

	if _, found, err := repo.Get(ctx, userID); err != nil || found {
		t.Fatalf("expected cache miss, found=%v err=%v", found, err)
	}

	if err := repo.Set(ctx, userID, true, time.Minute); err != nil {
		t.Fatalf("set ban cache: %v", err)
	}

	banned, found, err := repo.Get(ctx, userID)
	if err != nil {
		t.Fatalf("get ban cache: %v", err)
	}
	if !found || !banned {
		t.Fatalf("expected cached ban, found=%v banned=%v", found, banned)
	}

	mr.FastForward(2 * time.Minute)

	if _, found, err := repo.Get(ctx, userID); err != nil || found {
		t.Fatalf("expected expired entry, found=%v err=%v", found, err)
	}
}

func TestBanCacheInvalidate(t *testing.T) {
	repo, _, cleanup := newBanCacheRepo(t)
	defer cleanup()

	ctx := context.Background()
	userID := int64(7)

	if err := repo.Set(ctx, userID, false, time.Minute); err != nil {
		t.Fatalf("set ban cache: %v", err)
	}
	if err := repo.Invalidate(ctx, userID); err != nil {
		t.Fatalf("invalidate ban cache: %v", err)
	}
	if _, found, err := repo.Get(ctx, userID); err != nil || found {
		t.Fatalf("expected miss after invalidate, found=%v err=%v", found, err)
	}
}

func TestModConfigCacheRoundTrip(t *testing.T) {
	_, mr, cleanup := newBanCacheRepo(t)
	defer cleanup()

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	repo := NewModConfigCacheRepo(client)

	ctx := context.Background()

	if _, found, err := repo.GetConfigs(ctx); err != nil || found {
		t.Fatalf("expected config cache miss, found=%v err=%v", found, err)
	}

	configs := []model.ModerationConfig{
		{Category: "hate", Threshold: 0.8, Action: enums.ModerationActionRemoved, AppliesTo: model.ScopeBoth},
		{Category: "spam", Threshold: 0.9, Action: enums.ModerationActionManualReview, AppliesTo: model.ScopePost},
	}
	if err := repo.SetConfigs(ctx, configs, time.Minute); err != nil {
		t.Fatalf("set config cache: %v", err)
	}

	cached, found, err := repo.GetConfigs(ctx)
	if err != nil {
		t.Fatalf("get config cache: %v", err)
	}
	if !found || len(cached) != 2 {
		t.Fatalf("unexpected cached configs: found=%v len=%d", found, len(cached))
	}
	if cached[0].Category != "hate" || cached[0].Action != enums.ModerationActionRemoved {
		t.Fatalf("unexpected cached config: %+v", cached[0])
	}

	snapshot := BanSettingsSnapshot{TierDays: []int{7, 14, 28, 56}, MaxBanDays: 180, ResetWindowDays: 90}
	if err := repo.SetBanSettings(ctx, snapshot, time.Minute); err != nil {
		t.Fatalf("set ban settings cache: %v", err)
	}
	got, found, err := repo.GetBanSettings(ctx)
	if err != nil || !found {
		t.Fatalf("get ban settings cache: found=%v err=%v", found, err)
	}
	if got.MaxBanDays != 180 || len(got.TierDays) != 4 {
		t.Fatalf("unexpected ban settings snapshot: %+v", got)
	}

	if err := repo.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate config cache: %v", err)
	}
	if _, found, err := repo.GetConfigs(ctx); err != nil || found {
		t.Fatalf("expected miss after invalidate, found=%v err=%v", found, err)
	}
}

func newBanCacheRepo(t *testing.T) (*BanCacheRepo, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	repo := NewBanCacheRepo(client)

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return repo, mr, cleanup
}
