package bans

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
)

type Store interface {
	GetActiveBan(ctx context.Context, userID int64) (*pgrepo.ActiveBanRecord, error)
}

type Cache interface {
	Get(ctx context.Context, userID int64) (banned bool, found bool, err error)
	Set(ctx context.Context, userID int64, banned bool, ttl time.Duration) error
	Invalidate(ctx context.Context, userID int64) error
}

// Service answers "is this user currently banned": an active ban row
// with a null or future expiry. Postgres is authoritative; redis only
// shortcuts the hot posting path.
type Service struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, cache Cache, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:    store,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) IsBanned(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}
	if s.store == nil {
		return false, fmt.Errorf("ban store is nil")
	}

	if s.cache != nil {
		banned, found, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Debug("ban cache read failed", zap.Error(err), zap.Int64("user_id", userID))
		} else if found {
			return banned, nil
		}
	}

	rec, err := s.store.GetActiveBan(ctx, userID)
	if err != nil {
		return false, err
	}
	banned := rec != nil

	if s.cache != nil {
		ttl := s.cacheTTL
		// a positive entry must not outlive the ban itself
		if banned && rec.ExpiresAt != nil {
			if until := rec.ExpiresAt.Sub(s.now()); until > 0 && until < ttl {
				ttl = until
			}
		}
		if err := s.cache.Set(ctx, userID, banned, ttl); err != nil {
			s.logger.Debug("ban cache write failed", zap.Error(err), zap.Int64("user_id", userID))
		}
	}

	return banned, nil
}

// Current returns the active ban row, nil if the user is in good
// standing. Bypasses the cache; used where ban details matter.
func (s *Service) Current(ctx context.Context, userID int64) (*pgrepo.ActiveBanRecord, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	if s.store == nil {
		return nil, fmt.Errorf("ban store is nil")
	}
	return s.store.GetActiveBan(ctx, userID)
}

// Invalidate drops the cached answer, e.g. right after a new ban is
// written.
func (s *Service) Invalidate(ctx context.Context, userID int64) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, userID)
}
