package banescalation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	"github.com/hungwahenry/cheevo-sub000/internal/services/modconfig"
)

var ErrValidation = errors.New("validation error")

type Store interface {
	CountHistorySince(ctx context.Context, userID int64, cutoff time.Time) (int, error)
	InsertBan(ctx context.Context, ban model.UserBan) error
	InsertHistory(ctx context.Context, entry model.UserBanHistory) error
}

type SettingsProvider interface {
	GetBanTierSettings(ctx context.Context) (modconfig.TierSettings, error)
}

type BanCache interface {
	Invalidate(ctx context.Context, userID int64) error
}

type Escalation struct {
	BanType        enums.BanType
	DurationDays   int
	ViolationCount int
	ExpiresAt      *time.Time
}

// Service turns repeated violations into escalating ban durations.
// The escalation ordinal is the count of history rows inside the
// rolling reset window, so a user who stays clean for the window
// starts back at tier one. Two concurrent violations for one user may
// read the same stale count and land on the same tier; that race is
// accepted in favor of availability.
type Service struct {
	store    Store
	settings SettingsProvider
	fallback modconfig.TierSettings
	banCache BanCache
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(store Store, settings SettingsProvider, fallback modconfig.TierSettings, logger *zap.Logger) *Service {
	if len(fallback.TierDays) == 0 {
		fallback.TierDays = []int{7, 14, 28, 56}
	}
	if fallback.MaxBanDays <= 0 {
		fallback.MaxBanDays = 180
	}
	if fallback.ResetWindowDays <= 0 {
		fallback.ResetWindowDays = 90
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:    store,
		settings: settings,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// AttachBanCache registers the cache to invalidate after a new ban so
// the active-ban check sees it immediately.
func (s *Service) AttachBanCache(cache BanCache) {
	s.banCache = cache
}

// RecordViolation computes the user's next ban tier and appends the
// ban plus its history row. Callers treat this as best-effort: an
// error here must never unwind the content decision that triggered it.
func (s *Service) RecordViolation(ctx context.Context, userID int64, violations []string, rawScore []byte) (Escalation, error) {
	if userID <= 0 || len(violations) == 0 {
		return Escalation{}, ErrValidation
	}
	if s.store == nil {
		return Escalation{}, fmt.Errorf("ban store is nil")
	}

	settings := s.tierSettings(ctx)
	now := s.now().UTC()

	cutoff := now.Add(-time.Duration(settings.ResetWindowDays) * 24 * time.Hour)
	priorCount, err := s.store.CountHistorySince(ctx, userID, cutoff)
	if err != nil {
		return Escalation{}, fmt.Errorf("count violation history: %w", err)
	}

	ordinal := priorCount + 1
	duration := resolveDuration(ordinal, settings)

	escalation := Escalation{
		DurationDays:   duration,
		ViolationCount: ordinal,
	}
	if duration >= settings.MaxBanDays {
		escalation.BanType = enums.BanTypePermanent
	} else {
		escalation.BanType = enums.BanTypeShadow
		expiresAt := now.Add(time.Duration(duration) * 24 * time.Hour)
		escalation.ExpiresAt = &expiresAt
	}

	ban := model.UserBan{
		UserID:         userID,
		BanType:        escalation.BanType,
		ViolationCount: ordinal,
		Reason:         strings.Join(violations, ", "),
		IsActive:       true,
		ExpiresAt:      escalation.ExpiresAt,
	}
	if escalation.BanType == enums.BanTypeShadow {
		d := duration
		ban.BanDurationDays = &d
	}

	if err := s.store.InsertBan(ctx, ban); err != nil {
		return Escalation{}, fmt.Errorf("insert ban: %w", err)
	}

	// This history row is what future escalations count against,
	// independent of whether the ban itself later expires or is
	// reversed.
	history := model.UserBanHistory{
		UserID:          userID,
		ViolationType:   strings.Join(violations, ","),
		BanDurationDays: duration,
		ModerationScore: rawScore,
	}
	if err := s.store.InsertHistory(ctx, history); err != nil {
		return Escalation{}, fmt.Errorf("insert ban history: %w", err)
	}

	if s.banCache != nil {
		if err := s.banCache.Invalidate(ctx, userID); err != nil {
			s.logger.Debug("ban cache invalidation failed", zap.Error(err), zap.Int64("user_id", userID))
		}
	}

	s.logger.Info("ban escalation recorded",
		zap.Int64("user_id", userID),
		zap.String("ban_type", string(escalation.BanType)),
		zap.Int("violation_count", ordinal),
		zap.Int("duration_days", duration),
	)

	return escalation, nil
}

func (s *Service) tierSettings(ctx context.Context) modconfig.TierSettings {
	if s.settings == nil {
		return s.fallback
	}

	settings, err := s.settings.GetBanTierSettings(ctx)
	if err != nil {
		s.logger.Warn("ban tier settings unavailable, using defaults", zap.Error(err))
		return s.fallback
	}
	if len(settings.TierDays) == 0 || settings.MaxBanDays <= 0 || settings.ResetWindowDays <= 0 {
		return s.fallback
	}

	return settings
}

// resolveDuration maps the escalation ordinal onto the tier ladder;
// past the last explicit tier the duration pins to the ceiling.
func resolveDuration(ordinal int, settings modconfig.TierSettings) int {
	if ordinal <= len(settings.TierDays) {
		duration := settings.TierDays[ordinal-1]
		if duration > settings.MaxBanDays {
			return settings.MaxBanDays
		}
		return duration
	}
	return settings.MaxBanDays
}
