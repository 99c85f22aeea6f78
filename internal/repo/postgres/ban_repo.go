package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

type BanRepo struct {
	pool *pgxpool.Pool
}

// ActiveBanRecord summarizes the user's standing: ExpiresAt nil means
// a permanent ban.
type ActiveBanRecord struct {
	BanType   enums.BanType
	ExpiresAt *time.Time
}

func NewBanRepo(pool *pgxpool.Pool) *BanRepo {
	return &BanRepo{pool: pool}
}

// CountHistorySince returns the number of violation history rows at or
// after the cutoff. This is the escalation ordinal's input; it counts
// history rows, not ban rows, so reversed or expired bans still count.
func (r *BanRepo) CountHistorySince(ctx context.Context, userID int64, cutoff time.Time) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return 0, fmt.Errorf("invalid user id")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM user_ban_history
WHERE user_id = $1
  AND created_at >= $2
`, userID, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ban history: %w", err)
	}

	return count, nil
}

func (r *BanRepo) InsertBan(ctx context.Context, ban model.UserBan) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if ban.UserID <= 0 || ban.ViolationCount <= 0 {
		return fmt.Errorf("invalid ban payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_bans (
	user_id,
	ban_type,
	violation_count,
	ban_duration_days,
	expires_at,
	reason,
	is_active,
	created_at,
	created_by
) VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), $7)
`, ban.UserID, string(ban.BanType), ban.ViolationCount, ban.BanDurationDays, ban.ExpiresAt, ban.Reason, ban.CreatedBy); err != nil {
		return fmt.Errorf("insert user ban: %w", err)
	}

	return nil
}

func (r *BanRepo) InsertHistory(ctx context.Context, entry model.UserBanHistory) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if entry.UserID <= 0 {
		return fmt.Errorf("invalid ban history payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO user_ban_history (
	user_id,
	violation_type,
	ban_duration_days,
	moderation_score,
	created_at
) VALUES ($1, $2, $3, $4, NOW())
`, entry.UserID, entry.ViolationType, entry.BanDurationDays, entry.ModerationScore); err != nil {
		return fmt.Errorf("insert user ban history: %w", err)
	}

	return nil
}

// GetActiveBan returns the user's current ban, if any: an active row
// whose expires_at is null (permanent) or in the future.
func (r *BanRepo) GetActiveBan(ctx context.Context, userID int64) (*ActiveBanRecord, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	var rec ActiveBanRecord
	var banType string
	err := r.pool.QueryRow(ctx, `
SELECT ban_type, expires_at
FROM user_bans
WHERE user_id = $1
  AND is_active
  AND (expires_at IS NULL OR expires_at > NOW())
ORDER BY created_at DESC, id DESC
LIMIT 1
`, userID).Scan(&banType, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active ban: %w", err)
	}
	rec.BanType = enums.BanType(banType)

	return &rec, nil
}

// DeactivateExpired flips is_active off for every ban whose expiry has
// passed. Permanent bans (null expires_at) are never touched.
func (r *BanRepo) DeactivateExpired(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE user_bans
SET is_active = FALSE
WHERE is_active
  AND expires_at IS NOT NULL
  AND expires_at <= NOW()
`)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired bans: %w", err)
	}

	return tag.RowsAffected(), nil
}
