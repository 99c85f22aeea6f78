package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

var ErrBanSettingsNotFound = errors.New("ban settings row not found")

type ModerationConfigRepo struct {
	pool *pgxpool.Pool
}

// BanSettingsRecord mirrors the single operator-maintained settings
// row for the escalation ladder.
type BanSettingsRecord struct {
	Tier1Days       int
	Tier2Days       int
	Tier3Days       int
	Tier4Days       int
	MaxBanDays      int
	ResetWindowDays int
}

func NewModerationConfigRepo(pool *pgxpool.Pool) *ModerationConfigRepo {
	return &ModerationConfigRepo{pool: pool}
}

// ListActive returns every active threshold rule. The unique index on
// (category, applies_to) WHERE is_active guarantees at most one active
// row per pair.
func (r *ModerationConfigRepo) ListActive(ctx context.Context) ([]model.ModerationConfig, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, category, threshold, auto_action, applies_to, created_at, updated_at
FROM moderation_configs
WHERE is_active
ORDER BY category ASC, applies_to ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list moderation configs: %w", err)
	}
	defer rows.Close()

	var configs []model.ModerationConfig
	for rows.Next() {
		var cfg model.ModerationConfig
		var action string
		if err := rows.Scan(&cfg.ID, &cfg.Category, &cfg.Threshold, &action, &cfg.AppliesTo, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan moderation config: %w", err)
		}
		parsed, ok := enums.ParseModerationAction(action)
		if !ok {
			continue
		}
		cfg.Action = parsed
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation configs: %w", err)
	}

	return configs, nil
}

func (r *ModerationConfigRepo) UpsertRule(ctx context.Context, category string, threshold float64, action enums.ModerationAction, appliesTo string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return fmt.Errorf("moderation config category is required")
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("moderation config threshold out of range: %f", threshold)
	}
	appliesTo = strings.ToLower(strings.TrimSpace(appliesTo))
	switch appliesTo {
	case model.ScopePost, model.ScopeComment, model.ScopeBoth:
	default:
		return fmt.Errorf("invalid moderation config scope: %q", appliesTo)
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO moderation_configs (
	category,
	threshold,
	auto_action,
	applies_to,
	is_active,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
ON CONFLICT (category, applies_to) WHERE is_active DO UPDATE SET
	threshold = EXCLUDED.threshold,
	auto_action = EXCLUDED.auto_action,
	updated_at = NOW()
`, category, threshold, string(action), appliesTo); err != nil {
		return fmt.Errorf("upsert moderation config: %w", err)
	}

	return nil
}

func (r *ModerationConfigRepo) GetBanSettings(ctx context.Context) (BanSettingsRecord, error) {
	if r.pool == nil {
		return BanSettingsRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec BanSettingsRecord
	err := r.pool.QueryRow(ctx, `
SELECT tier1_days, tier2_days, tier3_days, tier4_days, max_ban_days, reset_window_days
FROM moderation_settings
ORDER BY id DESC
LIMIT 1
`).Scan(
		&rec.Tier1Days,
		&rec.Tier2Days,
		&rec.Tier3Days,
		&rec.Tier4Days,
		&rec.MaxBanDays,
		&rec.ResetWindowDays,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BanSettingsRecord{}, ErrBanSettingsNotFound
		}
		return BanSettingsRecord{}, fmt.Errorf("get ban settings: %w", err)
	}

	return rec, nil
}
