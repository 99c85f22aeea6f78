package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

// ModerationLogRepo appends to the audit trail. Rows are write-once:
// no update or delete statements exist on purpose.
type ModerationLogRepo struct {
	pool *pgxpool.Pool
}

func NewModerationLogRepo(pool *pgxpool.Pool) *ModerationLogRepo {
	return &ModerationLogRepo{pool: pool}
}

func (r *ModerationLogRepo) Insert(ctx context.Context, entry model.ModerationLog) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if !entry.ContentType.Valid() || entry.ContentID <= 0 {
		return fmt.Errorf("invalid moderation log payload")
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO moderation_logs (
	content_type,
	content_id,
	content_text,
	classifier_response,
	flagged,
	action_taken,
	processed_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW())
`, string(entry.ContentType), entry.ContentID, entry.ContentText, entry.ClassifierResponse, entry.Flagged, string(entry.ActionTaken)); err != nil {
		return fmt.Errorf("insert moderation log: %w", err)
	}

	return nil
}

func (r *ModerationLogRepo) ListRecent(ctx context.Context, limit int) ([]model.ModerationLog, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, content_type, content_id, content_text, classifier_response, flagged, action_taken, processed_at
FROM moderation_logs
ORDER BY processed_at DESC, id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list moderation logs: %w", err)
	}
	defer rows.Close()

	var entries []model.ModerationLog
	for rows.Next() {
		var entry model.ModerationLog
		var contentType, action string
		if err := rows.Scan(
			&entry.ID,
			&contentType,
			&entry.ContentID,
			&entry.ContentText,
			&entry.ClassifierResponse,
			&entry.Flagged,
			&action,
			&entry.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("scan moderation log: %w", err)
		}
		entry.ContentType = enums.ContentType(contentType)
		entry.ActionTaken = enums.ModerationAction(action)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation logs: %w", err)
	}

	return entries, nil
}
