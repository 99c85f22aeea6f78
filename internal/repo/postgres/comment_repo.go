package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func (r *CommentRepo) CreateHidden(ctx context.Context, postID, userID int64, text string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 || userID <= 0 || strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("invalid comment payload")
	}

	var id int64
	if err := r.pool.QueryRow(ctx, `
INSERT INTO comments (
	post_id,
	user_id,
	text,
	is_flagged,
	created_at
) VALUES ($1, $2, $3, TRUE, NOW())
RETURNING id
`, postID, userID, text).Scan(&id); err != nil {
		return 0, fmt.Errorf("create comment: %w", err)
	}

	return id, nil
}

func (r *CommentRepo) Publish(ctx context.Context, commentID int64, moderationScore []byte) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if commentID <= 0 {
		return fmt.Errorf("invalid comment id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE comments
SET is_flagged = FALSE, moderation_score = $2
WHERE id = $1
`, commentID, moderationScore); err != nil {
		return fmt.Errorf("publish comment: %w", err)
	}

	return nil
}

func (r *CommentRepo) HoldForReview(ctx context.Context, commentID int64, moderationScore []byte) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if commentID <= 0 {
		return fmt.Errorf("invalid comment id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE comments
SET is_flagged = TRUE, moderation_score = $2
WHERE id = $1
`, commentID, moderationScore); err != nil {
		return fmt.Errorf("hold comment for review: %w", err)
	}

	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, commentID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if commentID <= 0 {
		return fmt.Errorf("invalid comment id")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM comments
WHERE id = $1
`, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, commentID int64) (model.Comment, error) {
	if r.pool == nil {
		return model.Comment{}, fmt.Errorf("postgres pool is nil")
	}
	if commentID <= 0 {
		return model.Comment{}, fmt.Errorf("invalid comment id")
	}

	var comment model.Comment
	err := r.pool.QueryRow(ctx, `
SELECT id, post_id, user_id, text, is_flagged, moderation_score, created_at
FROM comments
WHERE id = $1
`, commentID).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.UserID,
		&comment.Text,
		&comment.IsFlagged,
		&comment.ModerationScore,
		&comment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Comment{}, ErrCommentNotFound
		}
		return model.Comment{}, fmt.Errorf("get comment: %w", err)
	}

	return comment, nil
}

func (r *CommentRepo) ListHeld(ctx context.Context, limit int) ([]model.Comment, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, post_id, user_id, text, is_flagged, moderation_score, created_at
FROM comments
WHERE is_flagged
ORDER BY created_at ASC, id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list held comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var comment model.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.UserID,
			&comment.Text,
			&comment.IsFlagged,
			&comment.ModerationScore,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan held comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate held comments: %w", err)
	}

	return comments, nil
}
