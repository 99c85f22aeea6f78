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

var ErrPostNotFound = errors.New("post not found")

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

// CreateHidden inserts the provisional row with is_flagged=true so the
// post is invisible until the moderation gate decides.
func (r *PostRepo) CreateHidden(ctx context.Context, userID int64, text string, imageKey *string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("invalid post payload")
	}

	var id int64
	if err := r.pool.QueryRow(ctx, `
INSERT INTO posts (
	user_id,
	text,
	image_key,
	is_flagged,
	created_at,
	updated_at
) VALUES ($1, $2, $3, TRUE, NOW(), NOW())
RETURNING id
`, userID, text, imageKey).Scan(&id); err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}

	return id, nil
}

func (r *PostRepo) Publish(ctx context.Context, postID int64, moderationScore []byte) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return fmt.Errorf("invalid post id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE posts
SET is_flagged = FALSE, moderation_score = $2, updated_at = NOW()
WHERE id = $1
`, postID, moderationScore); err != nil {
		return fmt.Errorf("publish post: %w", err)
	}

	return nil
}

func (r *PostRepo) HoldForReview(ctx context.Context, postID int64, moderationScore []byte) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return fmt.Errorf("invalid post id")
	}

	if _, err := r.pool.Exec(ctx, `
UPDATE posts
SET is_flagged = TRUE, moderation_score = $2, updated_at = NOW()
WHERE id = $1
`, postID, moderationScore); err != nil {
		return fmt.Errorf("hold post for review: %w", err)
	}

	return nil
}

func (r *PostRepo) Delete(ctx context.Context, postID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return fmt.Errorf("invalid post id")
	}

	if _, err := r.pool.Exec(ctx, `
DELETE FROM posts
WHERE id = $1
`, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return nil
}

func (r *PostRepo) DeleteOwned(ctx context.Context, postID, userID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 || userID <= 0 {
		return fmt.Errorf("invalid post delete payload")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM posts
WHERE id = $1 AND user_id = $2
`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete owned post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPostNotFound
	}

	return nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID int64) (model.Post, error) {
	if r.pool == nil {
		return model.Post{}, fmt.Errorf("postgres pool is nil")
	}
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}

	var post model.Post
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, text, image_key, is_flagged, moderation_score, created_at, updated_at
FROM posts
WHERE id = $1
`, postID).Scan(
		&post.ID,
		&post.UserID,
		&post.Text,
		&post.ImageKey,
		&post.IsFlagged,
		&post.ModerationScore,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("get post: %w", err)
	}

	return post, nil
}

// ListHeld returns flagged posts oldest-first for the review queue.
func (r *PostRepo) ListHeld(ctx context.Context, limit int) ([]model.Post, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, text, image_key, is_flagged, moderation_score, created_at, updated_at
FROM posts
WHERE is_flagged
ORDER BY created_at ASC, id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list held posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID,
			&post.UserID,
			&post.Text,
			&post.ImageKey,
			&post.IsFlagged,
			&post.ModerationScore,
			&post.CreatedAt,
			&post.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan held post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate held posts: %w", err)
	}

	return posts, nil
}
