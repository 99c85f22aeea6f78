package model

import "time"

// Post is created hidden (IsFlagged=true) and only becomes visible
// once the moderation gate approves it.
type Post struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Text            string     `json:"text"`
	ImageKey        *string    `json:"image_key"`
	IsFlagged       bool       `json:"is_flagged"`
	ModerationScore []byte     `json:"moderation_score"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Comment struct {
	ID              int64     `json:"id"`
	PostID          int64     `json:"post_id"`
	UserID          int64     `json:"user_id"`
	Text            string    `json:"text"`
	IsFlagged       bool      `json:"is_flagged"`
	ModerationScore []byte    `json:"moderation_score"`
	CreatedAt       time.Time `json:"created_at"`
}
