package dto

import (
	"encoding/json"
	"time"
)

type ReviewPostItem struct {
	PostID         int64           `json:"post_id"`
	AuthorID       int64           `json:"author_id"`
	AuthorUsername string          `json:"author_username,omitempty"`
	Text           string          `json:"text"`
	ImageURL       *string         `json:"image_url,omitempty"`
	Scores         json.RawMessage `json:"scores,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ReviewCommentItem struct {
	CommentID      int64           `json:"comment_id"`
	PostID         int64           `json:"post_id"`
	AuthorID       int64           `json:"author_id"`
	AuthorUsername string          `json:"author_username,omitempty"`
	Text           string          `json:"text"`
	Scores         json.RawMessage `json:"scores,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ReviewPostListResponse struct {
	Items []ReviewPostItem `json:"items"`
}

type ReviewCommentListResponse struct {
	Items []ReviewCommentItem `json:"items"`
}

type ResolveResponse struct {
	OK bool `json:"ok"`
}
