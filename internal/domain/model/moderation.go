package model

import (
	"time"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
)

// ModerationConfig is one operator-maintained threshold rule. At most
// one active row exists per (category, applies_to) pair.
type ModerationConfig struct {
	ID        int64                  `json:"id"`
	Category  string                 `json:"category"`
	Threshold float64                `json:"threshold"`
	Action    enums.ModerationAction `json:"action"`
	AppliesTo string                 `json:"applies_to"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

const (
	ScopePost    = "post"
	ScopeComment = "comment"
	ScopeBoth    = "both"
)

// ModerationLog is the append-only audit record written once per
// evaluation. Rows are never updated or deleted.
type ModerationLog struct {
	ID                 int64                  `json:"id"`
	ContentType        enums.ContentType      `json:"content_type"`
	ContentID          int64                  `json:"content_id"`
	ContentText        string                 `json:"content_text"`
	ClassifierResponse []byte                 `json:"classifier_response"`
	Flagged            bool                   `json:"flagged"`
	ActionTaken        enums.ModerationAction `json:"action_taken"`
	ProcessedAt        time.Time              `json:"processed_at"`
}
