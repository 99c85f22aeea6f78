package model

import (
	"time"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
)

type UserBan struct {
	ID              int64         `json:"id"`
	UserID          int64         `json:"user_id"`
	BanType         enums.BanType `json:"ban_type"`
	ViolationCount  int           `json:"violation_count"`
	BanDurationDays *int          `json:"ban_duration_days"`
	ExpiresAt       *time.Time    `json:"expires_at"`
	Reason          string        `json:"reason"`
	IsActive        bool          `json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	CreatedBy       *int64        `json:"created_by"`
}

// UserBanHistory rows are what escalation counts against. They are
// append-only and stay valid even after the ban itself expires or is
// reversed.
type UserBanHistory struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ViolationType   string    `json:"violation_type"`
	BanDurationDays int       `json:"ban_duration_days"`
	ModerationScore []byte    `json:"moderation_score"`
	CreatedAt       time.Time `json:"created_at"`
}
