package dto

import (
	"encoding/json"
	"time"
)

type UpsertRuleRequest struct {
	Category  string  `json:"category"`
	Threshold float64 `json:"threshold"`
	Action    string  `json:"action"`
	AppliesTo string  `json:"applies_to"`
}

type RuleItem struct {
	ID        int64   `json:"id"`
	Category  string  `json:"category"`
	Threshold float64 `json:"threshold"`
	Action    string  `json:"action"`
	AppliesTo string  `json:"applies_to"`
}

type RuleListResponse struct {
	Items []RuleItem `json:"items"`
}

type ModerationLogItem struct {
	ID                 int64           `json:"id"`
	ContentType        string          `json:"content_type"`
	ContentID          int64           `json:"content_id"`
	ContentText        string          `json:"content_text"`
	ClassifierResponse json.RawMessage `json:"classifier_response,omitempty"`
	Flagged            bool            `json:"flagged"`
	ActionTaken        string          `json:"action_taken"`
	ProcessedAt        time.Time       `json:"processed_at"`
}

type ModerationLogListResponse struct {
	Items []ModerationLogItem `json:"items"`
}
