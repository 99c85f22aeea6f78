package enums

import "strings"

type ModerationAction string

const (
	ModerationActionApproved     ModerationAction = "approved"
	ModerationActionManualReview ModerationAction = "manual_review"
	ModerationActionRemoved      ModerationAction = "removed"
)

// Severity defines the total order used when merging per-category
// actions: removed > manual_review > approved. Unknown values rank
// below approved so a bad config row can never escalate a decision.
func (a ModerationAction) Severity() int {
	switch a {
	case ModerationActionRemoved:
		return 3
	case ModerationActionManualReview:
		return 2
	case ModerationActionApproved:
		return 1
	default:
		return 0
	}
}

func (a ModerationAction) MoreSevereThan(other ModerationAction) bool {
	return a.Severity() > other.Severity()
}

func ParseModerationAction(raw string) (ModerationAction, bool) {
	switch ModerationAction(strings.ToLower(strings.TrimSpace(raw))) {
	case ModerationActionApproved:
		return ModerationActionApproved, true
	case ModerationActionManualReview:
		return ModerationActionManualReview, true
	case ModerationActionRemoved:
		return ModerationActionRemoved, true
	default:
		return "", false
	}
}
