package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
)

// ViolationServiceError is the pseudo-category recorded when the
// classifier itself is unavailable and the engine falls back to
// holding content for review.
const ViolationServiceError = "moderation_service_error"

type ConfigProvider interface {
	GetModerationConfig(ctx context.Context) ([]model.ModerationConfig, error)
}

type LogStore interface {
	Insert(ctx context.Context, entry model.ModerationLog) error
}

// Content identifies one item under evaluation.
type Content struct {
	Type enums.ContentType
	ID   int64
	Text string
}

// ClassifierResult is the engine's view of the classifier verdict.
// CategoryScores may be a superset of the configured categories;
// unconfigured categories are ignored.
type ClassifierResult struct {
	Flagged        bool
	CategoryScores map[string]float64
	Raw            []byte
}

type Decision struct {
	Flagged    bool
	Action     enums.ModerationAction
	Violations []string
}

type Engine struct {
	configs ConfigProvider
	logs    LogStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewEngine(configs ConfigProvider, logs LogStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		configs: configs,
		logs:    logs,
		logger:  logger,
		now:     time.Now,
	}
}

// Evaluate checks every scored category against the operator
// thresholds and returns the merged decision. The action only ever
// escalates: the most severe auto action among violated categories
// wins, and a later less-severe category can never downgrade it.
// Exactly one audit row is written per call, whatever the outcome.
func (e *Engine) Evaluate(ctx context.Context, content Content, result ClassifierResult) (Decision, error) {
	if !content.Type.Valid() || content.ID <= 0 {
		return Decision{}, fmt.Errorf("invalid content reference")
	}
	if strings.TrimSpace(content.Text) == "" {
		return Decision{}, fmt.Errorf("content text is empty")
	}

	rules, err := e.configs.GetModerationConfig(ctx)
	if err != nil {
		// Unreadable config is treated exactly like classifier
		// unavailability: hold for review, never publish unmoderated.
		e.logger.Warn("moderation config unavailable, failing safe",
			zap.Error(err),
			zap.String("content_type", string(content.Type)),
			zap.Int64("content_id", content.ID),
		)
		return e.EvaluateFailure(ctx, content, err), nil
	}

	decision := Decision{
		Flagged: result.Flagged,
		Action:  enums.ModerationActionApproved,
	}

	index := indexRules(rules)

	categories := make([]string, 0, len(result.CategoryScores))
	for category := range result.CategoryScores {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		rule, ok := lookupRule(index, category, content.Type)
		if !ok {
			continue
		}
		score := result.CategoryScores[category]
		if score < rule.Threshold {
			continue
		}

		decision.Flagged = true
		decision.Violations = append(decision.Violations, category)
		if rule.Action.MoreSevereThan(decision.Action) {
			decision.Action = rule.Action
		}
	}

	e.writeLog(ctx, content, result.Raw, decision)

	return decision, nil
}

// EvaluateFailure is the classifier-down path: the content is flagged
// and held for manual review so an outage is never a way to publish
// unmoderated content. The audit row is still written.
func (e *Engine) EvaluateFailure(ctx context.Context, content Content, cause error) Decision {
	decision := Decision{
		Flagged:    true,
		Action:     enums.ModerationActionManualReview,
		Violations: []string{ViolationServiceError},
	}

	e.writeLog(ctx, content, FailureEvidence(cause), decision)

	return decision
}

// FailureEvidence renders the classifier failure as the raw-response
// snapshot stored on the audit row and the content itself.
func FailureEvidence(cause error) []byte {
	msg := "classifier unavailable"
	if cause != nil {
		msg = cause.Error()
	}
	raw, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return []byte(`{"error":"classifier unavailable"}`)
	}
	return raw
}

func (e *Engine) writeLog(ctx context.Context, content Content, raw []byte, decision Decision) {
	if e.logs == nil {
		return
	}

	entry := model.ModerationLog{
		ContentType:        content.Type,
		ContentID:          content.ID,
		ContentText:        content.Text,
		ClassifierResponse: raw,
		Flagged:            decision.Flagged,
		ActionTaken:        decision.Action,
		ProcessedAt:        e.now().UTC(),
	}

	// The decision stands even if the audit write fails.
	if err := e.logs.Insert(ctx, entry); err != nil {
		e.logger.Warn("failed to write moderation log",
			zap.Error(err),
			zap.String("content_type", string(content.Type)),
			zap.Int64("content_id", content.ID),
		)
	}
}

type ruleKey struct {
	category string
	scope    string
}

func indexRules(rules []model.ModerationConfig) map[ruleKey]model.ModerationConfig {
	index := make(map[ruleKey]model.ModerationConfig, len(rules))
	for _, rule := range rules {
		category := strings.ToLower(strings.TrimSpace(rule.Category))
		scope := strings.ToLower(strings.TrimSpace(rule.AppliesTo))
		if category == "" || scope == "" {
			continue
		}
		index[ruleKey{category: category, scope: scope}] = rule
	}
	return index
}

// lookupRule prefers the rule scoped to the content's own type and
// falls back to a "both"-scoped rule.
func lookupRule(index map[ruleKey]model.ModerationConfig, category string, contentType enums.ContentType) (model.ModerationConfig, bool) {
	category = strings.ToLower(category)
	if rule, ok := index[ruleKey{category: category, scope: string(contentType)}]; ok {
		return rule, true
	}
	if rule, ok := index[ruleKey{category: category, scope: model.ScopeBoth}]; ok {
		return rule, true
	}
	return model.ModerationConfig{}, false
}
