package contentgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/infra/classifier"
	"github.com/hungwahenry/cheevo-sub000/internal/services/banescalation"
	"github.com/hungwahenry/cheevo-sub000/internal/services/moderation"
)

var ErrValidation = errors.New("validation error")

type Classifier interface {
	Classify(ctx context.Context, text string) (classifier.Result, error)
}

type Engine interface {
	Evaluate(ctx context.Context, content moderation.Content, result moderation.ClassifierResult) (moderation.Decision, error)
	EvaluateFailure(ctx context.Context, content moderation.Content, cause error) moderation.Decision
}

// ContentStore applies the decided visibility transition to one
// content kind.
type ContentStore interface {
	Publish(ctx context.Context, id int64, moderationScore []byte) error
	HoldForReview(ctx context.Context, id int64, moderationScore []byte) error
	Delete(ctx context.Context, id int64) error
}

type Escalator interface {
	RecordViolation(ctx context.Context, userID int64, violations []string, rawScore []byte) (banescalation.Escalation, error)
}

type SubmitInput struct {
	Type   enums.ContentType
	ID     int64
	Text   string
	UserID int64
}

type SubmitResult struct {
	Status    enums.SubmitStatus
	ContentID int64
}

type Config struct {
	ClassifierTimeout time.Duration
}

// Service gates freshly created content. The caller must have
// persisted the row hidden (is_flagged=true) before Submit so nothing
// is visible between creation and decision.
type Service struct {
	classifier Classifier
	engine     Engine
	posts      ContentStore
	comments   ContentStore
	escalator  Escalator
	cfg        Config
	logger     *zap.Logger
}

func NewService(classifierClient Classifier, engine Engine, posts, comments ContentStore, cfg Config, logger *zap.Logger) *Service {
	if cfg.ClassifierTimeout <= 0 {
		cfg.ClassifierTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		classifier: classifierClient,
		engine:     engine,
		posts:      posts,
		comments:   comments,
		cfg:        cfg,
		logger:     logger,
	}
}

func (s *Service) AttachEscalator(escalator Escalator) {
	s.escalator = escalator
}

// Submit classifies the content, applies the resulting visibility
// transition, and records any violations against the author. The work
// runs detached from the caller's context: a client that disconnects
// mid-evaluation still gets a fully applied decision.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	if !input.Type.Valid() || input.ID <= 0 || input.UserID <= 0 || strings.TrimSpace(input.Text) == "" {
		return SubmitResult{}, ErrValidation
	}
	if s.classifier == nil || s.engine == nil {
		return SubmitResult{}, fmt.Errorf("content gate dependencies are not configured")
	}

	store, err := s.storeFor(input.Type)
	if err != nil {
		return SubmitResult{}, err
	}

	ctx = context.WithoutCancel(ctx)

	content := moderation.Content{Type: input.Type, ID: input.ID, Text: input.Text}
	decision, rawScore := s.evaluate(ctx, content)

	switch decision.Action {
	case enums.ModerationActionApproved:
		if err := store.Publish(ctx, input.ID, rawScore); err != nil {
			return SubmitResult{}, fmt.Errorf("publish content: %w", err)
		}
	case enums.ModerationActionManualReview:
		if err := store.HoldForReview(ctx, input.ID, rawScore); err != nil {
			return SubmitResult{}, fmt.Errorf("hold content for review: %w", err)
		}
	case enums.ModerationActionRemoved:
		if err := store.Delete(ctx, input.ID); err != nil {
			return SubmitResult{}, fmt.Errorf("remove content: %w", err)
		}
	default:
		return SubmitResult{}, fmt.Errorf("unknown moderation action %q", decision.Action)
	}

	// Best effort: escalation failures never unwind the content
	// decision that is already applied.
	if len(decision.Violations) > 0 && s.escalator != nil {
		if _, err := s.escalator.RecordViolation(ctx, input.UserID, decision.Violations, rawScore); err != nil {
			s.logger.Warn("ban escalation failed",
				zap.Error(err),
				zap.Int64("user_id", input.UserID),
				zap.String("content_type", string(input.Type)),
				zap.Int64("content_id", input.ID),
			)
		}
	}

	return SubmitResult{
		Status:    statusFor(decision.Action),
		ContentID: input.ID,
	}, nil
}

// evaluate runs the classifier and the rule engine, collapsing every
// failure mode onto the fail-safe hold-for-review decision. A
// classifier timeout is indistinguishable from an outage here.
func (s *Service) evaluate(ctx context.Context, content moderation.Content) (moderation.Decision, []byte) {
	classifyCtx, cancel := context.WithTimeout(ctx, s.cfg.ClassifierTimeout)
	defer cancel()

	result, err := s.classifier.Classify(classifyCtx, content.Text)
	if err != nil {
		s.logger.Warn("classifier call failed, failing safe",
			zap.Error(err),
			zap.String("content_type", string(content.Type)),
			zap.Int64("content_id", content.ID),
		)
		return s.engine.EvaluateFailure(ctx, content, err), moderation.FailureEvidence(err)
	}

	decision, err := s.engine.Evaluate(ctx, content, moderation.ClassifierResult{
		Flagged:        result.Flagged,
		CategoryScores: result.CategoryScores,
		Raw:            result.Raw,
	})
	if err != nil {
		s.logger.Warn("moderation evaluation failed, failing safe",
			zap.Error(err),
			zap.String("content_type", string(content.Type)),
			zap.Int64("content_id", content.ID),
		)
		return s.engine.EvaluateFailure(ctx, content, err), moderation.FailureEvidence(err)
	}

	return decision, result.Raw
}

func (s *Service) storeFor(contentType enums.ContentType) (ContentStore, error) {
	switch contentType {
	case enums.ContentTypePost:
		if s.posts == nil {
			return nil, fmt.Errorf("post store is not configured")
		}
		return s.posts, nil
	case enums.ContentTypeComment:
		if s.comments == nil {
			return nil, fmt.Errorf("comment store is not configured")
		}
		return s.comments, nil
	default:
		return nil, fmt.Errorf("unknown content type %q", contentType)
	}
}

func statusFor(action enums.ModerationAction) enums.SubmitStatus {
	switch action {
	case enums.ModerationActionApproved:
		return enums.SubmitStatusPublished
	case enums.ModerationActionManualReview:
		return enums.SubmitStatusPendingReview
	default:
		return enums.SubmitStatusRejected
	}
}
