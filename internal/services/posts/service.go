package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	"github.com/hungwahenry/cheevo-sub000/internal/services/contentgate"
)

const maxPostLength = 2000

var (
	ErrValidation   = errors.New("validation error")
	ErrUserBanned   = errors.New("user is banned")
	ErrPostNotFound = errors.New("post not found")
)

type Store interface {
	CreateHidden(ctx context.Context, userID int64, text string, imageKey *string) (int64, error)
	DeleteOwned(ctx context.Context, postID, userID int64) error
}

type Gate interface {
	Submit(ctx context.Context, input contentgate.SubmitInput) (contentgate.SubmitResult, error)
}

type BanChecker interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}

type CreateInput struct {
	UserID   int64
	Text     string
	ImageKey *string
}

type CreateResult struct {
	PostID int64
	Status enums.SubmitStatus
}

type Service struct {
	store  Store
	gate   Gate
	bans   BanChecker
	logger *zap.Logger
}

func NewService(store Store, gate Gate, bans BanChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		gate:   gate,
		bans:   bans,
		logger: logger,
	}
}

// Create persists the post hidden, then runs it through the moderation
// gate. The returned status tells the author whether the post went
// live, was held, or was rejected.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	if input.UserID <= 0 {
		return CreateResult{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return CreateResult{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxPostLength {
		return CreateResult{}, fmt.Errorf("%w: text exceeds %d characters", ErrValidation, maxPostLength)
	}

	if s.bans != nil {
		banned, err := s.bans.IsBanned(ctx, input.UserID)
		if err != nil {
			return CreateResult{}, fmt.Errorf("check ban: %w", err)
		}
		if banned {
			return CreateResult{}, ErrUserBanned
		}
	}

	postID, err := s.store.CreateHidden(ctx, input.UserID, text, input.ImageKey)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create post: %w", err)
	}

	res, err := s.gate.Submit(ctx, contentgate.SubmitInput{
		Type:   enums.ContentTypePost,
		ID:     postID,
		Text:   text,
		UserID: input.UserID,
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("moderate post: %w", err)
	}

	s.logger.Info("post created",
		zap.Int64("post_id", postID),
		zap.Int64("user_id", input.UserID),
		zap.String("status", string(res.Status)),
	)

	return CreateResult{PostID: postID, Status: res.Status}, nil
}

func (s *Service) DeleteOwn(ctx context.Context, postID, userID int64) error {
	if postID <= 0 || userID <= 0 {
		return fmt.Errorf("%w: post id and user id are required", ErrValidation)
	}

	if err := s.store.DeleteOwned(ctx, postID, userID); err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}
