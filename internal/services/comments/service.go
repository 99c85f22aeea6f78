package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	"github.com/hungwahenry/cheevo-sub000/internal/services/contentgate"
)

const maxCommentLength = 500

var (
	ErrValidation   = errors.New("validation error")
	ErrUserBanned   = errors.New("user is banned")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

type Store interface {
	CreateHidden(ctx context.Context, postID, userID int64, text string) (int64, error)
	Delete(ctx context.Context, commentID int64) error
	GetByID(ctx context.Context, commentID int64) (model.Comment, error)
}

type PostStore interface {
	GetByID(ctx context.Context, postID int64) (model.Post, error)
}

type Gate interface {
	Submit(ctx context.Context, input contentgate.SubmitInput) (contentgate.SubmitResult, error)
}

type BanChecker interface {
	IsBanned(ctx context.Context, userID int64) (bool, error)
}

type CreateInput struct {
	PostID int64
	UserID int64
	Text   string
}

type CreateResult struct {
	CommentID int64
	Status    enums.SubmitStatus
}

type Service struct {
	store  Store
	posts  PostStore
	gate   Gate
	bans   BanChecker
	logger *zap.Logger
}

func NewService(store Store, posts PostStore, gate Gate, bans BanChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:  store,
		posts:  posts,
		gate:   gate,
		bans:   bans,
		logger: logger,
	}
}

// Create verifies the parent post is visible, persists the comment
// hidden, then runs it through the moderation gate.
func (s *Service) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	if input.PostID <= 0 || input.UserID <= 0 {
		return CreateResult{}, fmt.Errorf("%w: post id and user id are required", ErrValidation)
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return CreateResult{}, fmt.Errorf("%w: text is required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > maxCommentLength {
		return CreateResult{}, fmt.Errorf("%w: text exceeds %d characters", ErrValidation, maxCommentLength)
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

	post, err := s.posts.GetByID(ctx, input.PostID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return CreateResult{}, ErrPostNotFound
		}
		return CreateResult{}, fmt.Errorf("load parent post: %w", err)
	}
	// held or rejected posts do not accept comments
	if post.IsFlagged {
		return CreateResult{}, ErrPostNotFound
	}

	commentID, err := s.store.CreateHidden(ctx, input.PostID, input.UserID, text)
	if err != nil {
		return CreateResult{}, fmt.Errorf("create comment: %w", err)
	}

	res, err := s.gate.Submit(ctx, contentgate.SubmitInput{
		Type:   enums.ContentTypeComment,
		ID:     commentID,
		Text:   text,
		UserID: input.UserID,
	})
	if err != nil {
		return CreateResult{}, fmt.Errorf("moderate comment: %w", err)
	}

	s.logger.Info("comment created",
		zap.Int64("comment_id", commentID),
		zap.Int64("post_id", input.PostID),
		zap.Int64("user_id", input.UserID),
		zap.String("status", string(res.Status)),
	)

	return CreateResult{CommentID: commentID, Status: res.Status}, nil
}

func (s *Service) DeleteOwn(ctx context.Context, commentID, userID int64) error {
	if commentID <= 0 || userID <= 0 {
		return fmt.Errorf("%w: comment id and user id are required", ErrValidation)
	}

	comment, err := s.store.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCommentNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.UserID != userID {
		return fmt.Errorf("%w: comment belongs to another user", ErrValidation)
	}

	return s.store.Delete(ctx, commentID)
}
