package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
)

var (
	ErrQueueEmpty      = errors.New("review queue is empty")
	ErrItemNotFound    = errors.New("review item not found")
	ErrAlreadyResolved = errors.New("item is not held for review")
)

type PostStore interface {
	GetByID(ctx context.Context, postID int64) (model.Post, error)
	ListHeld(ctx context.Context, limit int) ([]model.Post, error)
	Publish(ctx context.Context, postID int64, moderationScore []byte) error
	Delete(ctx context.Context, postID int64) error
}

type CommentStore interface {
	GetByID(ctx context.Context, commentID int64) (model.Comment, error)
	ListHeld(ctx context.Context, limit int) ([]model.Comment, error)
	Publish(ctx context.Context, commentID int64, moderationScore []byte) error
	Delete(ctx context.Context, commentID int64) error
}

type UserStore interface {
	GetByID(ctx context.Context, userID int64) (model.User, error)
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type QueuedPost struct {
	PostID         int64
	AuthorID       int64
	AuthorUsername string
	Text           string
	ImageURL       *string
	Scores         []byte
	CreatedAt      time.Time
}

type QueuedComment struct {
	CommentID      int64
	PostID         int64
	AuthorID       int64
	AuthorUsername string
	Text           string
	Scores         []byte
	CreatedAt      time.Time
}

type Config struct {
	QueueLimit   int
	SignedURLTTL time.Duration
}

// Service is the moderator-facing side of the pipeline: listing held
// content and resolving it. Resolutions never touch ban history, so an
// overturned hold leaves the author's escalation ordinal as it was.
type Service struct {
	posts    PostStore
	comments CommentStore
	users    UserStore
	signer   URLSigner
	cfg      Config
	logger   *zap.Logger
}

func NewService(posts PostStore, comments CommentStore, users UserStore, cfg Config, logger *zap.Logger) *Service {
	if cfg.QueueLimit <= 0 {
		cfg.QueueLimit = 50
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		posts:    posts,
		comments: comments,
		users:    users,
		cfg:      cfg,
		logger:   logger,
	}
}

// AttachSigner enables signed image URLs on queued posts. Without it
// the queue still works, text only.
func (s *Service) AttachSigner(signer URLSigner) {
	s.signer = signer
}

// ListHeldPosts returns held posts oldest-first with author usernames
// and, when a signer is attached, signed image URLs.
func (s *Service) ListHeldPosts(ctx context.Context) ([]QueuedPost, error) {
	if s.posts == nil {
		return nil, fmt.Errorf("review service dependencies are not configured")
	}

	held, err := s.posts.ListHeld(ctx, s.cfg.QueueLimit)
	if err != nil {
		return nil, err
	}

	items := make([]QueuedPost, 0, len(held))
	for _, post := range held {
		item := QueuedPost{
			PostID:    post.ID,
			AuthorID:  post.UserID,
			Text:      post.Text,
			Scores:    post.ModerationScore,
			CreatedAt: post.CreatedAt,
		}
		item.AuthorUsername = s.username(ctx, post.UserID)
		if s.signer != nil && post.ImageKey != nil && *post.ImageKey != "" {
			url, signErr := s.signer.PresignGet(ctx, *post.ImageKey, s.cfg.SignedURLTTL)
			if signErr != nil {
				s.logger.Warn("presign post image failed", zap.Error(signErr), zap.Int64("post_id", post.ID))
			} else {
				item.ImageURL = &url
			}
		}
		items = append(items, item)
	}

	return items, nil
}

// NextPost returns the oldest held post.
func (s *Service) NextPost(ctx context.Context) (QueuedPost, error) {
	items, err := s.ListHeldPosts(ctx)
	if err != nil {
		return QueuedPost{}, err
	}
	if len(items) == 0 {
		return QueuedPost{}, ErrQueueEmpty
	}
	return items[0], nil
}

func (s *Service) ListHeldComments(ctx context.Context) ([]QueuedComment, error) {
	if s.comments == nil {
		return nil, fmt.Errorf("review service dependencies are not configured")
	}

	held, err := s.comments.ListHeld(ctx, s.cfg.QueueLimit)
	if err != nil {
		return nil, err
	}

	items := make([]QueuedComment, 0, len(held))
	for _, comment := range held {
		items = append(items, QueuedComment{
			CommentID:      comment.ID,
			PostID:         comment.PostID,
			AuthorID:       comment.UserID,
			AuthorUsername: s.username(ctx, comment.UserID),
			Text:           comment.Text,
			Scores:         comment.ModerationScore,
			CreatedAt:      comment.CreatedAt,
		})
	}

	return items, nil
}

// ApprovePost makes a held post visible, keeping its stored scores.
func (s *Service) ApprovePost(ctx context.Context, postID int64) error {
	post, err := s.heldPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.posts.Publish(ctx, postID, post.ModerationScore); err != nil {
		return err
	}

	s.logger.Info("post approved by moderator", zap.Int64("post_id", postID))
	return nil
}

// RejectPost removes a held post. The image, if any, is deleted from
// storage best-effort.
func (s *Service) RejectPost(ctx context.Context, postID int64) error {
	post, err := s.heldPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	if s.signer != nil && post.ImageKey != nil && *post.ImageKey != "" {
		if delErr := s.signer.Delete(ctx, *post.ImageKey); delErr != nil {
			s.logger.Warn("delete post image failed", zap.Error(delErr), zap.Int64("post_id", postID))
		}
	}

	s.logger.Info("post rejected by moderator", zap.Int64("post_id", postID))
	return nil
}

func (s *Service) ApproveComment(ctx context.Context, commentID int64) error {
	comment, err := s.heldComment(ctx, commentID)
	if err != nil {
		return err
	}

	if err := s.comments.Publish(ctx, commentID, comment.ModerationScore); err != nil {
		return err
	}

	s.logger.Info("comment approved by moderator", zap.Int64("comment_id", commentID))
	return nil
}

func (s *Service) RejectComment(ctx context.Context, commentID int64) error {
	if _, err := s.heldComment(ctx, commentID); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment rejected by moderator", zap.Int64("comment_id", commentID))
	return nil
}

func (s *Service) heldPost(ctx context.Context, postID int64) (model.Post, error) {
	if postID <= 0 {
		return model.Post{}, fmt.Errorf("invalid post id")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPostNotFound) {
			return model.Post{}, ErrItemNotFound
		}
		return model.Post{}, err
	}
	if !post.IsFlagged {
		return model.Post{}, ErrAlreadyResolved
	}

	return post, nil
}

func (s *Service) heldComment(ctx context.Context, commentID int64) (model.Comment, error) {
	if commentID <= 0 {
		return model.Comment{}, fmt.Errorf("invalid comment id")
	}

	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrCommentNotFound) {
			return model.Comment{}, ErrItemNotFound
		}
		return model.Comment{}, err
	}
	if !comment.IsFlagged {
		return model.Comment{}, ErrAlreadyResolved
	}

	return comment, nil
}

func (s *Service) username(ctx context.Context, userID int64) string {
	if s.users == nil {
		return ""
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, pgrepo.ErrUserNotFound) {
			s.logger.Debug("load author failed", zap.Error(err), zap.Int64("user_id", userID))
		}
		return ""
	}
	return user.Username
}
