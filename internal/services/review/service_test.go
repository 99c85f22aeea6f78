package review

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
)

type memoryPosts struct {
	posts     map[int64]model.Post
	published []int64
	deleted   []int64
}

func newMemoryPosts() *memoryPosts {
	return &memoryPosts{posts: make(map[int64]model.Post)}
}

func (m *memoryPosts) GetByID(_ context.Context, postID int64) (model.Post, error) {
	p, ok := m.posts[postID]
	if !ok {
		return model.Post{}, pgrepo.ErrPostNotFound
	}
	return p, nil
}

func (m *memoryPosts) ListHeld(_ context.Context, limit int) ([]model.Post, error) {
	var held []model.Post
	for _, p := range m.posts {
		if p.IsFlagged {
			held = append(held, p)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].CreatedAt.Before(held[j].CreatedAt) })
	if len(held) > limit {
		held = held[:limit]
	}
	return held, nil
}

func (m *memoryPosts) Publish(_ context.Context, postID int64, score []byte) error {
	p := m.posts[postID]
	p.IsFlagged = false
	p.ModerationScore = score
	m.posts[postID] = p
	m.published = append(m.published, postID)
	return nil
}

func (m *memoryPosts) Delete(_ context.Context, postID int64) error {
	delete(m.posts, postID)
	m.deleted = append(m.deleted, postID)
	return nil
}

type memoryComments struct {
	comments  map[int64]model.Comment
	published []int64
	deleted   []int64
}

func newMemoryComments() *memoryComments {
	return &memoryComments{comments: make(map[int64]model.Comment)}
}

func (m *memoryComments) GetByID(_ context.Context, commentID int64) (model.Comment, error) {
	c, ok := m.comments[commentID]
	if !ok {
		return model.Comment{}, pgrepo.ErrCommentNotFound
	}
	return c, nil
}

func (m *memoryComments) ListHeld(_ context.Context, limit int) ([]model.Comment, error) {
	var held []model.Comment
	for _, c := range m.comments {
		if c.IsFlagged {
			held = append(held, c)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].CreatedAt.Before(held[j].CreatedAt) })
	if len(held) > limit {
		held = held[:limit]
	}
	return held, nil
}

func (m *memoryComments) Publish(_ context.Context, commentID int64, score []byte) error {
	c := m.comments[commentID]
	c.IsFlagged = false
	c.ModerationScore = score
	m.comments[commentID] = c
	m.published = append(m.published, commentID)
	return nil
}

func (m *memoryComments) Delete(_ context.Context, commentID int64) error {
	delete(m.comments, commentID)
	m.deleted = append(m.deleted, commentID)
	return nil
}

type fakeUsers struct {
	users map[int64]model.User
}

func (f *fakeUsers) GetByID(_ context.Context, userID int64) (model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

type fakeSigner struct {
	signed  []string
	deleted []string
	err     error
}

func (f *fakeSigner) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.signed = append(f.signed, key)
	return "https://cdn.example/" + key, nil
}

func (f *fakeSigner) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func strPtr(s string) *string { return &s }

func newReviewService(t *testing.T) (*Service, *memoryPosts, *memoryComments, *fakeSigner) {
	t.Helper()
	posts := newMemoryPosts()
	comments := newMemoryComments()
	users := &fakeUsers{users: map[int64]model.User{
		4: {ID: 4, Username: "ada"},
	}}
	signer := &fakeSigner{}
	svc := NewService(posts, comments, users, Config{}, nil)
	svc.AttachSigner(signer)
	return svc, posts, comments, signer
}

func TestListHeldPostsOldestFirst(t *testing.T) {
	svc, posts, _, signer := newReviewService(t)
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	posts.posts[1] = model.Post{ID: 1, UserID: 4, Text: "newer", IsFlagged: true, CreatedAt: base.Add(time.Hour)}
	posts.posts[2] = model.Post{ID: 2, UserID: 4, Text: "older", IsFlagged: true, ImageKey: strPtr("img/2.jpg"), CreatedAt: base}
	posts.posts[3] = model.Post{ID: 3, UserID: 4, Text: "visible", IsFlagged: false, CreatedAt: base}

	items, err := svc.ListHeldPosts(context.Background())
	if err != nil {
		t.Fatalf("ListHeldPosts: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].PostID != 2 || items[1].PostID != 1 {
		t.Fatalf("order = %d, %d", items[0].PostID, items[1].PostID)
	}
	if items[0].AuthorUsername != "ada" {
		t.Fatalf("username = %q", items[0].AuthorUsername)
	}
	if items[0].ImageURL == nil || *items[0].ImageURL != "https://cdn.example/img/2.jpg" {
		t.Fatalf("image url = %v", items[0].ImageURL)
	}
	if len(signer.signed) != 1 {
		t.Fatalf("signed keys = %v", signer.signed)
	}
}

func TestListHeldPostsSignFailureKeepsItem(t *testing.T) {
	svc, posts, _, signer := newReviewService(t)
	signer.err = errors.New("s3 down")
	posts.posts[1] = model.Post{ID: 1, UserID: 4, IsFlagged: true, ImageKey: strPtr("img/1.jpg")}

	items, err := svc.ListHeldPosts(context.Background())
	if err != nil {
		t.Fatalf("ListHeldPosts: %v", err)
	}
	if len(items) != 1 || items[0].ImageURL != nil {
		t.Fatalf("items = %+v", items)
	}
}

func TestNextPostEmptyQueue(t *testing.T) {
	svc, _, _, _ := newReviewService(t)

	if _, err := svc.NextPost(context.Background()); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("err = %v, want ErrQueueEmpty", err)
	}
}

func TestApprovePostKeepsScores(t *testing.T) {
	svc, posts, _, _ := newReviewService(t)
	posts.posts[1] = model.Post{ID: 1, UserID: 4, IsFlagged: true, ModerationScore: []byte(`{"hate":0.71}`)}

	if err := svc.ApprovePost(context.Background(), 1); err != nil {
		t.Fatalf("ApprovePost: %v", err)
	}
	got := posts.posts[1]
	if got.IsFlagged {
		t.Fatalf("post still flagged")
	}
	if string(got.ModerationScore) != `{"hate":0.71}` {
		t.Fatalf("scores = %s", got.ModerationScore)
	}
}

func TestRejectPostDeletesImage(t *testing.T) {
	svc, posts, _, signer := newReviewService(t)
	posts.posts[1] = model.Post{ID: 1, UserID: 4, IsFlagged: true, ImageKey: strPtr("img/1.jpg")}

	if err := svc.RejectPost(context.Background(), 1); err != nil {
		t.Fatalf("RejectPost: %v", err)
	}
	if len(posts.deleted) != 1 || posts.deleted[0] != 1 {
		t.Fatalf("deleted = %v", posts.deleted)
	}
	if len(signer.deleted) != 1 || signer.deleted[0] != "img/1.jpg" {
		t.Fatalf("image deleted = %v", signer.deleted)
	}
}

func TestResolveNotHeld(t *testing.T) {
	svc, posts, _, _ := newReviewService(t)
	posts.posts[1] = model.Post{ID: 1, UserID: 4, IsFlagged: false}

	if err := svc.ApprovePost(context.Background(), 1); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("err = %v, want ErrAlreadyResolved", err)
	}
	if err := svc.RejectPost(context.Background(), 99); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}

func TestCommentQueueRoundtrip(t *testing.T) {
	svc, _, comments, _ := newReviewService(t)
	comments.comments[5] = model.Comment{ID: 5, PostID: 1, UserID: 4, Text: "held", IsFlagged: true}
	comments.comments[6] = model.Comment{ID: 6, PostID: 1, UserID: 4, Text: "live", IsFlagged: false}

	items, err := svc.ListHeldComments(context.Background())
	if err != nil {
		t.Fatalf("ListHeldComments: %v", err)
	}
	if len(items) != 1 || items[0].CommentID != 5 {
		t.Fatalf("items = %+v", items)
	}
	if items[0].AuthorUsername != "ada" {
		t.Fatalf("username = %q", items[0].AuthorUsername)
	}

	if err := svc.ApproveComment(context.Background(), 5); err != nil {
		t.Fatalf("ApproveComment: %v", err)
	}
	if comments.comments[5].IsFlagged {
		t.Fatalf("comment still flagged")
	}
}

func TestRejectComment(t *testing.T) {
	svc, _, comments, _ := newReviewService(t)
	comments.comments[5] = model.Comment{ID: 5, PostID: 1, UserID: 4, IsFlagged: true}

	if err := svc.RejectComment(context.Background(), 5); err != nil {
		t.Fatalf("RejectComment: %v", err)
	}
	if len(comments.deleted) != 1 || comments.deleted[0] != 5 {
		t.Fatalf("deleted = %v", comments.deleted)
	}
}
