package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	pgrepo "github.com/hungwahenry/cheevo-sub000/internal/repo/postgres"
	reviewsvc "github.com/hungwahenry/cheevo-sub000/internal/services/review"
)

type heldPostsStub struct {
	posts map[int64]model.Post
}

func (s *heldPostsStub) GetByID(_ context.Context, postID int64) (model.Post, error) {
	p, ok := s.posts[postID]
	if !ok {
		return model.Post{}, pgrepo.ErrPostNotFound
	}
	return p, nil
}

func (s *heldPostsStub) ListHeld(_ context.Context, _ int) ([]model.Post, error) {
	var held []model.Post
	for _, p := range s.posts {
		if p.IsFlagged {
			held = append(held, p)
		}
	}
	return held, nil
}

func (s *heldPostsStub) Publish(_ context.Context, postID int64, score []byte) error {
	p := s.posts[postID]
	p.IsFlagged = false
	p.ModerationScore = score
	s.posts[postID] = p
	return nil
}

func (s *heldPostsStub) Delete(_ context.Context, postID int64) error {
	delete(s.posts, postID)
	return nil
}

type heldCommentsStub struct{}

func (heldCommentsStub) GetByID(context.Context, int64) (model.Comment, error) {
	return model.Comment{}, pgrepo.ErrCommentNotFound
}

func (heldCommentsStub) ListHeld(context.Context, int) ([]model.Comment, error) {
	return nil, nil
}

func (heldCommentsStub) Publish(context.Context, int64, []byte) error { return nil }
func (heldCommentsStub) Delete(context.Context, int64) error          { return nil }

type usersStub struct{}

func (usersStub) GetByID(context.Context, int64) (model.User, error) {
	return model.User{ID: 4, Username: "ada"}, nil
}

func reviewRouter(t *testing.T, posts *heldPostsStub) http.Handler {
	t.Helper()
	svc := reviewsvc.NewService(posts, heldCommentsStub{}, usersStub{}, reviewsvc.Config{}, nil)
	h := NewReviewHandler(svc)

	r := chi.NewRouter()
	r.Get("/review/posts", h.ListPosts)
	r.Get("/review/posts/next", h.NextPost)
	r.Post("/review/posts/{id}/approve", h.ApprovePost)
	r.Post("/review/posts/{id}/reject", h.RejectPost)
	return r
}

func TestReviewListPosts(t *testing.T) {
	posts := &heldPostsStub{posts: map[int64]model.Post{
		1: {ID: 1, UserID: 4, Text: "held", IsFlagged: true},
		2: {ID: 2, UserID: 4, Text: "live", IsFlagged: false},
	}}
	router := reviewRouter(t, posts)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/review/posts", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var payload struct {
		Items []struct {
			PostID         int64  `json:"post_id"`
			AuthorUsername string `json:"author_username"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].PostID != 1 {
		t.Fatalf("items = %+v", payload.Items)
	}
	if payload.Items[0].AuthorUsername != "ada" {
		t.Fatalf("username = %q", payload.Items[0].AuthorUsername)
	}
}

func TestReviewApprovePost(t *testing.T) {
	posts := &heldPostsStub{posts: map[int64]model.Post{
		1: {ID: 1, UserID: 4, IsFlagged: true},
	}}
	router := reviewRouter(t, posts)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/review/posts/1/approve", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if posts.posts[1].IsFlagged {
		t.Fatalf("post still flagged")
	}
}

func TestReviewApproveMissingPost(t *testing.T) {
	router := reviewRouter(t, &heldPostsStub{posts: map[int64]model.Post{}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/review/posts/99/approve", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestReviewNextPostEmpty(t *testing.T) {
	router := reviewRouter(t, &heldPostsStub{posts: map[int64]model.Post{}})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/review/posts/next", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Code != "QUEUE_EMPTY" {
		t.Fatalf("code = %q", payload.Code)
	}
}

func TestReviewRejectPost(t *testing.T) {
	posts := &heldPostsStub{posts: map[int64]model.Post{
		1: {ID: 1, UserID: 4, IsFlagged: true},
	}}
	router := reviewRouter(t, posts)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/review/posts/1/reject", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if _, ok := posts.posts[1]; ok {
		t.Fatalf("post not deleted")
	}
}
