package handlers

import (
	"context"
	"errors"
	"net/http"

	reviewsvc "github.com/hungwahenry/cheevo-sub000/internal/services/review"
	"github.com/hungwahenry/cheevo-sub000/internal/transport/http/dto"
	httperrors "github.com/hungwahenry/cheevo-sub000/internal/transport/http/errors"
)

type ReviewHandler struct {
	service *reviewsvc.Service
}

func NewReviewHandler(service *reviewsvc.Service) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	items, err := h.service.ListHeldPosts(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load review queue")
		return
	}

	resp := dto.ReviewPostListResponse{Items: make([]dto.ReviewPostItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.ReviewPostItem{
			PostID:         item.PostID,
			AuthorID:       item.AuthorID,
			AuthorUsername: item.AuthorUsername,
			Text:           item.Text,
			ImageURL:       item.ImageURL,
			Scores:         item.Scores,
			CreatedAt:      item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ReviewHandler) NextPost(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	item, err := h.service.NextPost(r.Context())
	if err != nil {
		if errors.Is(err, reviewsvc.ErrQueueEmpty) {
			writeNotFound(w, "QUEUE_EMPTY", "review queue is empty")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load review queue")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReviewPostItem{
		PostID:         item.PostID,
		AuthorID:       item.AuthorID,
		AuthorUsername: item.AuthorUsername,
		Text:           item.Text,
		ImageURL:       item.ImageURL,
		Scores:         item.Scores,
		CreatedAt:      item.CreatedAt,
	})
}

func (h *ReviewHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	items, err := h.service.ListHeldComments(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load review queue")
		return
	}

	resp := dto.ReviewCommentListResponse{Items: make([]dto.ReviewCommentItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.ReviewCommentItem{
			CommentID:      item.CommentID,
			PostID:         item.PostID,
			AuthorID:       item.AuthorID,
			AuthorUsername: item.AuthorUsername,
			Text:           item.Text,
			Scores:         item.Scores,
			CreatedAt:      item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ReviewHandler) ApprovePost(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.ApprovePost)
}

func (h *ReviewHandler) RejectPost(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.RejectPost)
}

func (h *ReviewHandler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.ApproveComment)
}

func (h *ReviewHandler) RejectComment(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, h.service.RejectComment)
}

func (h *ReviewHandler) resolve(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) error) {
	if h.service == nil {
		writeInternal(w, "REVIEW_SERVICE_UNAVAILABLE", "review service is unavailable")
		return
	}

	id, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid item id")
		return
	}

	if err := fn(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, reviewsvc.ErrItemNotFound):
			writeNotFound(w, "ITEM_NOT_FOUND", "review item not found")
		case errors.Is(err, reviewsvc.ErrAlreadyResolved):
			writeBadRequest(w, "ALREADY_RESOLVED", "item is not held for review")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to resolve review item")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ResolveResponse{OK: true})
}
