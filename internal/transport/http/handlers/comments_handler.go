package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/hungwahenry/cheevo-sub000/internal/services/auth"
	commentssvc "github.com/hungwahenry/cheevo-sub000/internal/services/comments"
	"github.com/hungwahenry/cheevo-sub000/internal/transport/http/dto"
	httperrors "github.com/hungwahenry/cheevo-sub000/internal/transport/http/errors"
)

type CommentsHandler struct {
	service *commentssvc.Service
}

func NewCommentsHandler(service *commentssvc.Service) *CommentsHandler {
	return &CommentsHandler{service: service}
}

func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMMENTS_SERVICE_UNAVAILABLE", "comments service is unavailable")
		return
	}

	postID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	var req dto.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Create(r.Context(), commentssvc.CreateInput{
		PostID: postID,
		UserID: identity.UserID,
		Text:   req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, commentssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
		case errors.Is(err, commentssvc.ErrPostNotFound):
			writeNotFound(w, "POST_NOT_FOUND", "post not found")
		case errors.Is(err, commentssvc.ErrUserBanned):
			writeForbidden(w, "USER_BANNED", "account is banned from posting")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create comment")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateCommentResponse{
		CommentID: res.CommentID,
		Status:    string(res.Status),
	})
}

func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "COMMENTS_SERVICE_UNAVAILABLE", "comments service is unavailable")
		return
	}

	commentID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid comment id")
		return
	}

	if err := h.service.DeleteOwn(r.Context(), commentID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, commentssvc.ErrCommentNotFound):
			writeNotFound(w, "COMMENT_NOT_FOUND", "comment not found")
		case errors.Is(err, commentssvc.ErrValidation):
			writeForbidden(w, "FORBIDDEN", "comment belongs to another user")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete comment")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteResponse{OK: true})
}
