package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/hungwahenry/cheevo-sub000/internal/services/auth"
	banssvc "github.com/hungwahenry/cheevo-sub000/internal/services/bans"
	postssvc "github.com/hungwahenry/cheevo-sub000/internal/services/posts"
	"github.com/hungwahenry/cheevo-sub000/internal/transport/http/dto"
	httperrors "github.com/hungwahenry/cheevo-sub000/internal/transport/http/errors"
)

type PostsHandler struct {
	service *postssvc.Service
	bans    *banssvc.Service
}

func NewPostsHandler(service *postssvc.Service) *PostsHandler {
	return &PostsHandler{service: service}
}

// AttachBans enriches the banned rejection with ban type and expiry.
func (h *PostsHandler) AttachBans(bans *banssvc.Service) {
	h.bans = bans
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	var req dto.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Create(r.Context(), postssvc.CreateInput{
		UserID:   identity.UserID,
		Text:     req.Text,
		ImageKey: req.ImageKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, postssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
		case errors.Is(err, postssvc.ErrUserBanned):
			h.writeBanned(w, r, identity.UserID)
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to create post")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreatePostResponse{
		PostID: res.PostID,
		Status: string(res.Status),
	})
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	postID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	if err := h.service.DeleteOwn(r.Context(), postID, identity.UserID); err != nil {
		switch {
		case errors.Is(err, postssvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
		case errors.Is(err, postssvc.ErrPostNotFound):
			writeNotFound(w, "POST_NOT_FOUND", "post not found")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to delete post")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DeleteResponse{OK: true})
}

func (h *PostsHandler) writeBanned(w http.ResponseWriter, r *http.Request, userID int64) {
	payload := httperrors.BannedError{
		Code:    "USER_BANNED",
		Message: "account is banned from posting",
	}
	if h.bans != nil {
		if rec, err := h.bans.Current(r.Context(), userID); err == nil && rec != nil {
			payload.BanType = string(rec.BanType)
			payload.ExpiresAt = rec.ExpiresAt
		}
	}
	httperrors.Write(w, http.StatusForbidden, payload)
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
