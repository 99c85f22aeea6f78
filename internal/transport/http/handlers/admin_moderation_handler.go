package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/hungwahenry/cheevo-sub000/internal/domain/enums"
	"github.com/hungwahenry/cheevo-sub000/internal/domain/model"
	"github.com/hungwahenry/cheevo-sub000/internal/transport/http/dto"
	httperrors "github.com/hungwahenry/cheevo-sub000/internal/transport/http/errors"
)

type RuleStore interface {
	ListActive(ctx context.Context) ([]model.ModerationConfig, error)
	UpsertRule(ctx context.Context, category string, threshold float64, action enums.ModerationAction, appliesTo string) error
}

type RuleCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type AuditLogStore interface {
	ListRecent(ctx context.Context, limit int) ([]model.ModerationLog, error)
}

// AdminModerationHandler lets operators edit threshold rules and read
// the audit trail. Rule edits invalidate the config snapshot cache so
// the next evaluation sees them.
type AdminModerationHandler struct {
	rules RuleStore
	cache RuleCacheInvalidator
	logs  AuditLogStore
}

func NewAdminModerationHandler(rules RuleStore, logs AuditLogStore) *AdminModerationHandler {
	return &AdminModerationHandler{rules: rules, logs: logs}
}

func (h *AdminModerationHandler) AttachConfigCache(cache RuleCacheInvalidator) {
	h.cache = cache
}

func (h *AdminModerationHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if h.rules == nil {
		writeInternal(w, "MODERATION_CONFIG_UNAVAILABLE", "moderation config store is unavailable")
		return
	}

	rules, err := h.rules.ListActive(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load moderation rules")
		return
	}

	resp := dto.RuleListResponse{Items: make([]dto.RuleItem, 0, len(rules))}
	for _, rule := range rules {
		resp.Items = append(resp.Items, dto.RuleItem{
			ID:        rule.ID,
			Category:  rule.Category,
			Threshold: rule.Threshold,
			Action:    string(rule.Action),
			AppliesTo: rule.AppliesTo,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *AdminModerationHandler) UpsertRule(w http.ResponseWriter, r *http.Request) {
	if h.rules == nil {
		writeInternal(w, "MODERATION_CONFIG_UNAVAILABLE", "moderation config store is unavailable")
		return
	}

	var req dto.UpsertRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "category is required")
		return
	}
	if req.Threshold < 0 || req.Threshold > 1 {
		writeBadRequest(w, "VALIDATION_ERROR", "threshold must be within [0, 1]")
		return
	}
	action, ok := enums.ParseModerationAction(req.Action)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown moderation action")
		return
	}
	appliesTo := strings.TrimSpace(req.AppliesTo)
	switch appliesTo {
	case model.ScopePost, model.ScopeComment, model.ScopeBoth:
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "applies_to must be post, comment or both")
		return
	}

	if err := h.rules.UpsertRule(r.Context(), category, req.Threshold, action, appliesTo); err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to save moderation rule")
		return
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(r.Context())
	}

	httperrors.Write(w, http.StatusOK, dto.ResolveResponse{OK: true})
}

func (h *AdminModerationHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		writeInternal(w, "MODERATION_LOG_UNAVAILABLE", "moderation log store is unavailable")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be within [1, 500]")
			return
		}
		limit = parsed
	}

	logs, err := h.logs.ListRecent(r.Context(), limit)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load moderation logs")
		return
	}

	resp := dto.ModerationLogListResponse{Items: make([]dto.ModerationLogItem, 0, len(logs))}
	for _, entry := range logs {
		resp.Items = append(resp.Items, dto.ModerationLogItem{
			ID:                 entry.ID,
			ContentType:        string(entry.ContentType),
			ContentID:          entry.ContentID,
			ContentText:        entry.ContentText,
			ClassifierResponse: entry.ClassifierResponse,
			Flagged:            entry.Flagged,
			ActionTaken:        string(entry.ActionTaken),
			ProcessedAt:        entry.ProcessedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}
