package errors

import (
	"encoding/json"
	"net/http"
	"time"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type BannedError struct {
	Code      string     `json:"code"`
	Message   string     `json:"message"`
	BanType   string     `json:"ban_type,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
