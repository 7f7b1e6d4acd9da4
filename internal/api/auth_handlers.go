package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nasware/dpagent/internal/audit"
	"github.com/nasware/dpagent/internal/auth"
)

type AuthHandlers struct {
	auth  *auth.Manager
	audit *audit.Logger
}

func NewAuthHandlers(authMgr *auth.Manager, auditLogger *audit.Logger) *AuthHandlers {
	return &AuthHandlers{
		auth:  authMgr,
		audit: auditLogger,
	}
}

func (h *AuthHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/auth/tokens", h.ListTokens)
	mux.HandleFunc("/api/v1/auth/tokens/create", h.CreateToken)
	mux.HandleFunc("/api/v1/auth/tokens/revoke", h.RevokeToken)
}

type CreateTokenRequest struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

// CreateToken handles POST /api/v1/auth/tokens/create. The bare token value
// appears in this response only.
func (h *AuthHandlers) CreateToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	var req CreateTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return
	}

	expiresAt := time.Now().Add(time.Duration(req.ExpiresIn) * time.Second)
	if req.ExpiresIn == 0 {
		expiresAt = time.Now().Add(365 * 24 * time.Hour) // Default 1 year
	}

	token, err := h.auth.CreateToken(req.UserID, req.Name, expiresAt)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	if h.audit != nil {
		h.audit.Log(r.Context(), &audit.Entry{
			User:     getUser(r),
			Action:   "create_token",
			Resource: "auth",
			Result:   "success",
			SourceIP: r.RemoteAddr,
			Details:  map[string]interface{}{"user_id": req.UserID, "token_name": req.Name},
		})
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: token})
}

// ListTokens handles GET /api/v1/auth/tokens?user_id=...
func (h *AuthHandlers) ListTokens(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "user_id required"})
		return
	}

	tokens, err := h.auth.ListTokens(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: tokens})
}

// RevokeToken handles DELETE /api/v1/auth/tokens/revoke?id=...
func (h *AuthHandlers) RevokeToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, Response{Success: false, Error: "method not allowed"})
		return
	}

	tokenID := r.URL.Query().Get("id")
	if tokenID == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "token ID required"})
		return
	}

	if err := h.auth.RevokeToken(tokenID); err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{Success: false, Error: err.Error()})
		return
	}

	if h.audit != nil {
		h.audit.Log(r.Context(), &audit.Entry{
			User:     getUser(r),
			Action:   "revoke_token",
			Resource: tokenID,
			Result:   "success",
			SourceIP: r.RemoteAddr,
		})
	}

	writeJSON(w, http.StatusOK, Response{Success: true})
}
