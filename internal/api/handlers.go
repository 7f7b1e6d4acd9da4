package api

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/nasware/dpagent/internal/auth"
	"github.com/nasware/dpagent/internal/diskpart"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	ToolAvailable bool      `json:"tool_available"`
}

func RegisterHTTPHandlers(mux *http.ServeMux, manager *diskpart.Manager) {
	mux.HandleFunc("/healthz", healthHandler(manager))
	mux.HandleFunc("/api/v1/status", statusHandler)
}

func healthHandler(manager *diskpart.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:        "ok",
			Timestamp:     time.Now(),
			Version:       "1.0.0",
			ToolAvailable: manager.Available(),
		}
		writeJSON(w, http.StatusOK, Response{Success: true, Data: resp})
	}
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, Response{
			Success: false,
			Error:   "method not allowed",
		})
		return
	}

	hostname, _ := os.Hostname()

	status := map[string]interface{}{
		"hostname": hostname,
		"status":   "running",
		"pid":      os.Getpid(),
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: status})
}

// RequireToken wraps a handler with X-API-Key validation. A nil manager
// disables authentication entirely (token_auth: false).
func RequireToken(authMgr *auth.Manager, next http.HandlerFunc) http.HandlerFunc {
	if authMgr == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-Key")
		if key == "" {
			writeJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "missing API key"})
			return
		}
		if _, err := authMgr.ValidateToken(key); err != nil {
			writeJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "invalid API key"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func getUser(r *http.Request) string {
	if user := r.Header.Get("X-User"); user != "" {
		return user
	}
	return "anonymous"
}

// writeResult maps a CommandResult onto an HTTP status. The result itself is
// the response body; callers only need the error_code string, never the
// taxonomy internals.
func writeResult(w http.ResponseWriter, res *diskpart.CommandResult) {
	status := http.StatusOK
	if !res.Success {
		switch res.ErrorCode {
		case "INVALID_COMMAND":
			status = http.StatusBadRequest
		case "PRIVILEGE_ERROR", "ACCESS_DENIED":
			status = http.StatusForbidden
		case "DISK_NOT_FOUND", "PARTITION_NOT_FOUND":
			status = http.StatusNotFound
		case "COMMAND_TIMEOUT":
			status = http.StatusGatewayTimeout
		default:
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, res)
}
