package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func assertMuxPatterns(t *testing.T, mux *http.ServeMux, paths []string) {
	t.Helper()

	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		_, pattern := mux.Handler(req)
		if pattern != path {
			t.Fatalf("expected handler for %q, got pattern %q", path, pattern)
		}
	}
}

func TestAuthHandlersRegister(t *testing.T) {
	mux := http.NewServeMux()
	handler := &AuthHandlers{}
	handler.Register(mux)

	assertMuxPatterns(t, mux, []string{
		"/api/v1/auth/tokens/create",
		"/api/v1/auth/tokens",
		"/api/v1/auth/tokens/revoke",
	})
}

func TestDiskHandlersRegister(t *testing.T) {
	mux := http.NewServeMux()
	handler := &DiskHandlers{}
	handler.Register(mux)

	assertMuxPatterns(t, mux, []string{
		"/api/v1/disk/list",
		"/api/v1/disk/detail",
		"/api/v1/disk/volumes",
		"/api/v1/disk/partitions",
		"/api/v1/disk/wipe",
		"/api/v1/partition/create",
		"/api/v1/partition/delete",
		"/api/v1/partition/format",
		"/api/v1/partition/assign",
		"/api/v1/partition/remove-letter",
		"/api/v1/partition/active",
		"/api/v1/partition/extend",
		"/api/v1/partition/shrink",
	})
}
