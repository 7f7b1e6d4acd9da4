package auth

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty database path")
	}
}

func TestCreateAndValidateToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.CreateToken("admin", "ci", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if token.Token == "" {
		t.Fatal("expected bare token value on creation")
	}

	validated, err := m.ValidateToken(token.Token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if validated.ID != token.ID {
		t.Fatalf("expected token %s, got %s", token.ID, validated.ID)
	}

	if _, err := m.ValidateToken("not-a-token"); err == nil {
		t.Fatal("expected error for unknown token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager(t)

	token, err := m.CreateToken("admin", "stale", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if _, err := m.ValidateToken(token.Token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestRevokeToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.CreateToken("admin", "doomed", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}

	if err := m.RevokeToken(token.ID); err != nil {
		t.Fatalf("revoke token: %v", err)
	}

	if _, err := m.ValidateToken(token.Token); err == nil {
		t.Fatal("expected error after revocation")
	}
}

func TestListTokensFiltersByUser(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.CreateToken("alice", "a", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := m.CreateToken("bob", "b", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("create token: %v", err)
	}

	tokens, err := m.ListTokens("alice")
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0].UserID != "alice" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestTokensSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "auth.db")

	m, err := New(dbPath)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := m.CreateToken("admin", "persist", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen manager: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.ValidateToken(token.Token); err != nil {
		t.Fatalf("validate after reopen: %v", err)
	}
}
