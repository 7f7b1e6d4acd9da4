package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Token represents an API token. Disk operations are destructive enough that
// every mutating endpoint requires one when token auth is enabled.
type Token struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token,omitempty"` // Only shown on creation
	Hash      string    `json:"-"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

// Manager handles API token authentication.
type Manager struct {
	db     *sql.DB
	mu     sync.RWMutex
	tokens map[string]*Token
}

// New opens (or creates) the token store at dbPath.
func New(dbPath string) (*Manager, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("auth database path must not be empty")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	m := &Manager{
		db:     db,
		tokens: make(map[string]*Token),
	}

	if err := m.initDB(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	if err := m.loadTokens(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load tokens: %w", err)
	}

	return m, nil
}

func (m *Manager) initDB() error {
	schema := `
	CREATE TABLE IF NOT EXISTS api_tokens (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		token_hash TEXT NOT NULL,
		name TEXT,
		expires_at INTEGER,
		created_at INTEGER,
		last_used INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_token_hash ON api_tokens(token_hash);
	CREATE INDEX IF NOT EXISTS idx_user_id ON api_tokens(user_id);
	`

	_, err := m.db.Exec(schema)
	return err
}

func (m *Manager) loadTokens() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.db.Query(`
		SELECT id, user_id, token_hash, name, expires_at, created_at, last_used
		FROM api_tokens
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var token Token
		var expiresAt, createdAt, lastUsed int64

		err := rows.Scan(&token.ID, &token.UserID, &token.Hash, &token.Name,
			&expiresAt, &createdAt, &lastUsed)
		if err != nil {
			continue
		}

		token.ExpiresAt = time.Unix(expiresAt, 0)
		token.CreatedAt = time.Unix(createdAt, 0)
		token.LastUsed = time.Unix(lastUsed, 0)

		m.tokens[token.Hash] = &token
	}

	return rows.Err()
}

// CreateToken creates a new API token. The bare token value is returned once
// and never stored.
func (m *Manager) CreateToken(userID, name string, expiresAt time.Time) (*Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	tokenStr := base64.URLEncoding.EncodeToString(tokenBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(tokenStr), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash token: %w", err)
	}

	token := &Token{
		ID:        generateID(),
		UserID:    userID,
		Token:     tokenStr,
		Hash:      string(hash),
		Name:      name,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
		LastUsed:  time.Now(),
	}

	_, err = m.db.Exec(`
		INSERT INTO api_tokens (id, user_id, token_hash, name, expires_at, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, token.ID, token.UserID, token.Hash, token.Name,
		token.ExpiresAt.Unix(), token.CreatedAt.Unix(), token.LastUsed.Unix())
	if err != nil {
		return nil, err
	}

	m.tokens[token.Hash] = token
	return token, nil
}

// ValidateToken validates an API token.
func (m *Manager) ValidateToken(tokenStr string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, token := range m.tokens {
		if err := bcrypt.CompareHashAndPassword([]byte(token.Hash), []byte(tokenStr)); err == nil {
			if time.Now().After(token.ExpiresAt) {
				return nil, fmt.Errorf("token expired")
			}

			go m.updateTokenLastUsed(token.ID)

			return token, nil
		}
	}

	return nil, fmt.Errorf("invalid token")
}

func (m *Manager) updateTokenLastUsed(tokenID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.db.Exec("UPDATE api_tokens SET last_used = ? WHERE id = ?", time.Now().Unix(), tokenID)
	if err == nil {
		for _, token := range m.tokens {
			if token.ID == tokenID {
				token.LastUsed = time.Now()
				break
			}
		}
	}
}

// RevokeToken revokes an API token.
func (m *Manager) RevokeToken(tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.db.Exec("DELETE FROM api_tokens WHERE id = ?", tokenID)
	if err != nil {
		return err
	}

	for hash, token := range m.tokens {
		if token.ID == tokenID {
			delete(m.tokens, hash)
			break
		}
	}

	return nil
}

// ListTokens lists all API tokens for a user.
func (m *Manager) ListTokens(userID string) ([]*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tokens []*Token
	for _, token := range m.tokens {
		if token.UserID == userID {
			tokens = append(tokens, token)
		}
	}

	return tokens, nil
}

// Close closes the token store.
func (m *Manager) Close() error {
	return m.db.Close()
}

// CompareSecure performs constant-time string comparison.
func CompareSecure(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
