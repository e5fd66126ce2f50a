package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
)

// User is an account row. The password hash never leaves this package.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	CreatedAt    int64  `json:"created_at"`
}

var (
	ErrUserExists   = errors.New("auth: username or email already taken")
	ErrUserNotFound = errors.New("auth: user not found")
)

type UserStore interface {
	Create(ctx context.Context, u User) error
	ByUsername(ctx context.Context, username string) (User, error)
	ByID(ctx context.Context, id string) (User, error)
}

type SQLUserStore struct{ db *sql.DB }

func NewSQLUserStore(db *sql.DB) *SQLUserStore { return &SQLUserStore{db: db} }

func (s *SQLUserStore) Create(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

func (s *SQLUserStore) ByUsername(ctx context.Context, username string) (User, error) {
	return s.get(ctx, `SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE username=$1`, username)
}

func (s *SQLUserStore) ByID(ctx context.Context, id string) (User, error) {
	return s.get(ctx, `SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE id=$1`, id)
}

func (s *SQLUserStore) get(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// isUniqueViolation sniffs driver error text; sqlite and postgres spell
// unique-constraint failures differently.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}

// MemoryUserStore is a map-backed UserStore for tests.
type MemoryUserStore struct {
	mu     sync.RWMutex
	byID   map[string]User
	byName map[string]string
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{byID: map[string]User{}, byName: map[string]string{}}
}

func (m *MemoryUserStore) Create(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return ErrUserExists
	}
	if u.Email != "" {
		for _, other := range m.byID {
			if other.Email == u.Email {
				return ErrUserExists
			}
		}
	}
	m.byID[u.ID] = u
	m.byName[u.Username] = u.ID
	return nil
}

func (m *MemoryUserStore) ByUsername(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryUserStore) ByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}
