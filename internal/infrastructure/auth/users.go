package auth

import (
	"errors"

	"github.com/bizconsole/backend/internal/infrastructure/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is an authenticated console user
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserStore checks credentials against the configured console users
type UserStore struct {
	users map[string]config.UserConfig
}

// NewUserStore indexes users by name
func NewUserStore(users []config.UserConfig) *UserStore {
	m := make(map[string]config.UserConfig, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &UserStore{users: m}
}

// dummyHash keeps unknown-user checks as slow as real ones
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z1b3H1bB0kRzjz2Zx7Hq7g5e")

// Authenticate verifies a username and password
func (s *UserStore) Authenticate(username, password string) (*User, error) {
	u, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	role := u.Role
	if role == "" {
		role = "viewer"
	}
	return &User{Username: u.Username, Role: role}, nil
}

// HashPassword returns a bcrypt hash suitable for config
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
