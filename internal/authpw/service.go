// Package authpw verifies email/password credentials against the user
// store. The contract is intentionally narrow: email plus secret in, user or
// nothing out.
package authpw

import (
	"context"
	"crypto/subtle"
	"strings"

	"okrhub/api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the slice of the repository this package needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, bool, error)
}

type Service struct {
	store UserStore
}

func NewService(userStore UserStore) *Service {
	return &Service{store: userStore}
}

// Verify returns the user matching the credentials, or ok=false when either
// the email is unknown or the password does not match. Stored secrets in
// bcrypt form are compared with bcrypt; anything else is compared byte for
// byte, which keeps legacy plaintext rows and the demo fixture working.
// Hashing every stored credential remains an open hardening item.
func (s *Service) Verify(ctx context.Context, email, password string) (store.User, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return store.User{}, false, nil
	}

	user, found, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return store.User{}, false, err
	}
	if !found {
		return store.User{}, false, nil
	}
	if !matches(user.Password, password) {
		return store.User{}, false, nil
	}
	return user, true, nil
}

func matches(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
