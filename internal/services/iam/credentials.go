package iam

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/repository"
)

// ErrInvalidCredentials is returned when a username/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserLookup finds local users by username.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// CredentialValidator checks Basic credentials against stored bcrypt hashes.
type CredentialValidator struct {
	users UserLookup

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialValidator creates a validator backed by users.
func NewCredentialValidator(users UserLookup) *CredentialValidator {
	return &CredentialValidator{users: users}
}

// Validate returns the user whose username and password match. Mismatches,
// unknown users and users without a password all wrap ErrInvalidCredentials;
// other errors come from the store.
func (v *CredentialValidator) Validate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := v.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same bcrypt work as a real mismatch.
			auth.ComparePassword(v.dummy(), password)
			return nil, fmt.Errorf("%w: unknown user %q", ErrInvalidCredentials, username)
		}
		return nil, fmt.Errorf("look up user %q: %w", username, err)
	}

	if !user.HasPassword() {
		auth.ComparePassword(v.dummy(), password)
		return nil, fmt.Errorf("%w: user %q has no local password", ErrInvalidCredentials, username)
	}

	if !auth.ComparePassword(*user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: password mismatch for %q", ErrInvalidCredentials, username)
	}

	return user, nil
}

func (v *CredentialValidator) dummy() string {
	v.dummyOnce.Do(func() {
		hash, err := auth.HashPassword("taskapi-dummy-password", auth.DefaultPasswordCost)
		if err == nil {
			v.dummyHash = hash
		}
	})
	return v.dummyHash
}
