package iam

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
)

func localUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{Username: username, Email: username + "@example.com", PasswordHash: &hash}
}

func TestCredentialValidator_Validate(t *testing.T) {
	store := &mockUserStore{}
	batman := store.add(localUser(t, "batman", "alfred"))
	store.add(&models.User{Username: "oidc-only", Subject: strPtr("auth0|1")})

	v := NewCredentialValidator(store)
	ctx := context.Background()

	user, err := v.Validate(ctx, "batman", "alfred")
	require.NoError(t, err)
	assert.Equal(t, batman.ID, user.ID)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "batman", "robin"},
		{"unknown user", "joker", "alfred"},
		{"user without password", "oidc-only", ""},
		{"empty password", "batman", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := v.Validate(ctx, tt.username, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Nil(t, user)
		})
	}
}

func TestCredentialValidator_StoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	v := NewCredentialValidator(&mockUserStore{err: boom})

	_, err := v.Validate(context.Background(), "batman", "alfred")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func strPtr(s string) *string { return &s }
