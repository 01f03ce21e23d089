package iam

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/taskapi/internal/auth"
)

type stubVerifier struct {
	token *auth.VerifiedToken
	err   error
	calls int
}

func (s *stubVerifier) Verify(context.Context, string) (*auth.VerifiedToken, error) {
	s.calls++
	return s.token, s.err
}

func basicHeader(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func newTestChecker(t *testing.T, verifier auth.TokenVerifier) (*Checker, *mockUserStore) {
	t.Helper()
	store := &mockUserStore{}
	store.add(localUser(t, "batman", "alfred"))
	return NewChecker(CheckerDependencies{
		Validator: NewCredentialValidator(store),
		Verifier:  verifier,
		Logger:    zerolog.Nop(),
	}), store
}

func TestChecker_Basic(t *testing.T) {
	checker, _ := newTestChecker(t, nil)
	ctx := context.Background()

	p, ok := checker.Check(ctx, basicHeader("batman", "alfred"))
	require.True(t, ok)
	require.NotNil(t, p)
	assert.Equal(t, auth.MethodBasic, p.Method)
	assert.Equal(t, "batman", p.Username)
	assert.NotEmpty(t, p.LocalUserID)
	require.NotNil(t, p.User)
	assert.Equal(t, p.LocalUserID, p.User.ID)

	p, ok = checker.Check(ctx, basicHeader("batman", "robin"))
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestChecker_DeniesWithoutCredentials(t *testing.T) {
	verifier := &stubVerifier{token: &auth.VerifiedToken{Subject: "auth0|1"}}
	checker, _ := newTestChecker(t, verifier)

	for _, header := range []string{"", "Digest abc", "Bearer", "Basic !!!", "Bearer a b"} {
		t.Run(fmt.Sprintf("%q", header), func(t *testing.T) {
			p, ok := checker.Check(context.Background(), header)
			assert.False(t, ok)
			assert.Nil(t, p)
		})
	}
	assert.Zero(t, verifier.calls)
}

func TestChecker_Bearer(t *testing.T) {
	verifier := &stubVerifier{token: &auth.VerifiedToken{
		Subject:  "auth0|5f1c",
		Nickname: "bruce",
		Email:    "bruce.wayne@wayne-enterprises.com",
	}}
	checker, store := newTestChecker(t, verifier)

	p, ok := checker.Check(context.Background(), "Bearer abc.def.ghi")
	require.True(t, ok)
	assert.Equal(t, auth.MethodBearer, p.Method)
	assert.Equal(t, "auth0|5f1c", p.ExternalSubject)
	assert.Equal(t, "bruce", p.Username)
	assert.Empty(t, p.LocalUserID)
	assert.Nil(t, p.User)
	assert.Equal(t, 1, verifier.calls)

	// Admission never provisions users.
	assert.Equal(t, 1, store.count())
}

func TestChecker_BearerRejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid token", fmt.Errorf("%w: token is expired", auth.ErrInvalidToken)},
		{"key outage", fmt.Errorf("%w: %w: quota exhausted", auth.ErrInvalidToken, auth.ErrKeyResolution)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, _ := newTestChecker(t, &stubVerifier{err: tt.err})
			p, ok := checker.Check(context.Background(), "Bearer x")
			assert.False(t, ok)
			assert.Nil(t, p)
		})
	}
}

func TestChecker_BearerDisabled(t *testing.T) {
	checker, _ := newTestChecker(t, nil)
	p, ok := checker.Check(context.Background(), "Bearer anything")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestChecker_StoreFailureDenies(t *testing.T) {
	checker := NewChecker(CheckerDependencies{
		Validator: NewCredentialValidator(&mockUserStore{err: errors.New("db down")}),
		Logger:    zerolog.Nop(),
	})
	p, ok := checker.Check(context.Background(), basicHeader("batman", "alfred"))
	assert.False(t, ok)
	assert.Nil(t, p)
}
