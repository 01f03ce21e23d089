package auth

import (
	"context"

	"github.com/terraconstructs/taskapi/internal/db/models"
)

// Method records which flow authenticated a principal.
type Method string

const (
	MethodBasic  Method = "basic"
	MethodBearer Method = "bearer"
)

// Principal is the authenticated identity of one request.
type Principal struct {
	// LocalUserID is the users.id row, known immediately for Basic and after
	// resolution for Bearer.
	LocalUserID string
	// ExternalSubject is the identity provider "sub" (Bearer only).
	ExternalSubject string
	Username        string
	Email           string
	Method          Method
	// User is set when the Basic flow already loaded the row.
	User *models.User
	// Token holds the verified claims (Bearer only).
	Token *VerifiedToken
}

type principalContextKey struct{}

// SetPrincipal stores the principal on the context for downstream consumers.
func SetPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext retrieves the principal stored by SetPrincipal.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*Principal)
	return p, ok && p != nil
}

type currentUserContextKey struct{}

// SetCurrentUser stores the resolved local user for the request.
func SetCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, currentUserContextKey{}, user)
}

// CurrentUser returns the user stored by SetCurrentUser.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(currentUserContextKey{}).(*models.User)
	return u, ok && u != nil
}
