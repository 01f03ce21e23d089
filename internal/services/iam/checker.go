package iam

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/telemetry"
)

// BasicValidator validates Basic credentials.
type BasicValidator interface {
	Validate(ctx context.Context, username, password string) (*models.User, error)
}

// CheckerDependencies wires a Checker.
type CheckerDependencies struct {
	// Validator handles Basic credentials.
	Validator BasicValidator

	// Verifier handles Bearer tokens: auth.JWTVerifier in normal operation,
	// auth.TrustingVerifier in test mode. Nil denies every bearer token.
	Verifier auth.TokenVerifier

	Logger zerolog.Logger
}

// Checker is the per-request admit/deny gate.
type Checker struct {
	validator BasicValidator
	verifier  auth.TokenVerifier
	logger    zerolog.Logger
}

// NewChecker creates a Checker.
func NewChecker(deps CheckerDependencies) *Checker {
	return &Checker{
		validator: deps.Validator,
		verifier:  deps.Verifier,
		logger:    deps.Logger,
	}
}

// Check inspects a raw Authorization header value. It returns the principal
// and true on admission; on denial it returns nil and false and logs why.
func (c *Checker) Check(ctx context.Context, header string) (*auth.Principal, bool) {
	creds := auth.ExtractCredentials(header)

	ctx, span := telemetry.StartSpan(ctx, "taskapi/services/iam", "iam.Check",
		attribute.String(telemetry.AttrAuthScheme, creds.Scheme()),
	)
	defer span.End()

	switch cr := creds.(type) {
	case auth.BasicCredentials:
		return c.checkBasic(ctx, span, cr)
	case auth.BearerToken:
		return c.checkBearer(ctx, span, cr)
	default:
		return c.deny(span, creds.Scheme(), "no credentials", nil)
	}
}

func (c *Checker) checkBasic(ctx context.Context, span trace.Span, cr auth.BasicCredentials) (*auth.Principal, bool) {
	if c.validator == nil {
		return c.deny(span, cr.Scheme(), "basic authentication is not configured", nil)
	}

	user, err := c.validator.Validate(ctx, cr.Username, cr.Password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			c.logger.Error().Err(err).Str("username", cr.Username).Msg("credential lookup failed")
		}
		return c.deny(span, cr.Scheme(), "invalid credentials", err)
	}

	return c.admit(span, &auth.Principal{
		LocalUserID: user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Method:      auth.MethodBasic,
		User:        user,
	})
}

func (c *Checker) checkBearer(ctx context.Context, span trace.Span, cr auth.BearerToken) (*auth.Principal, bool) {
	if c.verifier == nil {
		return c.deny(span, cr.Scheme(), "bearer authentication is not configured", nil)
	}

	token, err := c.verifier.Verify(ctx, cr.Token)
	if err != nil {
		if errors.Is(err, auth.ErrKeyResolution) {
			c.logger.Error().Err(err).Msg("signing key unavailable")
		}
		return c.deny(span, cr.Scheme(), "invalid token", err)
	}

	return c.admit(span, &auth.Principal{
		ExternalSubject: token.Subject,
		Username:        token.Nickname,
		Email:           token.Email,
		Method:          auth.MethodBearer,
		Token:           token,
	})
}

func (c *Checker) admit(span trace.Span, p *auth.Principal) (*auth.Principal, bool) {
	span.SetAttributes(
		attribute.String(telemetry.AttrAuthMethod, string(p.Method)),
		attribute.Bool(telemetry.AttrAuthAdmitted, true),
	)

	c.logger.Info().
		Str("method", string(p.Method)).
		Str("user_id", p.LocalUserID).
		Str("subject", p.ExternalSubject).
		Msg("request admitted")

	return p, true
}

func (c *Checker) deny(span trace.Span, scheme, reason string, err error) (*auth.Principal, bool) {
	span.SetAttributes(attribute.Bool(telemetry.AttrAuthAdmitted, false))
	telemetry.AddEvent(span, "authentication.denied", attribute.String("reason", reason))

	ev := c.logger.Warn().Str("scheme", scheme).Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("request denied")

	return nil, false
}
