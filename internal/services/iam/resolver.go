package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/repository"
	"github.com/terraconstructs/taskapi/internal/telemetry"
)

// SubjectStore finds and creates users keyed by external subject.
type SubjectStore interface {
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// Resolver maps an admitted principal to its local user, provisioning
// identity provider users on first sight.
type Resolver struct {
	users  SubjectStore
	logger zerolog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(users SubjectStore, logger zerolog.Logger) *Resolver {
	return &Resolver{users: users, logger: logger}
}

// Resolve returns the user behind p and records its id on p.
//
// Basic principals already carry their user. Bearer principals are looked up
// by subject and created only when absent; if a concurrent request wins the
// insert, the unique constraint rejects ours and the winner's row is returned.
func (r *Resolver) Resolve(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if p == nil {
		return nil, errors.New("resolve user: nil principal")
	}
	if p.User != nil {
		p.LocalUserID = p.User.ID
		return p.User, nil
	}
	if p.ExternalSubject == "" {
		return nil, errors.New("resolve user: principal has no user and no external subject")
	}

	ctx, span := telemetry.StartSpan(ctx, "taskapi/services/iam", "iam.Resolve",
		attribute.String(telemetry.AttrPrincipalSubject, p.ExternalSubject),
	)
	defer span.End()

	user, err := r.users.GetBySubject(ctx, p.ExternalSubject)
	if err == nil {
		span.SetAttributes(attribute.String(telemetry.AttrUserID, user.ID))
		p.LocalUserID = user.ID
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	user, err = r.provision(ctx, p)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String(telemetry.AttrUserID, user.ID))
	p.LocalUserID = user.ID
	return user, nil
}

func (r *Resolver) provision(ctx context.Context, p *auth.Principal) (*models.User, error) {
	subject := p.ExternalSubject
	username := p.Username
	if username == "" {
		username = subject
	}

	user := &models.User{
		Subject:  &subject,
		Username: username,
		Email:    p.Email,
	}

	if err := r.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("provision user: %w", err)
		}

		existing, lookupErr := r.users.GetBySubject(ctx, subject)
		if lookupErr != nil {
			return nil, fmt.Errorf("provision user: re-read after duplicate: %w", lookupErr)
		}
		r.logger.Info().Str("subject", subject).Str("user_id", existing.ID).Msg("concurrent provisioning resolved")
		return existing, nil
	}

	r.logger.Info().Str("subject", subject).Str("user_id", user.ID).Str("username", username).Msg("provisioned user")
	return user, nil
}
