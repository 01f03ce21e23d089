package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/repository"
)

var (
	// ErrUserNotFound is returned when the user id matches nothing.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when another local user already has the username.
	ErrUsernameTaken = errors.New("username already taken")
)

// NewUser is the input for Create.
type NewUser struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// Changes is the input for Update. Nil fields are left as they are.
type Changes struct {
	FirstName *string
	LastName  *string
	Username  *string
	Email     *string
	Password  *string
}

// Service manages local user accounts.
type Service struct {
	repo       repository.UserRepository
	logger     zerolog.Logger
	bcryptCost int
}

// NewService constructs a new Service instance.
func NewService(repo repository.UserRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, bcryptCost: auth.DefaultPasswordCost}
}

// WithBcryptCost overrides the password hashing cost.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Create stores a local user with a hashed password.
func (s *Service) Create(ctx context.Context, in NewUser) (*models.User, error) {
	if err := s.ensureUsernameFree(ctx, in.Username, ""); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	u := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: &hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

// Update applies changes to a user. The external subject is never changed.
func (s *Service) Update(ctx context.Context, id string, changes Changes) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	username := u.Username
	if changes.Username != nil {
		username = *changes.Username
	}
	// a provisioned user given a password joins the Basic login namespace
	becomesLocal := changes.Password != nil && u.PasswordHash == nil
	if username != u.Username || becomesLocal {
		if err := s.ensureUsernameFree(ctx, username, u.ID); err != nil {
			return nil, err
		}
		u.Username = username
	}
	if changes.FirstName != nil {
		u.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		u.LastName = *changes.LastName
	}
	if changes.Email != nil {
		u.Email = *changes.Email
	}
	if changes.Password != nil {
		hash, err := auth.HashPassword(*changes.Password, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		u.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info().Str("user_id", u.ID).Msg("user updated")
	return u, nil
}

// Delete removes a user and, by cascade, their tasks.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

// ensureUsernameFree fails when a local user other than selfID holds username.
// Basic login looks users up by username, so it must stay unambiguous.
func (s *Service) ensureUsernameFree(ctx context.Context, username, selfID string) error {
	existing, err := s.repo.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check username: %w", err)
	case existing.ID == selfID:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
	}
}
