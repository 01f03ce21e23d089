// Package seed fills a database with demo users and tasks.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/terraconstructs/taskapi/internal/auth"
	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/terraconstructs/taskapi/internal/repository"
)

// Bruce's well-known login.
const (
	BruceUsername = "batman"
	BrucePassword = "alfred"
	BruceEmail    = "bruce.wayne@wayne-enterprises.com"
)

// Seeder writes demo data inside one transaction per call.
type Seeder struct {
	db         *bun.DB
	rng        *rand.Rand
	bcryptCost int
	logger     zerolog.Logger
}

// New creates a Seeder. The random source makes generated names reproducible.
func New(db *bun.DB, seed uint64, logger zerolog.Logger) *Seeder {
	return &Seeder{
		db:         db,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		bcryptCost: auth.DefaultPasswordCost,
		logger:     logger,
	}
}

// WithBcryptCost overrides the password hashing cost.
func (s *Seeder) WithBcryptCost(cost int) *Seeder {
	s.bcryptCost = cost
	return s
}

// CreateBruce stores Bruce Wayne (batman/alfred) with four tasks.
func (s *Seeder) CreateBruce(ctx context.Context) (*models.User, error) {
	hash, err := auth.HashPassword(BrucePassword, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	bruce := &models.User{
		FirstName:    "Bruce",
		LastName:     "Wayne",
		Username:     BruceUsername,
		Email:        BruceEmail,
		PasswordHash: &hash,
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := repository.NewBunUserRepository(tx)
		tasks := repository.NewBunTaskRepository(tx)

		if _, err := users.GetByUsername(ctx, BruceUsername); err == nil {
			return fmt.Errorf("user %q already exists", BruceUsername)
		}
		if err := users.Create(ctx, bruce); err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			if err := tasks.Create(ctx, s.task(bruce.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed bruce: %w", err)
	}

	s.logger.Info().Str("user_id", bruce.ID).Msg("seeded bruce")
	return bruce, nil
}

// CreateUsers stores n identity provider users, each with one task.
func (s *Seeder) CreateUsers(ctx context.Context, n int) ([]*models.User, error) {
	created := make([]*models.User, 0, n)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		users := repository.NewBunUserRepository(tx)
		tasks := repository.NewBunTaskRepository(tx)

		for i := 0; i < n; i++ {
			u := s.user()
			if err := users.Create(ctx, u); err != nil {
				return err
			}
			task := s.task(u.ID)
			if err := tasks.Create(ctx, task); err != nil {
				return err
			}
			u.Tasks = []*models.Task{task}
			created = append(created, u)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}

	s.logger.Info().Int("count", len(created)).Msg("seeded users")
	return created, nil
}

var (
	firstNames = []string{"Alfred", "Barbara", "Dick", "Harvey", "Jim", "Leslie", "Lucius", "Selina", "Tim", "Vicki"}
	lastNames  = []string{"Pennyworth", "Gordon", "Grayson", "Dent", "Fox", "Kyle", "Drake", "Vale", "Thompkins", "Bullock"}
	words      = []string{"patrol", "repair", "gadget", "cave", "signal", "manor", "report", "train", "inspect", "archive", "dinner", "gala"}
)

func (s *Seeder) user() *models.User {
	first := firstNames[s.rng.IntN(len(firstNames))]
	last := lastNames[s.rng.IntN(len(lastNames))]
	username := fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), s.rng.IntN(10000))
	subject := "auth0|" + username

	return &models.User{
		FirstName: first,
		LastName:  last,
		Username:  username,
		Email:     username + "@example.com",
		Subject:   &subject,
	}
}

func (s *Seeder) task(userID string) *models.Task {
	n := 1 + s.rng.IntN(5)
	title := make([]string, n)
	for i := range title {
		title[i] = words[s.rng.IntN(len(words))]
	}
	return &models.Task{
		Title:       strings.Join(title, " "),
		IsCompleted: s.rng.IntN(2) == 1,
		UserID:      userID,
	}
}
