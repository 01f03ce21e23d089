package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/taskapi/internal/db/models"
)

func TestBunUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewBunUserRepository(setupTestDB(t))

	user := &models.User{
		FirstName:    "Bruce",
		LastName:     "Wayne",
		Username:     "batman",
		Email:        "bruce.wayne@wayne-enterprises.com",
		PasswordHash: strPtr("$2a$10$hash"),
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "batman", byID.Username)
	assert.Equal(t, "Wayne", byID.LastName)

	byName, err := repo.GetByUsername(ctx, "batman")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_GetByUsernameSkipsUsersWithoutPassword(t *testing.T) {
	ctx := context.Background()
	repo := NewBunUserRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{
		Subject:  strPtr("auth0|1"),
		Username: "robin",
		Email:    "robin@example.com",
	}))

	_, err := repo.GetByUsername(ctx, "robin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_SubjectIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewBunUserRepository(setupTestDB(t))

	first := &models.User{Subject: strPtr("auth0|42"), Username: "alfred", Email: "alfred@example.com"}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.User{Subject: strPtr("auth0|42"), Username: "alfred2", Email: "alfred2@example.com"}
	err := repo.Create(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err := repo.GetBySubject(ctx, "auth0|42")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestBunUserRepository_LocalUsersMayShareNullSubject(t *testing.T) {
	ctx := context.Background()
	repo := NewBunUserRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &models.User{Username: "a", Email: "a@example.com"}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "b", Email: "b@example.com"}))

	_, err := repo.GetBySubject(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBunUserRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewBunUserRepository(db)
	tasks := NewBunTaskRepository(db)

	user := &models.User{Subject: strPtr("auth0|7"), Username: "selina", Email: "selina@example.com"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, tasks.Create(ctx, &models.Task{Title: "steal", UserID: user.ID}))

	user.Email = "catwoman@example.com"
	user.Subject = strPtr("auth0|other")
	require.NoError(t, repo.Update(ctx, user))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "catwoman@example.com", reloaded.Email)
	assert.Equal(t, "auth0|7", reloaded.ExternalSubject(), "subject must not be rewritten")

	require.NoError(t, repo.Delete(ctx, user.ID))
	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	owned, err := tasks.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, owned, "tasks cascade with their owner")

	assert.ErrorIs(t, repo.Delete(ctx, user.ID), ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.User{ID: "missing"}), ErrNotFound)
}
