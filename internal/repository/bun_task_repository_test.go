package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraconstructs/taskapi/internal/db/models"
)

func TestBunTaskRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := NewBunUserRepository(db)
	repo := NewBunTaskRepository(db)

	owner := &models.User{Username: "batman", Email: "bruce@example.com"}
	other := &models.User{Username: "joker", Email: "joker@example.com"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	first := &models.Task{Title: "Save Gotham", UserID: owner.ID}
	second := &models.Task{Title: "Fix the Batmobile", UserID: owner.ID}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.Task{Title: "Laugh", UserID: other.ID}))

	owned, err := repo.ListByUserID(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, first.ID, owned[0].ID)
	assert.False(t, owned[0].IsCompleted)

	first.Title = "Save Gotham again"
	first.IsCompleted = true
	first.UserID = other.ID
	require.NoError(t, repo.Update(ctx, first))

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Save Gotham again", got.Title)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, owner.ID, got.UserID, "owner is not reassignable through Update")

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.Task{ID: "missing"}), ErrNotFound)

	none, err := repo.ListByUserID(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBunTaskRepository_RequiresExistingOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewBunTaskRepository(setupTestDB(t))

	err := repo.Create(ctx, &models.Task{Title: "orphan", UserID: "no-such-user"})
	assert.Error(t, err)
}
