package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/terraconstructs/taskapi/internal/db/models"
	"github.com/uptrace/bun"
)

// BunTaskRepository implements TaskRepository using Bun ORM
type BunTaskRepository struct {
	db bun.IDB
}

// NewBunTaskRepository creates a new Bun-based task repository
func NewBunTaskRepository(db bun.IDB) *BunTaskRepository {
	return &BunTaskRepository{db: db}
}

// Create inserts a new task
func (r *BunTaskRepository) Create(ctx context.Context, task *models.Task) error {
	_, err := r.db.NewInsert().
		Model(task).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetByID retrieves a task by its ID
func (r *BunTaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	task := new(models.Task)
	err := r.db.NewSelect().
		Model(task).
		Where("t.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get task by ID: %w", err)
	}
	return task, nil
}

// Update writes title and completion state. Ownership is not reassignable.
func (r *BunTaskRepository) Update(ctx context.Context, task *models.Task) error {
	result, err := r.db.NewUpdate().
		Model(task).
		Column("title", "is_completed", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}

	return nil
}

// ListByUserID returns the tasks owned by a user, oldest first.
func (r *BunTaskRepository) ListByUserID(ctx context.Context, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.NewSelect().
		Model(&tasks).
		Where("t.user_id = ?", userID).
		OrderExpr("t.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks for user: %w", err)
	}
	return tasks, nil
}
