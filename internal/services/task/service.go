package task

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

// ErrTaskNotFound is returned when the task id matches nothing.
var ErrTaskNotFound = errors.New("task not found")

// NewTask is the input for Create.
type NewTask struct {
	Title string
}

// Changes is the input for Update. Nil fields are left as they are.
type Changes struct {
	Title       *string
	IsCompleted *bool
}

// Service creates, lists and updates tasks on behalf of the current user.
type Service struct {
	repo   repository.TaskRepository
	logger zerolog.Logger
}

// NewService constructs a new Service instance.
func NewService(repo repository.TaskRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListByUser returns all tasks owned by userID.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Task, error) {
	s.logger.Info().Str("user_id", userID).Msg("list tasks of user")

	tasks, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Create stores a new, incomplete task owned by currentUser.
func (s *Service) Create(ctx context.Context, in NewTask, currentUser *models.User) (*models.Task, error) {
	if currentUser == nil || currentUser.ID == "" {
		return nil, errors.New("create task: no current user")
	}

	ctx, span := telemetry.StartSpan(ctx, "taskapi/services/task", "task.Create",
		attribute.String(telemetry.AttrTaskOwner, currentUser.ID),
	)
	defer span.End()

	task := &models.Task{
		Title:       in.Title,
		IsCompleted: false,
		UserID:      currentUser.ID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Str("task_id", task.ID).Str("user_id", currentUser.ID).Msg("task created")
	return task, nil
}

// Update applies changes to a task owned by currentUser. Any other caller
// gets an *auth.NotAllowedError and the task is left untouched.
func (s *Service) Update(ctx context.Context, taskID string, changes Changes, currentUser *models.User) (*models.Task, error) {
	ctx, span := telemetry.StartSpan(ctx, "taskapi/services/task", "task.Update",
		attribute.String(telemetry.AttrTaskID, taskID),
	)
	defer span.End()

	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("load task: %w", err)
	}
	span.SetAttributes(attribute.String(telemetry.AttrTaskOwner, task.UserID))

	principalID := ""
	if currentUser != nil {
		principalID = currentUser.ID
	}
	if err := auth.CheckOwnership(task.UserID, principalID); err != nil {
		telemetry.AddEvent(span, "ownership.denied", attribute.String(telemetry.AttrPrincipalID, principalID))
		s.logger.Warn().Str("task_id", taskID).Str("user_id", principalID).Msg("task update denied")
		return nil, err
	}

	if changes.Title != nil {
		task.Title = *changes.Title
	}
	if changes.IsCompleted != nil {
		task.IsCompleted = *changes.IsCompleted
	}

	if err := s.repo.Update(ctx, task); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info().Str("task_id", taskID).Str("user_id", principalID).Msg("task updated")
	return task, nil
}
