package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/model"
	"taskmanager/internal/repository"
)

const defaultPriority = 1

type TaskService struct {
	taskRepo *repository.TaskRepository
}

type CreateTaskInput struct {
	Title       string
	Description string
	Priority    *int
	// DueDate is an ISO-8601 string; empty means no due date.
	DueDate string
}

// UpdateTaskInput carries only the fields the caller supplied.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *int
	Status      *string

	// DueDate applies only when SetDueDate is true. A nil or empty value clears it.
	SetDueDate bool
	DueDate    *string
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// List returns the user's tasks. An empty status lists all of them.
func (s *TaskService) List(ctx context.Context, userID uint, status string) ([]model.Task, error) {
	var filter *model.TaskStatus
	if status != "" {
		parsed, err := model.ParseTaskStatus(status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		filter = &parsed
	}
	return s.taskRepo.ListByUserID(ctx, userID, filter)
}

func (s *TaskService) Get(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.GetByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, userID uint, input CreateTaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	dueDate, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	priority := defaultPriority
	if input.Priority != nil {
		priority = *input.Priority
	}

	task := &model.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      model.TaskStatusPending,
		Priority:    priority,
		DueDate:     dueDate,
		UserID:      userID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update validates every supplied field before touching the stored row.
func (s *TaskService) Update(ctx context.Context, userID, taskID uint, input UpdateTaskInput) (*model.Task, error) {
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
	}

	var status model.TaskStatus
	if input.Status != nil {
		parsed, err := model.ParseTaskStatus(*input.Status)
		if err != nil {
			return nil, ErrInvalidStatus
		}
		status = parsed
	}

	var dueDate *time.Time
	if input.SetDueDate && input.DueDate != nil {
		parsed, err := parseDueDate(*input.DueDate)
		if err != nil {
			return nil, err
		}
		dueDate = parsed
	}

	task, err := s.taskRepo.UpdateByIDAndUserID(ctx, taskID, userID, func(t *model.Task) {
		if input.Title != nil {
			t.Title = *input.Title
		}
		if input.Description != nil {
			t.Description = *input.Description
		}
		if input.Priority != nil {
			t.Priority = *input.Priority
		}
		if input.Status != nil {
			t.Status = status
		}
		if input.SetDueDate {
			t.DueDate = dueDate
		}
	})
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID uint) error {
	deleted, err := s.taskRepo.DeleteByIDAndUserID(ctx, taskID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}

func parseDueDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseISOTime(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDueDate, raw)
	}
	return &t, nil
}
