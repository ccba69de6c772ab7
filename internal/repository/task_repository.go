package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskmanager/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(task).Error
	})
	if err != nil {
		return fmt.Errorf("create task failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's tasks, highest priority first and newest first within a priority.
// A nil status lists every task.
func (r *TaskRepository) ListByUserID(ctx context.Context, userID uint, status *model.TaskStatus) ([]model.Task, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var tasks []model.Task
	if err := query.Order("priority DESC").Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks failed: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) GetByIDAndUserID(ctx context.Context, taskID, userID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task failed: %w", err)
	}
	return &task, nil
}

// UpdateByIDAndUserID loads the owned task, applies mutate and saves it in one transaction.
// It returns nil without error when no task matches both ids.
func (r *TaskRepository) UpdateByIDAndUserID(ctx context.Context, taskID, userID uint, mutate func(*model.Task)) (*model.Task, error) {
	var task model.Task
	found := true
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}

		mutate(&task)
		task.UpdatedAt = time.Now().UTC()
		return tx.Save(&task).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update task failed: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &task, nil
}

// DeleteByIDAndUserID reports whether an owned task was removed.
func (r *TaskRepository) DeleteByIDAndUserID(ctx context.Context, taskID, userID uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete task failed: %w", err)
	}
	return deleted, nil
}
