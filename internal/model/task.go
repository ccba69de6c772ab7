package model

import (
	"errors"
	"fmt"
	"time"
)

// TaskStatus is the lifecycle state of a task. Only the three declared values are valid.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

var ErrUnknownTaskStatus = errors.New("unknown task status")

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus rejects anything that is not an exact status value; it never coerces.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTaskStatus, raw)
	}
	return status, nil
}

type Task struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"type:text;not null"`
	Status      TaskStatus `gorm:"size:20;not null;default:pending;index"`
	Priority    int        `gorm:"not null"`
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	UserID      uint `gorm:"not null;index"`
}

// TaskResponse is the public JSON shape of a task.
type TaskResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UserID      uint    `json:"user_id"`
}

// TimeLayout is the ISO-8601 form used for every timestamp the API emits.
const TimeLayout = time.RFC3339

func (t *Task) ToResponse() TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt.UTC().Format(TimeLayout),
		UserID:      t.UserID,
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Format(TimeLayout)
		resp.DueDate = &due
	}
	return resp
}

func ToResponses(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].ToResponse())
	}
	return out
}
