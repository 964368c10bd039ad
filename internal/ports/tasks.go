package ports

import (
	"context"

	"github.com/aduanatrack/core/internal/domain/entities"
)

// CreateTaskRequest carries the fields of a new task. None of the fields
// is validated at the store level: absent fields pass through as zero
// values, matching the tracker's permissive historical behavior.
type CreateTaskRequest struct {
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	CustomsLocation string              `json:"customsLocation"`
	Status          entities.TaskStatus `json:"status"`
	StartDate       string              `json:"startDate"`
	DueDate         string              `json:"dueDate"`
	AssignedTo      string              `json:"assignedTo"`
	Cost            *float64            `json:"cost"`
}

// UpdateTaskRequest carries a partial update. Nil fields are left
// untouched; present fields replace the existing value (shallow merge).
type UpdateTaskRequest struct {
	Title           *string              `json:"title"`
	Description     *string              `json:"description"`
	CustomsLocation *string              `json:"customsLocation"`
	Status          *entities.TaskStatus `json:"status"`
	StartDate       *string              `json:"startDate"`
	DueDate         *string              `json:"dueDate"`
	AssignedTo      *string              `json:"assignedTo"`
	Cost            *float64             `json:"cost"`
}

// AdviceProvider is the external generative-text collaborator. It is
// optional: callers must treat any failure as "no advice available" and
// never let it affect task data.
type AdviceProvider interface {
	GetMaintenanceAdvice(ctx context.Context, description string) (*entities.MaintenanceAdvice, error)
}
