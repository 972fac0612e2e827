// Package tasks stores user tasks in PostgreSQL. Every query is scoped by
// owner, so a task belonging to someone else behaves exactly like a missing
// one.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	Toggle(ctx context.Context, userID, id string) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}
