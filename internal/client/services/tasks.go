package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// Invalidator is told when the server rejects the session.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// TaskService calls the task endpoints. A 401 from any of them ends the
// session through the Invalidator.
type TaskService struct {
	client client.Client
	auth   Invalidator
}

func NewTaskService(c client.Client, auth Invalidator) *TaskService {
	return &TaskService{client: c, auth: auth}
}

func (s *TaskService) List(ctx context.Context) ([]models.Task, error) {
	out, err := s.client.ListTasks(ctx)
	return out, s.check(ctx, err)
}

func (s *TaskService) Create(ctx context.Context, title, description string) (*models.Task, error) {
	if err := common.ValidateTaskTitle(title); err != nil {
		return nil, err
	}
	out, err := s.client.CreateTask(ctx, strings.TrimSpace(title), strings.TrimSpace(description))
	return out, s.check(ctx, err)
}

func (s *TaskService) Rename(ctx context.Context, id, title string) (*models.Task, error) {
	if err := common.ValidateTaskTitle(title); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	out, err := s.client.UpdateTask(ctx, id, models.TaskPatch{Title: &title})
	return out, s.check(ctx, err)
}

func (s *TaskService) Describe(ctx context.Context, id, description string) (*models.Task, error) {
	description = strings.TrimSpace(description)
	out, err := s.client.UpdateTask(ctx, id, models.TaskPatch{Description: &description})
	return out, s.check(ctx, err)
}

func (s *TaskService) Toggle(ctx context.Context, id string) (*models.Task, error) {
	out, err := s.client.ToggleTask(ctx, id)
	return out, s.check(ctx, err)
}

func (s *TaskService) Delete(ctx context.Context, id string) error {
	return s.check(ctx, s.client.DeleteTask(ctx, id))
}

func (s *TaskService) check(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, client.ErrUnauthorized) {
		s.auth.Invalidate(ctx)
	}
	return err
}
