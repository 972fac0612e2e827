package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// TaskService manages tasks on behalf of an authenticated user. userID
// always comes from a verified token, never from the request body.
type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	newID       func() string
}

func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *TaskService {
	return &TaskService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "tasks"),
		newID:       uuid.NewString,
	}
}

func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	out, err := s.repomanager.Tasks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, oops.Code("TASK_LIST_FAILED").With("user_id", userID).Wrap(err)
	}
	return out, nil
}

func (s *TaskService) Create(ctx context.Context, userID, title, description string) (*models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := common.ValidateTaskTitle(title); err != nil {
		return nil, oops.Code("TASK_INVALID").Wrap(err)
	}

	task := &models.Task{
		ID:          s.newID(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	out, err := s.repomanager.Tasks(s.db).Create(ctx, task)
	if err != nil {
		return nil, oops.Code("TASK_CREATE_FAILED").With("user_id", userID).Wrap(err)
	}
	s.log.Info(ctx, "task created", "user_id", userID, "task_id", out.ID)
	return out, nil
}

// Update applies patch to the user's task. An empty patch is a validation
// error.
func (s *TaskService) Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}

	v := &common.ValidationError{}
	if patch.Empty() {
		v.Add("task", "nothing to update")
	}
	if patch.Title != nil {
		var ve *common.ValidationError
		if errors.As(common.ValidateTaskTitle(*patch.Title), &ve) {
			v.Add("title", ve.Fields["title"])
		}
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if patch.Description != nil {
		d := strings.TrimSpace(*patch.Description)
		patch.Description = &d
	}
	if err := v.OrNil(); err != nil {
		return nil, oops.Code("TASK_INVALID").Wrap(err)
	}

	out, err := s.repomanager.Tasks(s.db).Update(ctx, userID, id, patch)
	if err != nil {
		return nil, oops.Code("TASK_UPDATE_FAILED").With("task_id", id).Wrap(err)
	}
	return out, nil
}

func (s *TaskService) Toggle(ctx context.Context, userID, id string) (*models.Task, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	out, err := s.repomanager.Tasks(s.db).Toggle(ctx, userID, id)
	if err != nil {
		return nil, oops.Code("TASK_TOGGLE_FAILED").With("task_id", id).Wrap(err)
	}
	return out, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Tasks(s.db).Delete(ctx, userID, id); err != nil {
		return oops.Code("TASK_DELETE_FAILED").With("task_id", id).Wrap(err)
	}
	s.log.Info(ctx, "task deleted", "user_id", userID, "task_id", id)
	return nil
}

func requireUser(userID string) error {
	if userID == "" {
		return oops.Code("TASK_NO_USER").Wrap(common.ErrInvalidToken)
	}
	return nil
}

// validID rejects ids that could never match a row; the column is a UUID
// and Postgres would fail the cast instead of returning no rows.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
