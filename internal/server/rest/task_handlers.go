package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type TaskAPI interface {
	List(ctx context.Context, userID string) ([]models.Task, error)
	Create(ctx context.Context, userID, title, description string) (*models.Task, error)
	Update(ctx context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error)
	Toggle(ctx context.Context, userID, id string) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

var _ TaskAPI = (*services.TaskService)(nil)

// TaskHandler serves /api/tasks. Every route sits behind RequireAuth.
type TaskHandler struct {
	svc TaskAPI
}

func NewTaskHandler(svc TaskAPI) *TaskHandler {
	return &TaskHandler{svc: svc}
}

func currentUser(r *http.Request) (string, error) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		return "", ErrUnauthorized(common.ErrInvalidToken)
	}
	return id, nil
}

func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	tasks, err := h.svc.List(r.Context(), userID)
	if err != nil {
		return err
	}
	setNoCache(w)
	RespondWithJSON(w, http.StatusOK, tasks)
	return nil
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	task, err := h.svc.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		return err
	}
	RespondWithJSON(w, http.StatusCreated, task)
	return nil
}

func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		return err
	}
	task, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		return err
	}
	RespondWithJSON(w, http.StatusOK, task)
	return nil
}

func (h *TaskHandler) HandleToggle(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	task, err := h.svc.Toggle(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	RespondWithJSON(w, http.StatusOK, task)
	return nil
}

func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) error {
	userID, err := currentUser(r)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		return err
	}
	RespondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
	return nil
}
