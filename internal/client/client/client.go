package client

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// Client is the GophTasks API as the CLI sees it. Calls that need a session
// use the token set with SetToken.
type Client interface {
	SetToken(token string)
	Ping(ctx context.Context) error

	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, name, email, password string) (*models.User, error)
	SignOut(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	CheckEmail(ctx context.Context, email string) (bool, error)

	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, title, description string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	ToggleTask(ctx context.Context, id string) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}
