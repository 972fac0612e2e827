package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory stand-in for the GophTasks API.
type fakeClient struct {
	users      map[string]string // email -> password
	tokens     map[string]models.User
	token      string
	tasks      []models.Task
	signInErr  error
	signOutErr error
	taskErr    error
	pingErr    error

	signOuts int
	signUps  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		users:  map[string]string{"ana@x.com": "secret1"},
		tokens: map[string]models.User{},
	}
}

func (f *fakeClient) SetToken(token string)      { f.token = token }
func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) SignOut(context.Context) error {
	f.signOuts++
	return f.signOutErr
}

func (f *fakeClient) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	if pw, ok := f.users[email]; !ok || pw != password {
		return nil, &client.APIError{Status: 401, Message: "invalid email or password"}
	}
	u := models.User{ID: "u-1", Name: "Ana", Email: email}
	tok := "tok-" + email
	f.tokens[tok] = u
	return &models.Session{User: u, Token: tok}, nil
}

func (f *fakeClient) SignUp(_ context.Context, name, email, password string) (*models.User, error) {
	f.signUps++
	f.users[email] = password
	return &models.User{ID: "u-2", Name: name, Email: email}, nil
}

func (f *fakeClient) Me(context.Context) (*models.User, error) {
	u, ok := f.tokens[f.token]
	if !ok {
		return nil, client.ErrUnauthorized
	}
	return &u, nil
}

func (f *fakeClient) CheckEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.users[email]
	return ok, nil
}

func (f *fakeClient) ListTasks(context.Context) ([]models.Task, error) {
	return f.tasks, f.taskErr
}

func (f *fakeClient) CreateTask(_ context.Context, title, description string) (*models.Task, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	t := models.Task{ID: "t-1", Title: title, Description: description}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeClient) UpdateTask(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	t := models.Task{ID: id}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	return &t, nil
}

func (f *fakeClient) ToggleTask(_ context.Context, id string) (*models.Task, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	return &models.Task{ID: id, Completed: true}, nil
}

func (f *fakeClient) DeleteTask(context.Context, string) error {
	return f.taskErr
}

var _ client.Client = (*fakeClient)(nil)

func newStore(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return metadata.NewSQLiteRepository(db)
}
