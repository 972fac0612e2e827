package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	token    string
	password string
	tasks    []models.Task
	taskErr  error
	pingErr  error

	passwordPrompts int
}

func (f *fakeAPI) SetToken(token string)         { f.token = token }
func (f *fakeAPI) Ping(context.Context) error    { return f.pingErr }
func (f *fakeAPI) SignOut(context.Context) error { return nil }

func (f *fakeAPI) CheckEmail(_ context.Context, email string) (bool, error) {
	return email == "ana@x.com", nil
}

func (f *fakeAPI) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	if email != "ana@x.com" || password != f.password {
		return nil, &client.APIError{Status: 401, Message: "invalid email or password"}
	}
	return &models.Session{User: models.User{ID: "u-1", Name: "Ana", Email: email}, Token: "tok"}, nil
}

func (f *fakeAPI) SignUp(_ context.Context, name, email, _ string) (*models.User, error) {
	return &models.User{ID: "u-2", Name: name, Email: email}, nil
}

func (f *fakeAPI) Me(context.Context) (*models.User, error) {
	if f.token != "tok" {
		return nil, client.ErrUnauthorized
	}
	return &models.User{ID: "u-1", Name: "Ana", Email: "ana@x.com"}, nil
}

func (f *fakeAPI) ListTasks(context.Context) ([]models.Task, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, title, description string) (*models.Task, error) {
	t := models.Task{ID: "t-" + title, Title: title, Description: description}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if patch.Title != nil {
				f.tasks[i].Title = *patch.Title
			}
			return &f.tasks[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAPI) ToggleTask(_ context.Context, id string) (*models.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = !f.tasks[i].Completed
			return &f.tasks[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.tasks = removeTask(f.tasks, id)
	return nil
}

type appFixture struct {
	app   *App
	api   *fakeAPI
	store *metadata.SQLiteRepository
	out   *bytes.Buffer
}

// newAppFixture builds an App reading input and answering password prompts
// with password.
func newAppFixture(t *testing.T, input, password string) *appFixture {
	t.Helper()

	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	api := &fakeAPI{password: "secret1"}

	origPassword := getPassword
	getPassword = func(io.Writer) ([]byte, error) {
		api.passwordPrompts++
		return []byte(password), nil
	}
	t.Cleanup(func() { getPassword = origPassword })

	store := metadata.NewSQLiteRepository(db)
	out := &bytes.Buffer{}
	app := newApp(api, store, logging.Discard(), bufio.NewReader(strings.NewReader(input)), out)
	t.Cleanup(app.Close)

	return &appFixture{app: app, api: api, store: store, out: out}
}

func TestApp_AnonymousProtectedPageRedirectsThenContinues(t *testing.T) {
	f := newAppFixture(t, "ana@x.com\n", "secret1")
	ctx := context.Background()

	_, err := f.app.auth.Resolve(ctx)
	require.NoError(t, err)

	require.NoError(t, f.app.List(ctx))
	assert.Equal(t, "/signin", f.app.page)
	assert.Equal(t, "/tasks", f.app.callback)

	require.NoError(t, f.app.SignIn(ctx))
	assert.Equal(t, "/tasks", f.app.page, "sign-in continues to the requested page")
	assert.Empty(t, f.app.callback)
	assert.Contains(t, f.out.String(), "Signed in as ana@x.com")

	tok, err := f.store.Get(ctx, metadata.KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)
}

func TestApp_SignInFailureIsUniform(t *testing.T) {
	f := newAppFixture(t, "ana@x.com\n", "wrong-password")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)

	assert.Error(t, f.app.SignIn(ctx))
	assert.Contains(t, f.out.String(), "Invalid email or password")
	assert.False(t, f.app.isLoggedIn())
}

func TestApp_SignedInUserOnSignInPageGoesToDashboard(t *testing.T) {
	f := newAppFixture(t, "ana@x.com\n", "secret1")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)
	require.NoError(t, f.app.SignIn(ctx))

	require.NoError(t, f.app.Go(ctx, []string{"signin"}))
	assert.Equal(t, "/dashboard", f.app.page)
	assert.Contains(t, f.out.String(), "Hello, Ana")
}

func TestApp_TaskCommands(t *testing.T) {
	f := newAppFixture(t, "ana@x.com\n", "secret1")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)
	require.NoError(t, f.app.SignIn(ctx))

	require.NoError(t, f.app.Add(ctx, []string{"buy", "milk"}))
	require.NoError(t, f.app.Add(ctx, []string{"walk"}))
	assert.Len(t, f.app.listed, 2)

	require.NoError(t, f.app.Toggle(ctx, []string{"1"}))
	assert.True(t, f.api.tasks[0].Completed)

	require.NoError(t, f.app.Rename(ctx, []string{"2", "walk", "the", "dog"}))
	assert.Equal(t, "walk the dog", f.api.tasks[1].Title)

	require.NoError(t, f.app.Delete(ctx, []string{"1"}))
	assert.Len(t, f.api.tasks, 1)

	f.out.Reset()
	require.NoError(t, f.app.Toggle(ctx, []string{"7"}))
	assert.Contains(t, f.out.String(), "No task #7")
}

func TestApp_RejectedSessionReturnsToSignIn(t *testing.T) {
	f := newAppFixture(t, "ana@x.com\n", "secret1")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)
	require.NoError(t, f.app.SignIn(ctx))
	require.NoError(t, f.app.List(ctx))

	f.api.taskErr = client.ErrUnauthorized
	assert.Error(t, f.app.List(ctx))

	assert.False(t, f.app.isLoggedIn())
	assert.Equal(t, "/signin", f.app.page)
	assert.Equal(t, "/tasks", f.app.callback)
	assert.Contains(t, f.out.String(), "please sign in again")
}

func TestApp_SignOutTwice(t *testing.T) {
	f := newAppFixture(t, "ana@x.com\n", "secret1")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)
	require.NoError(t, f.app.SignIn(ctx))

	require.NoError(t, f.app.SignOut(ctx))
	require.NoError(t, f.app.SignOut(ctx))
	assert.False(t, f.app.isLoggedIn())
	assert.Equal(t, "/signin", f.app.page)
}

func TestApp_ResolveRestoresSession(t *testing.T) {
	f := newAppFixture(t, "", "")
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, metadata.KeyAuthToken, "tok"))

	_, err := f.app.auth.Resolve(ctx)
	require.NoError(t, err)
	require.NoError(t, f.app.Go(ctx, []string{"/profile"}))

	assert.Equal(t, "/profile", f.app.page)
	assert.Contains(t, f.out.String(), "ana@x.com")
}

func TestApp_SignUpValidation(t *testing.T) {
	f := newAppFixture(t, "Bob\nnot-an-email\n", "123")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)

	assert.Error(t, f.app.SignUp(ctx))
	out := f.out.String()
	assert.Contains(t, out, "email: invalid email")
	assert.Contains(t, out, "password:")
}

func TestApp_RunUntilExit(t *testing.T) {
	f := newAppFixture(t, "go tasks\nexit\n", "")

	f.app.Run(context.Background())

	assert.Equal(t, "/signin", f.app.page)
	assert.Equal(t, ModeOnline, f.app.Mode)
	out := f.out.String()
	assert.Contains(t, out, "Welcome to GophTasks CLI")
	assert.Contains(t, out, "Bye!")
}

func TestApp_RunSharesInputWithPrompts(t *testing.T) {
	f := newAppFixture(t, "signin\nana@x.com\nadd\nbuy milk\nfrom the corner shop\n\nexit\n", "secret1")

	f.app.Run(context.Background())

	assert.True(t, f.app.isLoggedIn())
	require.Len(t, f.api.tasks, 1)
	assert.Equal(t, "buy milk", f.api.tasks[0].Title)
	assert.Equal(t, "from the corner shop", f.api.tasks[0].Description)
	assert.Contains(t, f.out.String(), "Bye!")
}

func TestApp_RunOfflineServer(t *testing.T) {
	f := newAppFixture(t, "exit\n", "")
	f.api.pingErr = client.ErrUnavailable

	f.app.Run(context.Background())

	assert.Equal(t, ModeOffline, f.app.Mode)
	assert.Contains(t, f.out.String(), "offline")
}

func TestApp_SignUpTakenEmailSkipsPassword(t *testing.T) {
	f := newAppFixture(t, "Ana\nANA@x.com\n", "secret1")
	ctx := context.Background()
	_, _ = f.app.auth.Resolve(ctx)

	assert.ErrorIs(t, f.app.SignUp(ctx), common.ErrConflict)
	assert.Contains(t, f.out.String(), "Email already registered")
	assert.Zero(t, f.api.passwordPrompts)
}
