package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/guard"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/metrics"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	goodToken = "good-token"
	taskID    = "3f1c1c4e-8d3e-4a53-9f0e-3b7a1f2d9c11"
)

var testUser = &models.User{ID: "u-1", Name: "Ana", Email: "ana@x.com", PasswordHash: "hashed"}

// fakeAuth accepts goodToken for testUser and nothing else.
type fakeAuth struct {
	signInErr  error
	signUpErr  error
	currentErr error
	existsErr  error
	exists     bool

	verified []string
}

func (f *fakeAuth) VerifyToken(_ context.Context, token string) (*auth.Payload, error) {
	f.verified = append(f.verified, token)
	if token != goodToken {
		return nil, common.ErrInvalidToken
	}
	return &auth.Payload{UserID: testUser.ID, Email: testUser.Email}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*services.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &services.Session{
		User:  testUser,
		Token: goodToken,
		Payload: &auth.Payload{
			UserID:    testUser.ID,
			Email:     testUser.Email,
			ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}, nil
}

func (f *fakeAuth) SignUp(_ context.Context, name, email, password string) (*models.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &models.User{ID: "u-2", Name: name, Email: strings.ToLower(email), PasswordHash: "hashed"}, nil
}

func (f *fakeAuth) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if _, err := f.VerifyToken(ctx, token); err != nil {
		return nil, err
	}
	if f.currentErr != nil {
		return nil, f.currentErr
	}
	return testUser, nil
}

func (f *fakeAuth) EmailExists(_ context.Context, email string) (bool, error) {
	return f.exists, f.existsErr
}

type fakeTasks struct {
	err error

	gotUserID string
	gotID     string
	gotPatch  models.TaskPatch
}

func (f *fakeTasks) task() *models.Task {
	return &models.Task{ID: taskID, UserID: f.gotUserID, Title: "buy milk"}
}

func (f *fakeTasks) List(_ context.Context, userID string) ([]models.Task, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return []models.Task{*f.task()}, nil
}

func (f *fakeTasks) Create(_ context.Context, userID, title, description string) (*models.Task, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	t := f.task()
	t.Title, t.Description = title, description
	return t, nil
}

func (f *fakeTasks) Update(_ context.Context, userID, id string, patch models.TaskPatch) (*models.Task, error) {
	f.gotUserID, f.gotID, f.gotPatch = userID, id, patch
	if f.err != nil {
		return nil, f.err
	}
	return f.task(), nil
}

func (f *fakeTasks) Toggle(_ context.Context, userID, id string) (*models.Task, error) {
	f.gotUserID, f.gotID = userID, id
	if f.err != nil {
		return nil, f.err
	}
	t := f.task()
	t.Completed = true
	return t, nil
}

func (f *fakeTasks) Delete(_ context.Context, userID, id string) error {
	f.gotUserID, f.gotID = userID, id
	return f.err
}

type routerFixture struct {
	auth    *fakeAuth
	tasks   *fakeTasks
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	handler http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	reg := prometheus.NewRegistry()
	f := &routerFixture{auth: &fakeAuth{}, tasks: &fakeTasks{}, reg: reg, metrics: metrics.New(reg)}
	f.handler = NewRouter(RouterDeps{
		Auth:           f.auth,
		Tasks:          f.tasks,
		Log:            logging.Discard(),
		Metrics:        f.metrics,
		Gatherer:       reg,
		Policy:         guard.DefaultPolicy(),
		Cookies:        CookieSettings{TTL: time.Hour},
		RequestTimeout: 5 * time.Second,
	})
	return f
}

func (f *routerFixture) do(method, target, body string, mods ...func(*http.Request)) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, m := range mods {
		m(req)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withCookie(token string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: common.AuthCookieName, Value: token}) }
}

func findCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.AuthCookieName {
			return c
		}
	}
	return nil
}
