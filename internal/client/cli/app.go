package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/client/services"
	"github.com/dmitrijs2005/gophtasks/internal/guard"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// Mode is the last known reachability of the server.
type Mode string

const (
	ModeUnknown Mode = ""
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Pages the client can be on besides the sign-in and sign-up pages.
const (
	PageDashboard = "/dashboard"
	PageTasks     = "/tasks"
	PageProfile   = "/profile"
)

type App struct {
	db     *sql.DB
	auth   *services.AuthController
	tasks  *services.TaskService
	policy guard.Policy
	reader *bufio.Reader
	out    io.Writer

	page     string
	callback string
	listed   []models.Task
	Mode     Mode

	unsubscribe func()
}

// NewApp opens the local database and wires the API client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger := logging.New(os.Stderr, "text", "warn")
	app := newApp(apiClient, metadata.NewSQLiteRepository(db), logger, bufio.NewReader(os.Stdin), os.Stdout)
	app.db = db
	return app, nil
}

func newApp(c client.Client, store metadata.Repository, log logging.Logger, r *bufio.Reader, w io.Writer) *App {
	auth := services.NewAuthController(c, store, log)
	a := &App{
		auth:   auth,
		tasks:  services.NewTaskService(c, auth),
		policy: guard.DefaultPolicy(),
		reader: r,
		out:    w,
	}
	a.unsubscribe = auth.Subscribe(a.onAuthChange)
	return a
}

// Run restores any saved session, opens the dashboard and serves commands
// until the user quits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println(titleStyle.Render("Welcome to GophTasks CLI") + dimStyle.Render(" (type 'help' for commands)"))

	a.checkServer(ctx)
	if _, err := a.auth.Resolve(ctx); err != nil {
		a.fail(err)
	}
	a.Go(ctx, []string{a.policy.DefaultPath})

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// checkServer sets the initial mode. Any answer from the server, an error
// status included, counts as online.
func (a *App) checkServer(ctx context.Context) {
	if err := a.auth.CheckServer(ctx); errors.Is(err, client.ErrUnavailable) {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().IsAuthenticated
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.println(dimStyle.Render(fmt.Sprintf("Switched to %s mode", mode)))
	}
}

func (a *App) getStatus() string {
	s := a.page
	if u := a.auth.State().User; u != nil {
		s = u.Email + " " + s
	}
	if a.Mode != ModeUnknown {
		s += " " + string(a.Mode)
	}
	return promptStyle.Render(fmt.Sprintf("gt (%s)>", s))
}

// onAuthChange sends the user back to sign-in when the session ends while a
// protected page is open, for example after the server rejected the token.
func (a *App) onAuthChange(s services.AuthState) {
	if s.Status != services.StatusAnonymous || a.page == "" {
		return
	}
	if a.policy.Classify(a.page) == guard.Protected {
		a.navigate(a.page)
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
