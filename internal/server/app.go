// Package server assembles the GophTasks HTTP server: it opens the
// database, applies migrations, builds the services and serves the REST
// API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophtasks/internal/guard"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/metrics"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/rest"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

// NewApp validates c and wires every dependency. The database must be
// reachable; migrations are applied before NewApp returns.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, err
	}

	codec, err := auth.NewCodec(c.SecretKey, c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	reg, mt := metrics.NewRegistry()

	as := services.NewAuthService(db, rm, codec, auth.NewBcryptHasher(c.BcryptCost), logger, mt)
	ts := services.NewTaskService(db, rm, logger)

	policy := guard.DefaultPolicy()
	policy.DefaultPath = c.DefaultPath

	router := rest.NewRouter(rest.RouterDeps{
		Auth:           as,
		Tasks:          ts,
		Log:            logger,
		Metrics:        mt,
		Gatherer:       reg,
		Policy:         policy,
		Cookies:        rest.CookieSettings{Secure: c.SecureCookie, TTL: codec.TTL()},
		RequestTimeout: c.RequestTimeout,
	})

	srv := rest.NewServer(c.EndpointAddrHTTP, router, logger, c.ShutdownTimeout)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or ctx cancellation, then closes
// the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	err := app.server.Run(ctx)

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "close db", "error", cerr)
	}
	app.logger.Info(ctx, "App stopped")
	return err
}
