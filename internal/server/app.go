// Package server initializes and runs the auth server: it selects the storage
// backends, applies migrations, wires the token engine, and handles graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/email"
	"github.com/dmitrijs2005/authkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/dmitrijs2005/authkeeper/internal/server/token"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	rdb     *redis.Client
	ledger  revocations.Ledger
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	codec, err := token.NewCodec(token.Config{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.SigningAlgorithm,
		Issuer:    "authkeeper",
	})
	if err != nil {
		return nil, fmt.Errorf("token codec init: %w", err)
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("password hasher init: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	var usersRepo users.Repository
	switch cfg.RevocationBackend {
	case "memory":
		usersRepo = users.NewInMemoryRepository()
		app.ledger = revocations.NewInMemoryLedger()
	case "postgres":
		if err := app.openDB(); err != nil {
			return nil, err
		}
		usersRepo = users.NewPostgresRepository(app.db)
		app.ledger = revocations.NewPostgresLedger(app.db)
	case "redis":
		if err := app.openDB(); err != nil {
			return nil, err
		}
		usersRepo = users.NewPostgresRepository(app.db)
		app.rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		app.ledger = revocations.NewRedisLedger(app.rdb)
	default:
		return nil, fmt.Errorf("unknown revocation backend %q", cfg.RevocationBackend)
	}

	var mailer email.Sender = email.NoopSender{}
	if cfg.SMTPHost != "" {
		mailer = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SenderEmail, cfg.SMTPUser, cfg.SMTPPassword)
	}

	svc := services.NewAuthService(usersRepo, app.ledger, codec, hasher, mailer, logger, cfg)
	app.handler = httpapi.NewRouter(svc, logger)

	return app, nil
}

func (app *App) openDB() error {
	db, err := sql.Open("pgx", app.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init: %w", err)
	}
	app.db = db
	return app.runMigrations(context.Background())
}

func (app *App) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migrations dialect: %w", err)
	}
	if err := goose.UpContext(ctx, app.db, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// runSweeper periodically drops ledger entries whose tokens have expired on
// their own. A zero or negative interval disables it.
func (app *App) runSweeper(ctx context.Context) {
	if app.config.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.ledger.Sweep(ctx, time.Now().UTC())
			if err != nil {
				app.logger.Warn(ctx, "ledger sweep failed", "error", err)
				continue
			}
			app.logger.Info(ctx, "ledger sweep finished", "removed", removed)
		}
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr, "backend", app.config.RevocationBackend)

	app.initSignalHandler(cancelFunc)

	go app.runSweeper(ctx)

	srv := &http.Server{Addr: app.config.EndpointAddr, Handler: app.handler}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown failed", "error", err)
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(shutdownCtx, "db close failed", "error", err)
		}
	}
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Error(shutdownCtx, "redis close failed", "error", err)
		}
	}

	app.logger.Info(shutdownCtx, "server stopped")
}
