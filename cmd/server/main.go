package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	userauth "github.com/cmontedonico/go-userauth"
)

func main() {
	logger := &slogAdapter{log: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger userauth.Logger) error {
	cfg, err := userauth.ConfigFromEnv()
	if err != nil {
		return err
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDatabaseDSN())
	if err != nil {
		return err
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := applyMigrations(ctx, db); err != nil {
		return err
	}

	repo := userauth.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := userauth.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		logger,
	)

	credentials := userauth.NewCredentialService(repo.Users(), tokens).
		WithLogger(logger)

	if err := seedFromEnv(ctx, repo, logger); err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "go-userauth",
		DisableStartupMessage: true,
	})

	app.Use(userauth.NewAuthGate(tokens, repo.Users()))

	controller := userauth.NewAuthController(credentials, repo.Users()).
		WithLogger(logger)
	controller.RegisterRoutes(app)

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.GetHTTPAddr())
		errc <- app.Listen(cfg.GetHTTPAddr())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

// applyMigrations executes the embedded SQL files in lexical order. The
// files are idempotent, so re-running on boot is safe.
func applyMigrations(ctx context.Context, db *bun.DB) error {
	root := "data/sql/migrations"

	var files []string
	err := fs.WalkDir(userauth.GetMigrationsFS(), root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".up.sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		raw, err := fs.ReadFile(userauth.GetMigrationsFS(), file)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(raw)); err != nil {
			return err
		}
	}

	return nil
}

// seedFromEnv provisions an initial account when SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD are set. Repeated boots are a no-op.
func seedFromEnv(ctx context.Context, repo userauth.RepositoryManager, logger userauth.Logger) error {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	handler := userauth.NewSeedUserHandler(repo).WithLogger(logger)

	return handler.Execute(ctx, userauth.SeedUserMessage{
		Email:     email,
		Password:  password,
		UseHashid: true,
	})
}

type slogAdapter struct {
	log *slog.Logger
}

func (s *slogAdapter) Debug(msg string, args ...any) { s.log.Debug(msg, args...) }
func (s *slogAdapter) Info(msg string, args ...any)  { s.log.Info(msg, args...) }
func (s *slogAdapter) Warn(msg string, args ...any)  { s.log.Warn(msg, args...) }
func (s *slogAdapter) Error(msg string, args ...any) { s.log.Error(msg, args...) }
