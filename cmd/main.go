package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/chordex/internal/repositories"
	"github.com/desertthunder/chordex/internal/services"
	"github.com/desertthunder/chordex/internal/session"
	"github.com/desertthunder/chordex/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	svc := services.NewAutoChordService(config.Server.BaseURL, nil, config.Server.RequestsPerSecond)
	api := services.NewAPIService(config.Server.BaseURL, nil)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("failed to open local database: %v", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	// Migrations are idempotent; running at startup keeps `chordex setup`
	// optional for the default database path.
	if err := shared.RunMigrations(db); err != nil {
		logger.Fatalf("failed to run migrations: %v", err)
	}

	store := session.NewStore(repositories.NewSessionRepository(db), svc, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Service: svc,
		API:     api,
		DB:      db,
		Store:   store,
		History: repositories.NewLookupRepository(db),
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "chordex",
		Usage:    "Search songs and explore generated chord charts from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
