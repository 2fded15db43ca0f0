package main

import (
	"context"

	"github.com/desertthunder/chordex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates a config file from the embedded example and initializes the
// local database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("skipping config creation: %v", err)
	} else {
		r.writePlain("✓ Created %s\n", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		config = shared.DefaultConfig()
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	return r.writePlain("Run 'chordex tui' to get started.\n")
}
