package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/swipebeats/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
//
// --status only reports which migrations are applied; --rollback reverts the newest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	switch {
	case cmd.Bool("rollback"):
		r.logger.Info("rolling back last migration")
		if err := shared.RollbackMigration(ctx, db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
	case !cmd.Bool("status"):
		r.logger.Info("running database migrations")
		if err := shared.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	statuses, err := shared.Migrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	r.writePlainHeader("Database: " + path)
	for _, s := range statuses {
		mark := "pending"
		if s.Applied {
			mark = "applied"
		}
		r.writePlain("%04d %-28s %s\n", s.Version, s.Name, mark)
	}

	r.logger.Infof("setup complete for database: %v", path)
	return nil
}

// ConfigInit writes the embedded example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = "config.toml"
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	return nil
}

// ConfigShow prints the effective configuration as TOML.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if err := toml.NewEncoder(r.output).Encode(r.config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
