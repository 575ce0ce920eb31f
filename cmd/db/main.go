package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/robalyx/havenhelper/cmd/db/commands"
	"github.com/robalyx/havenhelper/internal/database/migrations"
	"github.com/robalyx/havenhelper/internal/setup"
	"github.com/robalyx/havenhelper/internal/setup/telemetry"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
)

const (
	// DBLogDir specifies where database tool log files are stored.
	DBLogDir = "logs/db_logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Setup dependencies
	app, err := setup.InitializeApp(ctx, telemetry.ServiceDB, DBLogDir)
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer app.Cleanup(ctx)

	deps := &commands.CLIDependencies{
		DB:       app.DB,
		Migrator: migrate.NewMigrator(app.DB.DB(), migrations.Migrations),
		Logger:   app.Logger,
	}

	cmd := &cli.Command{
		Name:  "db",
		Usage: "Database management tool",
		Commands: slices.Concat(
			commands.MigrationCommands(deps),
			commands.ThanksCommands(deps),
		),
	}

	return cmd.Run(ctx, os.Args)
}
