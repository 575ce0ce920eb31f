package commands

import (
	"context"
	"fmt"

	"github.com/robalyx/havenhelper/internal/legacy"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ThanksCommands returns the commands that maintain the thanks ledger.
func ThanksCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "import-legacy",
			Usage:     "Import the thanks table of a previous helpers.db",
			ArgsUsage: "PATH",
			Description: `Read every row of the thanks table in the SQLite database at PATH and
append it to the ledger, then rebuild the all-time totals.

Rows whose user IDs or timestamp cannot be parsed are skipped and logged.
Use --dry-run to only report what would be imported.

Examples:
  db import-legacy ./helpers.db
  db import-legacy ./helpers.db --dry-run`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:    "dry-run",
					Usage:   "Read and validate without writing",
					Aliases: []string{"n"},
				},
			},
			Action: handleImportLegacy(deps),
		},
		{
			Name:   "rebuild-totals",
			Usage:  "Recompute all-time totals from the recorded thanks",
			Action: handleRebuildTotals(deps),
		},
	}
}

// handleImportLegacy handles the 'import-legacy' command.
func handleImportLegacy(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrPathRequired
		}

		result, err := legacy.NewReader(c.Args().First(), deps.Logger).Read()
		if err != nil {
			return err
		}

		if c.Bool("dry-run") {
			deps.Logger.Info("Dry run complete",
				zap.Int("importable", len(result.Facts)),
				zap.Int("skipped", result.Skipped))
			return nil
		}

		imported, err := deps.DB.Model().Thanks().ImportFacts(ctx, result.Facts)
		if err != nil {
			return fmt.Errorf("failed to import thanks: %w", err)
		}

		deps.Logger.Info("Imported legacy thanks",
			zap.Int("imported", imported),
			zap.Int("skipped", result.Skipped))

		return nil
	}
}

// handleRebuildTotals handles the 'rebuild-totals' command.
func handleRebuildTotals(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		if err := deps.DB.Model().Thanks().RebuildTotals(ctx); err != nil {
			return fmt.Errorf("failed to rebuild totals: %w", err)
		}

		deps.Logger.Info("Rebuilt thank totals")

		return nil
	}
}
