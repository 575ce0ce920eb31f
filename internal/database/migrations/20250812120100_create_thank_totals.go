package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		err := execAll(ctx, db,
			`CREATE TABLE IF NOT EXISTS thank_totals (
				user_id BIGINT PRIMARY KEY,
				total BIGINT NOT NULL DEFAULT 0
			)`,
			// Existing facts seed the running totals
			`INSERT INTO thank_totals (user_id, total)
			SELECT thanked_id, COUNT(*) FROM thanks WHERE true GROUP BY thanked_id
			ON CONFLICT (user_id) DO UPDATE SET total = EXCLUDED.total`,
		)
		if err != nil {
			return fmt.Errorf("failed to create thank_totals table: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db, `DROP TABLE IF EXISTS thank_totals`)
	})
}
