package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		idColumn := "id BIGSERIAL PRIMARY KEY"
		timeType := "TIMESTAMPTZ"

		if isSQLite(db) {
			idColumn = "id INTEGER PRIMARY KEY AUTOINCREMENT"
			timeType = "TIMESTAMP"
		}

		err := execAll(ctx, db,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS thanks (
				%s,
				thanked_id BIGINT NOT NULL,
				thanked_name TEXT NOT NULL,
				thanking_id BIGINT NOT NULL,
				thanking_name TEXT NOT NULL,
				game TEXT,
				note TEXT,
				created_at %s NOT NULL
			)`, idColumn, timeType),
			`CREATE INDEX IF NOT EXISTS idx_thanks_thanked_id ON thanks (thanked_id)`,
			`CREATE INDEX IF NOT EXISTS idx_thanks_thanking_id ON thanks (thanking_id)`,
			`CREATE INDEX IF NOT EXISTS idx_thanks_created_at ON thanks (created_at)`,
		)
		if err != nil {
			return fmt.Errorf("failed to create thanks table: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		return execAll(ctx, db,
			`DROP INDEX IF EXISTS idx_thanks_created_at`,
			`DROP INDEX IF EXISTS idx_thanks_thanking_id`,
			`DROP INDEX IF EXISTS idx_thanks_thanked_id`,
			`DROP TABLE IF EXISTS thanks`,
		)
	})
}
