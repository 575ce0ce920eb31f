package models

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/havenhelper/internal/database/dbretry"
	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// importBatchSize caps the number of rows per bulk insert statement.
const importBatchSize = 500

// ThanksModel handles database operations for the thanks ledger.
type ThanksModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewThanks creates a new thanks model.
func NewThanks(db *bun.DB, logger *zap.Logger) *ThanksModel {
	return &ThanksModel{
		db:     db,
		logger: logger.Named("db_thanks"),
	}
}

// RecordThanks appends a fact and increments the recipient's running total
// in the same transaction. The returned counts bracket this specific append,
// so concurrent thanks for the same user never observe the same interval.
func (r *ThanksModel) RecordThanks(ctx context.Context, fact *types.ThanksFact) (types.MilestoneCounts, error) {
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = time.Now()
	}

	fact.CreatedAt = normalizeTime(fact.CreatedAt)

	var counts types.MilestoneCounts

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		// A retried transaction must insert a fresh row
		fact.ID = 0

		if _, err := tx.NewInsert().Model(fact).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert thanks: %w", err)
		}

		var total int64

		err := tx.NewRaw(`
			INSERT INTO thank_totals (user_id, total) VALUES (?, 1)
			ON CONFLICT (user_id) DO UPDATE SET total = thank_totals.total + 1
			RETURNING total
		`, fact.ThankedID).Scan(ctx, &total)
		if err != nil {
			return fmt.Errorf("failed to increment thank total: %w", err)
		}

		counts = types.MilestoneCounts{Before: total - 1, After: total}

		return nil
	})
	if err != nil {
		return types.MilestoneCounts{}, err
	}

	r.logger.Debug("Recorded thanks",
		zap.Int64("id", fact.ID),
		zap.Uint64("thanked_id", fact.ThankedID),
		zap.Uint64("thanking_id", fact.ThankingID),
		zap.Int64("total", counts.After))

	return counts, nil
}

// Ranked returns the recipients inside the window ordered by thank count,
// highest first, ties broken by ascending user ID. A limit of zero returns every row.
func (r *ThanksModel) Ranked(
	ctx context.Context, window types.Window, limit, offset int,
) ([]*types.LeaderboardRow, error) {
	var rows []*types.LeaderboardRow

	err := dbretry.ReadTransaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		var err error
		rows, err = rankedRows(ctx, tx, window, limit, offset)

		return err
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// DistinctRecipients returns the number of distinct users thanked inside the window.
func (r *ThanksModel) DistinctRecipients(ctx context.Context, window types.Window) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return distinctRecipients(ctx, r.db, window)
	})
}

// Leaderboard reads a page of ranked rows and the distinct recipient count
// from one transaction so both describe the same ledger state.
func (r *ThanksModel) Leaderboard(
	ctx context.Context, window types.Window, limit, offset int,
) (*types.LeaderboardPage, error) {
	page := &types.LeaderboardPage{Offset: offset}

	err := dbretry.ReadTransaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		rows, err := rankedRows(ctx, tx, window, limit, offset)
		if err != nil {
			return err
		}

		total, err := distinctRecipients(ctx, tx, window)
		if err != nil {
			return err
		}

		page.Rows = rows
		page.Total = total

		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// CountAllTime returns the number of thanks a user has ever received.
func (r *ThanksModel) CountAllTime(ctx context.Context, userID uint64) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := r.db.NewSelect().
			Model((*types.ThanksFact)(nil)).
			Where("t.thanked_id = ?", userID).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count thanks for user %d: %w", userID, err)
		}

		return count, nil
	})
}

// RecentFeedback returns the latest thanks received by a user, newest first.
func (r *ThanksModel) RecentFeedback(ctx context.Context, userID uint64, limit int) ([]*types.ThanksFact, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ThanksFact, error) {
		var facts []*types.ThanksFact

		err := r.db.NewSelect().
			Model(&facts).
			Where("t.thanked_id = ?", userID).
			OrderExpr("t.created_at DESC, t.id DESC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get feedback for user %d: %w", userID, err)
		}

		return facts, nil
	})
}

// SyncNames rewrites every stored name snapshot of a user on both sides of the ledger.
// Returns the number of rows updated as recipient and as giver.
func (r *ThanksModel) SyncNames(ctx context.Context, userID uint64, name string) (int64, int64, error) {
	var thanked, thanking int64

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*types.ThanksFact)(nil)).
			Set("thanked_name = ?", name).
			Where("thanked_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to sync thanked names: %w", err)
		}

		thanked, _ = res.RowsAffected()

		res, err = tx.NewUpdate().
			Model((*types.ThanksFact)(nil)).
			Set("thanking_name = ?", name).
			Where("thanking_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to sync thanking names: %w", err)
		}

		thanking, _ = res.RowsAffected()

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	r.logger.Info("Synced name snapshots",
		zap.Uint64("user_id", userID),
		zap.String("name", name),
		zap.Int64("thanked_rows", thanked),
		zap.Int64("thanking_rows", thanking))

	return thanked, thanking, nil
}

// ImportFacts bulk inserts facts and rebuilds the running totals in one transaction.
// Stored IDs are ignored and reassigned.
func (r *ThanksModel) ImportFacts(ctx context.Context, facts []*types.ThanksFact) (int, error) {
	if len(facts) == 0 {
		return 0, nil
	}

	for _, fact := range facts {
		fact.ID = 0
		fact.CreatedAt = normalizeTime(fact.CreatedAt)
	}

	err := dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		for start := 0; start < len(facts); start += importBatchSize {
			batch := facts[start:min(start+importBatchSize, len(facts))]

			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return fmt.Errorf("failed to insert batch at %d: %w", start, err)
			}
		}

		return rebuildTotals(ctx, tx)
	})
	if err != nil {
		return 0, err
	}

	r.logger.Info("Imported thanks", zap.Int("count", len(facts)))

	return len(facts), nil
}

// RebuildTotals recomputes every running total from the facts.
func (r *ThanksModel) RebuildTotals(ctx context.Context) error {
	return dbretry.Transaction(ctx, r.db, func(ctx context.Context, tx bun.Tx) error {
		return rebuildTotals(ctx, tx)
	})
}

// rankedRows runs the leaderboard grouping query.
// The display name is the latest snapshot for the user inside the same window.
func rankedRows(
	ctx context.Context, db bun.IDB, window types.Window, limit, offset int,
) ([]*types.LeaderboardRow, error) {
	latestName := db.NewSelect().
		TableExpr("thanks AS n").
		Column("n.thanked_name").
		Where("n.thanked_id = t.thanked_id").
		OrderExpr("n.created_at DESC, n.id DESC").
		Limit(1)
	latestName = window.Apply(latestName, "n.created_at")

	q := db.NewSelect().
		Model((*types.ThanksFact)(nil)).
		ColumnExpr("t.thanked_id AS user_id").
		ColumnExpr("COUNT(*) AS thank_count").
		ColumnExpr("(?) AS display_name", latestName).
		GroupExpr("t.thanked_id").
		OrderExpr("thank_count DESC, t.thanked_id ASC").
		Limit(limit).
		Offset(offset)
	q = window.Apply(q, "t.created_at")

	rows := make([]*types.LeaderboardRow, 0, limit)
	if err := q.Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to query ranked thanks: %w", err)
	}

	return rows, nil
}

// distinctRecipients counts distinct thanked users inside the window.
func distinctRecipients(ctx context.Context, db bun.IDB, window types.Window) (int, error) {
	var total int

	q := db.NewSelect().
		Model((*types.ThanksFact)(nil)).
		ColumnExpr("COUNT(DISTINCT t.thanked_id)")
	q = window.Apply(q, "t.created_at")

	if err := q.Scan(ctx, &total); err != nil {
		return 0, fmt.Errorf("failed to count distinct recipients: %w", err)
	}

	return total, nil
}

// rebuildTotals replaces the running totals with counts derived from the facts.
func rebuildTotals(ctx context.Context, tx bun.Tx) error {
	if _, err := tx.NewDelete().Model((*types.ThankTotal)(nil)).Where("1 = 1").Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear thank totals: %w", err)
	}

	_, err := tx.NewRaw(`
		INSERT INTO thank_totals (user_id, total)
		SELECT thanked_id, COUNT(*) FROM thanks GROUP BY thanked_id
	`).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild thank totals: %w", err)
	}

	return nil
}

// normalizeTime stores instants in UTC at microsecond precision,
// the finest resolution both backends preserve.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
