package gratitude_test

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/robalyx/havenhelper/internal/database/types"
)

// memoryLedger is an in-memory Ledger with the same ordering rules as the store.
type memoryLedger struct {
	mu     sync.Mutex
	facts  []*types.ThanksFact
	totals map[uint64]int64
	err    error
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{totals: make(map[uint64]int64)}
}

func (l *memoryLedger) RecordThanks(_ context.Context, fact *types.ThanksFact) (types.MilestoneCounts, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return types.MilestoneCounts{}, l.err
	}

	fact.ID = int64(len(l.facts) + 1)
	l.facts = append(l.facts, fact)
	l.totals[fact.ThankedID]++

	total := l.totals[fact.ThankedID]

	return types.MilestoneCounts{Before: total - 1, After: total}, nil
}

func (l *memoryLedger) Ranked(
	ctx context.Context, window types.Window, limit, offset int,
) ([]*types.LeaderboardRow, error) {
	page, err := l.Leaderboard(ctx, window, limit, offset)
	if err != nil {
		return nil, err
	}

	return page.Rows, nil
}

func (l *memoryLedger) DistinctRecipients(ctx context.Context, window types.Window) (int, error) {
	page, err := l.Leaderboard(ctx, window, 0, 0)
	if err != nil {
		return 0, err
	}

	return page.Total, nil
}

func (l *memoryLedger) Leaderboard(
	_ context.Context, window types.Window, limit, offset int,
) (*types.LeaderboardPage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, l.err
	}

	byUser := make(map[uint64]*types.LeaderboardRow)
	latest := make(map[uint64]*types.ThanksFact)

	for _, fact := range l.facts {
		if !window.Contains(fact.CreatedAt) {
			continue
		}

		row, ok := byUser[fact.ThankedID]
		if !ok {
			row = &types.LeaderboardRow{UserID: fact.ThankedID}
			byUser[fact.ThankedID] = row
		}

		row.ThankCount++

		if prev := latest[fact.ThankedID]; prev == nil || !fact.CreatedAt.Before(prev.CreatedAt) {
			latest[fact.ThankedID] = fact
			row.DisplayName = fact.ThankedName
		}
	}

	rows := make([]*types.LeaderboardRow, 0, len(byUser))
	for _, row := range byUser {
		rows = append(rows, row)
	}

	slices.SortFunc(rows, func(a, b *types.LeaderboardRow) int {
		if c := cmp.Compare(b.ThankCount, a.ThankCount); c != 0 {
			return c
		}

		return cmp.Compare(a.UserID, b.UserID)
	})

	page := &types.LeaderboardPage{Total: len(rows), Offset: offset}
	if offset < len(rows) {
		page.Rows = rows[offset:min(offset+limit, len(rows))]
	}

	return page, nil
}

func (l *memoryLedger) CountAllTime(_ context.Context, userID uint64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return int(l.totals[userID]), nil
}

func (l *memoryLedger) factCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.facts)
}
