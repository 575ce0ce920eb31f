package models_test

import (
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/robalyx/havenhelper/internal/database"
	"github.com/robalyx/havenhelper/internal/database/models"
	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	userA uint64 = 1001
	userB uint64 = 1002
	userC uint64 = 1003
	giver uint64 = 2001
)

func setupTest(t *testing.T) *models.ThanksModel {
	t.Helper()

	client, err := database.NewConnection(t.Context(), &config.Database{
		Driver: config.DriverSQLite,
		SQLite: config.SQLite{
			Path:        filepath.Join(t.TempDir(), "thanks.db"),
			BusyTimeout: 5000,
		},
	}, zap.NewNop(), database.WithAutoMigrate())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client.Model().Thanks()
}

func record(t *testing.T, m *models.ThanksModel, thanked uint64, name string, at time.Time) types.MilestoneCounts {
	t.Helper()

	counts, err := m.RecordThanks(t.Context(), &types.ThanksFact{
		ThankedID:    thanked,
		ThankedName:  name,
		ThankingID:   giver,
		ThankingName: "giver",
		CreatedAt:    at,
	})
	require.NoError(t, err)

	return counts
}

func recordN(t *testing.T, m *models.ThanksModel, thanked uint64, name string, n int, at time.Time) {
	t.Helper()

	for range n {
		record(t, m, thanked, name, at)
	}
}

func TestRecordThanksCounts(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	now := time.Now()
	for i := 1; i <= 3; i++ {
		counts := record(t, m, userA, "alice", now)
		assert.Equal(t, int64(i-1), counts.Before)
		assert.Equal(t, int64(i), counts.After)
	}

	count, err := m.CountAllTime(t.Context(), userA)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = m.CountAllTime(t.Context(), userB)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordThanksConcurrentIntervalsAreDistinct(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	const n = 20

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		afters []int
	)

	for range n {
		wg.Add(1)

		go func() {
			defer wg.Done()

			counts, err := m.RecordThanks(t.Context(), &types.ThanksFact{
				ThankedID:    userA,
				ThankedName:  "alice",
				ThankingID:   giver,
				ThankingName: "giver",
			})
			assert.NoError(t, err)
			assert.Equal(t, counts.After-1, counts.Before)

			mu.Lock()
			afters = append(afters, int(counts.After))
			mu.Unlock()
		}()
	}

	wg.Wait()

	sort.Ints(afters)

	expected := make([]int, n)
	for i := range expected {
		expected[i] = i + 1
	}

	assert.Equal(t, expected, afters)
}

func TestLeaderboardScenario(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	now := time.Now()
	recordN(t, m, userA, "alice", 20, now)
	recordN(t, m, userB, "bob", 14, now)
	recordN(t, m, userC, "carol", 1, now)

	page, err := m.Leaderboard(t.Context(), types.Window{}, 10, 0)
	require.NoError(t, err)

	require.Len(t, page.Rows, 3)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 0, page.Offset)

	assert.Equal(t, types.LeaderboardRow{UserID: userA, DisplayName: "alice", ThankCount: 20}, *page.Rows[0])
	assert.Equal(t, types.LeaderboardRow{UserID: userB, DisplayName: "bob", ThankCount: 14}, *page.Rows[1])
	assert.Equal(t, types.LeaderboardRow{UserID: userC, DisplayName: "carol", ThankCount: 1}, *page.Rows[2])
}

func TestRankedTieBreakAndPaging(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	now := time.Now()

	// Twelve users with two thanks each, inserted in descending id order
	for id := uint64(12); id >= 1; id-- {
		recordN(t, m, id, "user", 2, now)
	}

	first, err := m.Ranked(t.Context(), types.Window{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, first, 10)

	for i, row := range first {
		assert.Equal(t, uint64(i+1), row.UserID)
	}

	second, err := m.Ranked(t.Context(), types.Window{}, 10, 10)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, uint64(11), second[0].UserID)
	assert.Equal(t, uint64(12), second[1].UserID)

	beyond, err := m.Leaderboard(t.Context(), types.Window{}, 10, 20)
	require.NoError(t, err)
	assert.Empty(t, beyond.Rows)
	assert.Equal(t, 12, beyond.Total)

	all, err := m.Ranked(t.Context(), types.Window{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestRankedUsesLatestNameSnapshot(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	record(t, m, userA, "old-name", base)
	record(t, m, userA, "new-name", base.Add(time.Hour))
	record(t, m, userA, "older-name", base.Add(-time.Hour))

	rows, err := m.Ranked(t.Context(), types.Window{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "new-name", rows[0].DisplayName)

	// Inside a window only snapshots from that window count
	rows, err = m.Ranked(t.Context(), types.Window{To: base.Add(time.Minute)}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "old-name", rows[0].DisplayName)
	assert.Equal(t, int64(2), rows[0].ThankCount)
}

func TestWindowBoundsAreHalfOpen(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	from := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	record(t, m, userA, "alice", from.Add(-time.Microsecond)) // before
	record(t, m, userA, "alice", from)                        // first instant, included
	record(t, m, userB, "bob", to.Add(-time.Microsecond))     // last instant, included
	record(t, m, userC, "carol", to)                          // excluded

	window := types.Window{From: from, To: to}

	rows, err := m.Ranked(t.Context(), window, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, userA, rows[0].UserID)
	assert.Equal(t, int64(1), rows[0].ThankCount)
	assert.Equal(t, userB, rows[1].UserID)

	total, err := m.DistinctRecipients(t.Context(), window)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	total, err = m.DistinctRecipients(t.Context(), types.Window{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestRecentFeedback(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	base := time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC)
	for i := range 12 {
		_, err := m.RecordThanks(t.Context(), &types.ThanksFact{
			ThankedID:    userA,
			ThankedName:  "alice",
			ThankingID:   giver + uint64(i),
			ThankingName: "giver",
			Game:         "Helldivers 2",
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	facts, err := m.RecentFeedback(t.Context(), userA, 10)
	require.NoError(t, err)
	require.Len(t, facts, 10)

	assert.Equal(t, giver+11, facts[0].ThankingID)
	assert.Equal(t, "Helldivers 2", facts[0].Game)
	assert.Empty(t, facts[0].Note)
	assert.True(t, facts[0].CreatedAt.Equal(base.Add(11*time.Hour)))
	assert.Equal(t, giver+2, facts[9].ThankingID)
}

func TestSyncNames(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	now := time.Now()
	recordN(t, m, userA, "alice", 2, now)

	// userA also thanked someone once
	_, err := m.RecordThanks(t.Context(), &types.ThanksFact{
		ThankedID:    userB,
		ThankedName:  "bob",
		ThankingID:   userA,
		ThankingName: "alice",
		CreatedAt:    now,
	})
	require.NoError(t, err)

	thanked, thanking, err := m.SyncNames(t.Context(), userA, "alice-renamed")
	require.NoError(t, err)
	assert.Equal(t, int64(2), thanked)
	assert.Equal(t, int64(1), thanking)

	rows, err := m.Ranked(t.Context(), types.Window{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice-renamed", rows[0].DisplayName)

	feedback, err := m.RecentFeedback(t.Context(), userB, 1)
	require.NoError(t, err)
	require.Len(t, feedback, 1)
	assert.Equal(t, "alice-renamed", feedback[0].ThankingName)
}

func TestImportFactsRebuildsTotals(t *testing.T) {
	t.Parallel()
	m := setupTest(t)

	base := time.Date(2024, time.December, 24, 18, 30, 0, 0, time.UTC)
	facts := make([]*types.ThanksFact, 0, 1200)

	for i := range 1200 {
		thanked := userA
		if i%3 == 0 {
			thanked = userB
		}

		facts = append(facts, &types.ThanksFact{
			ID:           int64(i + 1),
			ThankedID:    thanked,
			ThankedName:  "legacy",
			ThankingID:   giver,
			ThankingName: "giver",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
	}

	imported, err := m.ImportFacts(t.Context(), facts)
	require.NoError(t, err)
	assert.Equal(t, 1200, imported)

	// The next append continues from the rebuilt total
	counts := record(t, m, userB, "bob", time.Now())
	assert.Equal(t, int64(400), counts.Before)
	assert.Equal(t, int64(401), counts.After)

	count, err := m.CountAllTime(t.Context(), userA)
	require.NoError(t, err)
	assert.Equal(t, 800, count)
}
