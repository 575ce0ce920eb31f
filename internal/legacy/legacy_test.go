package legacy_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/havenhelper/internal/legacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// createLegacyDB writes a database with the previous bot's thanks table.
func createLegacyDB(t *testing.T, rows [][]any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "helpers.db")

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate|sqlite.OpenReadWrite)
	require.NoError(t, err)
	defer conn.Close()

	err = sqlitex.ExecuteScript(conn, `
		CREATE TABLE thanks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			thanked_user_id TEXT NOT NULL,
			thanked_user_name TEXT NOT NULL,
			thanking_user_id TEXT NOT NULL,
			thanking_user_name TEXT NOT NULL,
			game TEXT DEFAULT NULL,
			message TEXT DEFAULT NULL,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, nil)
	require.NoError(t, err)

	for _, row := range rows {
		err = sqlitex.Execute(conn, `
			INSERT INTO thanks (thanked_user_id, thanked_user_name, thanking_user_id, thanking_user_name,
				game, message, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, &sqlitex.ExecOptions{Args: row})
		require.NoError(t, err)
	}

	return path
}

func TestRead(t *testing.T) {
	t.Parallel()

	path := createLegacyDB(t, [][]any{
		{"111", "alice", "222", "bob", "Chess", "gg", "2024-03-05 14:07:09"},
		{"111", "alice", "333", "carol", nil, nil, "2024-03-06 00:00:00"},
		{"not-a-snowflake", "mallory", "222", "bob", nil, nil, "2024-03-06 01:00:00"},
		{"222", "bob", "111", "alice", nil, "thanks!", "yesterday"},
	})

	result, err := legacy.NewReader(path, zap.NewNop()).Read()
	require.NoError(t, err)

	assert.Equal(t, 2, result.Skipped)
	require.Len(t, result.Facts, 2)

	first := result.Facts[0]
	assert.Equal(t, uint64(111), first.ThankedID)
	assert.Equal(t, "alice", first.ThankedName)
	assert.Equal(t, uint64(222), first.ThankingID)
	assert.Equal(t, "bob", first.ThankingName)
	assert.Equal(t, "Chess", first.Game)
	assert.Equal(t, "gg", first.Note)
	assert.Equal(t, time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC), first.CreatedAt)

	second := result.Facts[1]
	assert.Equal(t, uint64(333), second.ThankingID)
	assert.Empty(t, second.Game)
	assert.Empty(t, second.Note)
}

func TestReadEmptyTable(t *testing.T) {
	t.Parallel()

	path := createLegacyDB(t, nil)

	result, err := legacy.NewReader(path, zap.NewNop()).Read()
	require.NoError(t, err)
	assert.Empty(t, result.Facts)
	assert.Zero(t, result.Skipped)
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := legacy.NewReader(filepath.Join(t.TempDir(), "missing.db"), zap.NewNop()).Read()
	require.Error(t, err)
}
