// Package legacy reads the thanks table of the previous bot's SQLite database.
package legacy

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robalyx/havenhelper/internal/database/types"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// TimestampLayout is the format SQLite uses for CURRENT_TIMESTAMP, always in UTC.
const TimestampLayout = time.DateTime

// ErrInvalidRow indicates a row whose IDs or timestamp cannot be parsed.
var ErrInvalidRow = errors.New("invalid legacy row")

const selectThanks = `
	SELECT id, thanked_user_id, thanked_user_name, thanking_user_id, thanking_user_name,
		game, message, timestamp
	FROM thanks
	ORDER BY id
`

// Result holds the facts read from a legacy database.
type Result struct {
	Facts   []*types.ThanksFact
	Skipped int
}

// Reader loads thanks from a legacy database file.
type Reader struct {
	path   string
	logger *zap.Logger
}

// NewReader creates a reader for the database at path.
func NewReader(path string, logger *zap.Logger) *Reader {
	return &Reader{
		path:   path,
		logger: logger.Named("legacy"),
	}
}

// Read returns every parseable thanks row in ID order.
// Rows that cannot be parsed are logged and skipped.
func (r *Reader) Read() (*Result, error) {
	conn, err := sqlite.OpenConn(r.path, sqlite.OpenReadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	defer conn.Close()

	result := &Result{}

	err = sqlitex.ExecuteTransient(conn, selectThanks, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			fact, err := scanFact(stmt)
			if err != nil {
				result.Skipped++
				r.logger.Warn("Skipping legacy row",
					zap.Int64("id", stmt.ColumnInt64(0)),
					zap.Error(err))
				return nil
			}

			result.Facts = append(result.Facts, fact)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy thanks: %w", err)
	}

	r.logger.Info("Read legacy thanks",
		zap.Int("facts", len(result.Facts)),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func scanFact(stmt *sqlite.Stmt) (*types.ThanksFact, error) {
	thankedID, err := parseID(stmt.ColumnText(1))
	if err != nil {
		return nil, fmt.Errorf("%w: thanked_user_id: %w", ErrInvalidRow, err)
	}

	thankingID, err := parseID(stmt.ColumnText(3))
	if err != nil {
		return nil, fmt.Errorf("%w: thanking_user_id: %w", ErrInvalidRow, err)
	}

	createdAt, err := time.ParseInLocation(TimestampLayout, stmt.ColumnText(7), time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %w", ErrInvalidRow, err)
	}

	return &types.ThanksFact{
		ThankedID:    thankedID,
		ThankedName:  stmt.ColumnText(2),
		ThankingID:   thankingID,
		ThankingName: stmt.ColumnText(4),
		Game:         nullableText(stmt, 5),
		Note:         nullableText(stmt, 6),
		CreatedAt:    createdAt,
	}, nil
}

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}

	return id, nil
}

func nullableText(stmt *sqlite.Stmt, col int) string {
	if stmt.ColumnType(col) == sqlite.TypeNull {
		return ""
	}

	return stmt.ColumnText(col)
}
