package types

import (
	"time"

	"github.com/uptrace/bun"
)

// ThanksFact is one immutable gratitude event between two users.
// Names are snapshots taken when the thanks was given.
type ThanksFact struct {
	bun.BaseModel `bun:"table:thanks,alias:t"`

	ID           int64     `bun:",pk,autoincrement" json:"id"`
	ThankedID    uint64    `bun:",notnull"          json:"thankedId"`
	ThankedName  string    `bun:",notnull"          json:"thankedName"`
	ThankingID   uint64    `bun:",notnull"          json:"thankingId"`
	ThankingName string    `bun:",notnull"          json:"thankingName"`
	Game         string    `bun:",nullzero"         json:"game,omitempty"`
	Note         string    `bun:",nullzero"         json:"note,omitempty"`
	CreatedAt    time.Time `bun:",notnull"          json:"createdAt"`
}

// ThankTotal is the running all-time count of thanks received by a user.
type ThankTotal struct {
	bun.BaseModel `bun:"table:thank_totals"`

	UserID uint64 `bun:",pk"      json:"userId"`
	Total  int64  `bun:",notnull" json:"total"`
}

// LeaderboardRow is one ranked entry of a leaderboard query.
type LeaderboardRow struct {
	UserID      uint64 `bun:"user_id"      json:"userId"`
	DisplayName string `bun:"display_name" json:"displayName"`
	ThankCount  int64  `bun:"thank_count"  json:"thankCount"`
}

// LeaderboardPage is a window of ranked rows read together with the
// number of distinct recipients in the same scope.
type LeaderboardPage struct {
	Rows   []*LeaderboardRow
	Total  int
	Offset int
}

// MilestoneCounts holds the all-time count of a user around a single append.
type MilestoneCounts struct {
	Before int64
	After  int64
}
