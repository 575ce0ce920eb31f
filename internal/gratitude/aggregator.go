package gratitude

import (
	"context"
	"time"

	"github.com/robalyx/havenhelper/internal/database/types"
)

// DefaultPageSize is the number of rows per interactive leaderboard page.
const DefaultPageSize = 10

// Ledger is the store surface the gratitude components depend on.
type Ledger interface {
	RecordThanks(ctx context.Context, fact *types.ThanksFact) (types.MilestoneCounts, error)
	Ranked(ctx context.Context, window types.Window, limit, offset int) ([]*types.LeaderboardRow, error)
	DistinctRecipients(ctx context.Context, window types.Window) (int, error)
	Leaderboard(ctx context.Context, window types.Window, limit, offset int) (*types.LeaderboardPage, error)
	CountAllTime(ctx context.Context, userID uint64) (int, error)
}

// Option configures an Aggregator or Service.
type Option func(*clock)

type clock struct {
	now func() time.Time
}

// WithClock overrides the time source used to resolve rolling windows.
func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Aggregator turns ledger facts into ranked leaderboard pages.
// Nothing is cached, so every call reflects the ledger at call time.
type Aggregator struct {
	ledger   Ledger
	pageSize int
	clock    clock
}

// NewAggregator creates an aggregator. A non-positive page size uses DefaultPageSize.
func NewAggregator(ledger Ledger, pageSize int, opts ...Option) *Aggregator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Aggregator{
		ledger:   ledger,
		pageSize: pageSize,
		clock:    newClock(opts),
	}
}

// PageSize returns the number of rows per page.
func (a *Aggregator) PageSize() int {
	return a.pageSize
}

// Rank returns at most limit rows of the scope starting at offset.
func (a *Aggregator) Rank(ctx context.Context, scope Scope, limit, offset int) ([]*types.LeaderboardRow, error) {
	return a.ledger.Ranked(ctx, scope.Window(a.clock.now()), limit, offset)
}

// CountDistinctRecipients returns the number of users thanked inside the scope.
func (a *Aggregator) CountDistinctRecipients(ctx context.Context, scope Scope) (int, error) {
	return a.ledger.DistinctRecipients(ctx, scope.Window(a.clock.now()))
}

// Page returns the zero-based page of the scope together with the distinct
// recipient count observed in the same read.
func (a *Aggregator) Page(ctx context.Context, scope Scope, page int) (*types.LeaderboardPage, error) {
	page = max(page, 0)
	return a.ledger.Leaderboard(ctx, scope.Window(a.clock.now()), a.pageSize, page*a.pageSize)
}

// CountAllTime returns the number of thanks a user has ever received.
func (a *Aggregator) CountAllTime(ctx context.Context, userID uint64) (int, error) {
	return a.ledger.CountAllTime(ctx, userID)
}
