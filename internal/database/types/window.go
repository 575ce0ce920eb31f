package types

import (
	"time"

	"github.com/uptrace/bun"
)

// Window is a half-open interval [From, To) over fact timestamps.
// A zero bound is unbounded on that side.
type Window struct {
	From time.Time
	To   time.Time
}

// IsUnbounded reports whether the window matches every fact.
func (w Window) IsUnbounded() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Contains reports whether ts lies inside the window.
func (w Window) Contains(ts time.Time) bool {
	if !w.From.IsZero() && ts.Before(w.From) {
		return false
	}

	if !w.To.IsZero() && !ts.Before(w.To) {
		return false
	}

	return true
}

// Apply restricts a select query on the given timestamp column to the window.
func (w Window) Apply(q *bun.SelectQuery, column string) *bun.SelectQuery {
	if !w.From.IsZero() {
		q = q.Where("? >= ?", bun.Ident(column), w.From.UTC())
	}

	if !w.To.IsZero() {
		q = q.Where("? < ?", bun.Ident(column), w.To.UTC())
	}

	return q
}
