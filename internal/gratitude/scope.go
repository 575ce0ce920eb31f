package gratitude

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/havenhelper/internal/database/types"
)

var (
	// ErrMonthYearPair indicates only one of month and year was supplied.
	ErrMonthYearPair = errors.New("month and year must be provided together")
	// ErrMonthRange indicates a month outside 1-12.
	ErrMonthRange = errors.New("month must be between 1 and 12")
	// ErrUnknownScope indicates a scope key that is not recognized.
	ErrUnknownScope = errors.New("unknown leaderboard scope")
)

// RollingWindow is the length of the Last30Days scope.
const RollingWindow = 30 * 24 * time.Hour

// ScopeKind identifies the time window a leaderboard is computed over.
type ScopeKind int

const (
	ScopeAllTime ScopeKind = iota
	ScopeLast30Days
	ScopeCalendarMonth
)

// Scope keys used by the scope selector.
const (
	ScopeKeyAllTime = "all"
	ScopeKeyLast30  = "last30"
	ScopeKeyMonth   = "month"
)

// Scope is the time window of a leaderboard query.
type Scope struct {
	Kind  ScopeKind  `json:"kind"`
	Month time.Month `json:"month,omitempty"`
	Year  int        `json:"year,omitempty"`
}

// AllTime returns the unfiltered scope.
func AllTime() Scope {
	return Scope{Kind: ScopeAllTime}
}

// Last30Days returns the rolling thirty day scope.
func Last30Days() Scope {
	return Scope{Kind: ScopeLast30Days}
}

// CalendarMonth returns the scope covering a single UTC calendar month.
func CalendarMonth(month time.Month, year int) Scope {
	return Scope{Kind: ScopeCalendarMonth, Month: month, Year: year}
}

// ScopeFromOptions builds a scope from optional month and year command options.
// Both absent selects all-time.
func ScopeFromOptions(month, year *int) (Scope, error) {
	switch {
	case month == nil && year == nil:
		return AllTime(), nil
	case month == nil || year == nil:
		return Scope{}, ErrMonthYearPair
	case *month < 1 || *month > 12:
		return Scope{}, fmt.Errorf("%w: got %d", ErrMonthRange, *month)
	}

	return CalendarMonth(time.Month(*month), *year), nil
}

// ParseScopeKey converts a selector value into a scope.
func ParseScopeKey(key string) (Scope, error) {
	switch key {
	case ScopeKeyAllTime:
		return AllTime(), nil
	case ScopeKeyLast30:
		return Last30Days(), nil
	default:
		return Scope{}, fmt.Errorf("%w: %q", ErrUnknownScope, key)
	}
}

// Key returns the selector value of the scope.
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeLast30Days:
		return ScopeKeyLast30
	case ScopeCalendarMonth:
		return ScopeKeyMonth
	case ScopeAllTime:
	}

	return ScopeKeyAllTime
}

// Interactive reports whether the scope is paged through a session.
// Calendar months are rendered once without controls.
func (s Scope) Interactive() bool {
	return s.Kind != ScopeCalendarMonth
}

// Window maps the scope to a half-open UTC interval as observed at now.
func (s Scope) Window(now time.Time) types.Window {
	switch s.Kind {
	case ScopeLast30Days:
		now = now.UTC()
		return types.Window{From: now.Add(-RollingWindow), To: now}
	case ScopeCalendarMonth:
		from := time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, time.UTC)
		return types.Window{From: from, To: from.AddDate(0, 1, 0)}
	case ScopeAllTime:
	}

	return types.Window{}
}

// Label returns the short human label used in image titles.
func (s Scope) Label() string {
	switch s.Kind {
	case ScopeLast30Days:
		return "Last 30 days"
	case ScopeCalendarMonth:
		return fmt.Sprintf("%s %d", s.Month.String()[:3], s.Year)
	case ScopeAllTime:
	}

	return "All-time"
}

// LongLabel returns the label used in text listings.
func (s Scope) LongLabel() string {
	if s.Kind == ScopeCalendarMonth {
		return fmt.Sprintf("%s %d", s.Month, s.Year)
	}

	return "All-Time"
}

// Title returns the leaderboard image title.
func (s Scope) Title() string {
	return "Most thanked — " + s.Label()
}

func (s Scope) String() string {
	return s.Label()
}
