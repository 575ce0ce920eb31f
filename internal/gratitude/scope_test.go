package gratitude_test

import (
	"testing"
	"time"

	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestScopeFromOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		month   *int
		year    *int
		want    gratitude.Scope
		wantErr error
	}{
		{name: "neither", want: gratitude.AllTime()},
		{name: "both", month: intPtr(7), year: intPtr(2025), want: gratitude.CalendarMonth(time.July, 2025)},
		{name: "month only", month: intPtr(7), wantErr: gratitude.ErrMonthYearPair},
		{name: "year only", year: intPtr(2025), wantErr: gratitude.ErrMonthYearPair},
		{name: "month zero", month: intPtr(0), year: intPtr(2025), wantErr: gratitude.ErrMonthRange},
		{name: "month thirteen", month: intPtr(13), year: intPtr(2025), wantErr: gratitude.ErrMonthRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := gratitude.ScopeFromOptions(tt.month, tt.year)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScopeKey(t *testing.T) {
	t.Parallel()

	scope, err := gratitude.ParseScopeKey("all")
	require.NoError(t, err)
	assert.Equal(t, gratitude.AllTime(), scope)

	scope, err = gratitude.ParseScopeKey("last30")
	require.NoError(t, err)
	assert.Equal(t, gratitude.Last30Days(), scope)

	_, err = gratitude.ParseScopeKey("month")
	require.ErrorIs(t, err, gratitude.ErrUnknownScope)
}

func TestScopeWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 12, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		scope gratitude.Scope
		want  types.Window
	}{
		{name: "all time", scope: gratitude.AllTime(), want: types.Window{}},
		{
			name:  "last 30 days",
			scope: gratitude.Last30Days(),
			want:  types.Window{From: now.AddDate(0, 0, -30), To: now},
		},
		{
			name:  "calendar month",
			scope: gratitude.CalendarMonth(time.February, 2024),
			want: types.Window{
				From: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "december rolls the year",
			scope: gratitude.CalendarMonth(time.December, 2024),
			want: types.Window{
				From: time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC),
				To:   time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.scope.Window(now)
			assert.True(t, tt.want.From.Equal(got.From), "from: want %v, got %v", tt.want.From, got.From)
			assert.True(t, tt.want.To.Equal(got.To), "to: want %v, got %v", tt.want.To, got.To)
		})
	}
}

func TestLast30DaysEdges(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.August, 12, 15, 30, 0, 0, time.UTC)
	window := gratitude.Last30Days().Window(now)

	assert.True(t, window.Contains(now.Add(-gratitude.RollingWindow)))
	assert.False(t, window.Contains(now.Add(-gratitude.RollingWindow-time.Nanosecond)))
	assert.True(t, window.Contains(now.Add(-time.Nanosecond)))
	assert.False(t, window.Contains(now))
}

func TestScopeLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Most thanked — All-time", gratitude.AllTime().Title())
	assert.Equal(t, "Most thanked — Last 30 days", gratitude.Last30Days().Title())
	assert.Equal(t, "Most thanked — Jul 2025", gratitude.CalendarMonth(time.July, 2025).Title())

	assert.Equal(t, "All-Time", gratitude.AllTime().LongLabel())
	assert.Equal(t, "July 2025", gratitude.CalendarMonth(time.July, 2025).LongLabel())

	assert.True(t, gratitude.AllTime().Interactive())
	assert.True(t, gratitude.Last30Days().Interactive())
	assert.False(t, gratitude.CalendarMonth(time.July, 2025).Interactive())

	assert.Equal(t, "all", gratitude.AllTime().Key())
	assert.Equal(t, "last30", gratitude.Last30Days().Key())
}
