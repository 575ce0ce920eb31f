package leaderboard_test

import (
	"testing"

	"github.com/robalyx/havenhelper/internal/bot/leaderboard"
	"github.com/robalyx/havenhelper/internal/database/types"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/stretchr/testify/assert"
)

func pageOf(offset, rows, total int) *types.LeaderboardPage {
	page := &types.LeaderboardPage{Offset: offset, Total: total}
	for range rows {
		page.Rows = append(page.Rows, &types.LeaderboardRow{})
	}

	return page
}

func TestSessionTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		start      int
		activation leaderboard.Activation
		wantOK     bool
		wantPage   int
		wantScope  gratitude.Scope
	}{
		{
			name:       "prev on first page is a no-op",
			start:      0,
			activation: leaderboard.PrevPage(),
			wantOK:     false,
			wantPage:   0,
			wantScope:  gratitude.AllTime(),
		},
		{
			name:       "prev",
			start:      2,
			activation: leaderboard.PrevPage(),
			wantOK:     true,
			wantPage:   1,
			wantScope:  gratitude.AllTime(),
		},
		{
			name:       "next",
			start:      0,
			activation: leaderboard.NextPage(),
			wantOK:     true,
			wantPage:   1,
			wantScope:  gratitude.AllTime(),
		},
		{
			name:       "scope change resets the page",
			start:      3,
			activation: leaderboard.ScopeChanged(gratitude.Last30Days()),
			wantOK:     true,
			wantPage:   0,
			wantScope:  gratitude.Last30Days(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sess := leaderboard.NewSession(1, gratitude.AllTime())
			sess.Page = tt.start

			req, ok := sess.Apply(tt.activation)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPage, sess.Page)
			assert.Equal(t, tt.wantScope, sess.Scope)

			if tt.wantOK {
				assert.Equal(t, leaderboard.RenderRequest{Scope: tt.wantScope, Page: tt.wantPage}, req)
				assert.Equal(t, leaderboard.StateRendering, sess.State)
			} else {
				assert.Equal(t, leaderboard.StateIdle, sess.State)
			}
		})
	}
}

func TestSessionSettle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		page     int
		result   *types.LeaderboardPage
		wantPrev bool
		wantNext bool
	}{
		{name: "single short page", page: 0, result: pageOf(0, 3, 3), wantPrev: true, wantNext: true},
		{name: "first of several", page: 0, result: pageOf(0, 10, 25), wantPrev: true, wantNext: false},
		{name: "middle", page: 1, result: pageOf(10, 10, 25), wantPrev: false, wantNext: false},
		{name: "last partial", page: 2, result: pageOf(20, 5, 25), wantPrev: false, wantNext: true},
		{name: "exact boundary", page: 1, result: pageOf(10, 10, 20), wantPrev: false, wantNext: true},
		{name: "overshoot", page: 3, result: pageOf(30, 0, 25), wantPrev: false, wantNext: true},
		{name: "empty scope", page: 0, result: pageOf(0, 0, 0), wantPrev: true, wantNext: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sess := leaderboard.NewSession(1, gratitude.AllTime())
			sess.Page = tt.page
			sess.State = leaderboard.StateRendering

			sess.Settle(tt.result)

			assert.Equal(t, leaderboard.StateIdle, sess.State)
			assert.Equal(t, tt.wantPrev, sess.PrevDisabled)
			assert.Equal(t, tt.wantNext, sess.NextDisabled)

			controls := sess.Controls()
			assert.True(t, controls.Interactive)
			assert.Equal(t, tt.wantPrev, controls.PrevDisabled)
			assert.Equal(t, tt.wantNext, controls.NextDisabled)
		})
	}
}
