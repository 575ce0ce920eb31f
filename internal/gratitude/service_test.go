package gratitude_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func thanks(thanked, thanking uint64) gratitude.ThanksRequest {
	return gratitude.ThanksRequest{
		ThankedID:    thanked,
		ThankedName:  "thanked",
		ThankingID:   thanking,
		ThankingName: "thanking",
	}
}

func TestGiveThanksValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*gratitude.ThanksRequest)
		wantErr error
	}{
		{
			name:    "self thanks",
			modify:  func(r *gratitude.ThanksRequest) { r.ThankingID = r.ThankedID },
			wantErr: gratitude.ErrSelfThanks,
		},
		{
			name:    "game too long",
			modify:  func(r *gratitude.ThanksRequest) { r.Game = strings.Repeat("g", gratitude.MaxGameLength+1) },
			wantErr: gratitude.ErrGameTooLong,
		},
		{
			name:    "note too long",
			modify:  func(r *gratitude.ThanksRequest) { r.Note = strings.Repeat("n", gratitude.MaxNoteLength+1) },
			wantErr: gratitude.ErrNoteTooLong,
		},
		{
			name:    "missing name",
			modify:  func(r *gratitude.ThanksRequest) { r.ThankedName = "" },
			wantErr: gratitude.ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ledger := newMemoryLedger()
			svc := gratitude.NewService(ledger, zap.NewNop())

			req := thanks(1, 2)
			tt.modify(&req)

			result, err := svc.GiveThanks(t.Context(), req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Zero(t, ledger.factCount())
		})
	}
}

func TestGiveThanksLimitsCountCharacters(t *testing.T) {
	t.Parallel()

	svc := gratitude.NewService(newMemoryLedger(), zap.NewNop())

	req := thanks(1, 2)
	req.Game = strings.Repeat("é", gratitude.MaxGameLength)
	req.Note = strings.Repeat("🎮", gratitude.MaxNoteLength)

	_, err := svc.GiveThanks(t.Context(), req)
	require.NoError(t, err)
}

func TestGiveThanksTrimsOptionalFields(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.June, 3, 10, 0, 0, 0, time.UTC)
	svc := gratitude.NewService(newMemoryLedger(), zap.NewNop(), gratitude.WithClock(func() time.Time { return at }))

	req := thanks(1, 2)
	req.Game = "   "
	req.Note = "  thanks for the carry  "

	result, err := svc.GiveThanks(t.Context(), req)
	require.NoError(t, err)

	assert.Empty(t, result.Fact.Game)
	assert.Equal(t, "thanks for the carry", result.Fact.Note)
	assert.True(t, result.Fact.CreatedAt.Equal(at))
	assert.Equal(t, int64(0), result.Counts.Before)
	assert.Equal(t, int64(1), result.Counts.After)
	assert.Nil(t, result.Milestone)
}

func TestGiveThanksStoreError(t *testing.T) {
	t.Parallel()

	ledger := newMemoryLedger()
	ledger.err = errors.New("connection reset")
	svc := gratitude.NewService(ledger, zap.NewNop())

	_, err := svc.GiveThanks(t.Context(), thanks(1, 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGiveThanksMilestoneScenario(t *testing.T) {
	t.Parallel()

	const (
		userA uint64 = 10
		userD uint64 = 40
		giver uint64 = 99
	)

	ledger := newMemoryLedger()
	svc := gratitude.NewService(ledger, zap.NewNop())

	var fired []int64

	give := func(user uint64) {
		t.Helper()

		result, err := svc.GiveThanks(t.Context(), thanks(user, giver))
		require.NoError(t, err)

		if result.Milestone != nil {
			fired = append(fired, result.Milestone.Threshold)
		}
	}

	for range 20 {
		give(userA)
	}

	require.Equal(t, []int64{15}, fired)

	// A goes to 21, nothing re-fires
	give(userA)
	assert.Equal(t, []int64{15}, fired)

	for range 14 {
		give(userD)
	}

	assert.Equal(t, []int64{15}, fired)

	// D goes from 14 to 15
	give(userD)
	assert.Equal(t, []int64{15, 15}, fired)
}
