package gratitude_test

import (
	"testing"

	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/stretchr/testify/assert"
)

func TestCrossedMilestone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		before    int64
		after     int64
		wantOK    bool
		threshold int64
	}{
		{name: "first thanks", before: 0, after: 1},
		{name: "just below", before: 13, after: 14},
		{name: "reaches 15", before: 14, after: 15, wantOK: true, threshold: 15},
		{name: "past 15", before: 15, after: 16},
		{name: "reaches 50", before: 49, after: 50, wantOK: true, threshold: 50},
		{name: "reaches 100", before: 99, after: 100, wantOK: true, threshold: 100},
		{name: "past 100", before: 100, after: 101},
		{name: "burst picks lowest", before: 10, after: 60, wantOK: true, threshold: 15},
		{name: "empty interval", before: 15, after: 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, ok := gratitude.CrossedMilestone(tt.before, tt.after)
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.threshold, m.Threshold)
			}
		})
	}
}

func TestMilestonesFireOnceAcrossHistory(t *testing.T) {
	t.Parallel()

	fired := make(map[int64]int)

	for count := int64(1); count <= 150; count++ {
		if m, ok := gratitude.CrossedMilestone(count-1, count); ok {
			fired[m.Threshold]++
			assert.Equal(t, m.Threshold, count)
		}
	}

	assert.Equal(t, map[int64]int{15: 1, 50: 1, 100: 1}, fired)
}
