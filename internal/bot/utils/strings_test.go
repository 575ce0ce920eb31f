package utils_test

import (
	"strings"
	"testing"
	"time"

	"github.com/robalyx/havenhelper/internal/bot/utils"
	"github.com/stretchr/testify/assert"
)

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		lines  []string
		limit  int
		want   []string
	}{
		{
			name:   "header only",
			header: "**Title:**",
			lines:  nil,
			limit:  100,
			want:   []string{"**Title:**"},
		},
		{
			name:   "fits in one message",
			header: "H",
			lines:  []string{"a", "b"},
			limit:  100,
			want:   []string{"H\na\nb"},
		},
		{
			name:   "flushes before the overflowing line",
			header: "H",
			lines:  []string{"aaaa", "bbbb", "cccc"},
			limit:  10,
			want:   []string{"H\naaaa", "bbbb\ncccc"},
		},
		{
			name:   "counts characters not bytes",
			header: "🎉",
			lines:  []string{"🎉🎉🎉", "🎉🎉🎉"},
			limit:  10,
			want:   []string{"🎉\n🎉🎉🎉\n🎉🎉🎉"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := utils.SplitMessage(tt.header, tt.lines, tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitMessageKeepsEveryLine(t *testing.T) {
	t.Parallel()

	lines := make([]string, 300)
	for i := range lines {
		lines[i] = strings.Repeat("x", 40)
	}

	chunks := utils.SplitMessage("**Most Thanked Users (All-Time Full List):**", lines, 1900)
	assert.Greater(t, len(chunks), 1)

	total := 0
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 1900)
		total += strings.Count(chunk, strings.Repeat("x", 40))
	}

	assert.Equal(t, 300, total)
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "0:00:00"},
		{name: "negative", d: -time.Second, want: "0:00:00"},
		{name: "hours minutes seconds", d: time.Hour + 2*time.Minute + 5*time.Second, want: "1:02:05"},
		{name: "truncates fractions", d: 59*time.Second + 900*time.Millisecond, want: "0:00:59"},
		{name: "one day", d: 25 * time.Hour, want: "1 day, 1:00:00"},
		{name: "several days", d: 48*time.Hour + 5*time.Second, want: "2 days, 0:00:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, utils.FormatUptime(tt.d))
		})
	}
}
