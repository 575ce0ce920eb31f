package leaderboard_test

import (
	"testing"

	"github.com/bytedance/sonic"
	builder "github.com/robalyx/havenhelper/internal/bot/builder/leaderboard"
	"github.com/robalyx/havenhelper/internal/bot/leaderboard"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireOption struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Default bool   `json:"default"`
}

type wireComponent struct {
	CustomID    string       `json:"custom_id"`
	Label       string       `json:"label"`
	Placeholder string       `json:"placeholder"`
	Disabled    bool         `json:"disabled"`
	Options     []wireOption `json:"options"`
}

type wireRow struct {
	Components []wireComponent `json:"components"`
}

type wireMessage struct {
	Embeds []struct {
		Color int `json:"color"`
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	} `json:"embeds"`
	Components []wireRow `json:"components"`
}

func decode(t *testing.T, view *leaderboard.View) wireMessage {
	t.Helper()

	update := builder.NewBuilder(view).Build().Build()

	require.Len(t, update.Files, 1)
	assert.Equal(t, "mostthanked.png", update.Files[0].Name)

	data, err := sonic.Marshal(update)
	require.NoError(t, err)

	var msg wireMessage
	require.NoError(t, sonic.Unmarshal(data, &msg))

	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "attachment://mostthanked.png", msg.Embeds[0].Image.URL)
	assert.Equal(t, 0x1ABC9C, msg.Embeds[0].Color)

	return msg
}

func TestBuildInteractiveControls(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		controls     leaderboard.ControlState
		placeholder  string
		defaultValue string
	}{
		{
			name: "first page of all-time",
			controls: leaderboard.ControlState{
				Interactive: true, Scope: gratitude.AllTime(), PrevDisabled: true, NextDisabled: false,
			},
			placeholder:  "All-time",
			defaultValue: "all",
		},
		{
			name: "last page of last 30 days",
			controls: leaderboard.ControlState{
				Interactive: true, Scope: gratitude.Last30Days(), PrevDisabled: false, NextDisabled: true,
			},
			placeholder:  "Last 30 days",
			defaultValue: "last30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := decode(t, &leaderboard.View{Image: []byte("png"), Controls: tt.controls})
			require.Len(t, msg.Components, 2)

			menu := msg.Components[0].Components
			require.Len(t, menu, 1)
			assert.Equal(t, "leaderboard_scope", menu[0].CustomID)
			assert.Equal(t, tt.placeholder, menu[0].Placeholder)
			require.Len(t, menu[0].Options, 2)

			for _, opt := range menu[0].Options {
				assert.Equal(t, opt.Value == tt.defaultValue, opt.Default, opt.Value)
			}

			assert.Equal(t, "All-time", menu[0].Options[0].Label)
			assert.Equal(t, "Last 30 days", menu[0].Options[1].Label)

			buttons := msg.Components[1].Components
			require.Len(t, buttons, 2)
			assert.Equal(t, "leaderboard_prev", buttons[0].CustomID)
			assert.Equal(t, "Prev", buttons[0].Label)
			assert.Equal(t, tt.controls.PrevDisabled, buttons[0].Disabled)
			assert.Equal(t, "leaderboard_next", buttons[1].CustomID)
			assert.Equal(t, "Next", buttons[1].Label)
			assert.Equal(t, tt.controls.NextDisabled, buttons[1].Disabled)
		})
	}
}

func TestBuildCalendarMonthHasNoControls(t *testing.T) {
	t.Parallel()

	msg := decode(t, &leaderboard.View{Image: []byte("png")})
	assert.Empty(t, msg.Components)
}
