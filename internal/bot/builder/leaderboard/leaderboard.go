package leaderboard

import (
	"bytes"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/havenhelper/internal/bot/constants"
	"github.com/robalyx/havenhelper/internal/bot/leaderboard"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/robalyx/havenhelper/internal/render"
)

// selectableScopes are the scopes offered by the scope menu, in display order.
var selectableScopes = []gratitude.Scope{gratitude.AllTime(), gratitude.Last30Days()}

// Builder creates the message showing a rendered leaderboard page.
type Builder struct {
	view *leaderboard.View
}

// NewBuilder creates a new leaderboard builder.
func NewBuilder(view *leaderboard.View) *Builder {
	return &Builder{view: view}
}

// Build creates the message update replacing the image and controls.
func (b *Builder) Build() *discord.MessageUpdateBuilder {
	builder := discord.NewMessageUpdateBuilder().
		SetContent("").
		SetEmbeds(b.buildEmbed()).
		SetFiles(discord.NewFile(render.AttachmentName, "", bytes.NewReader(b.view.Image)))

	if b.view.Controls.Interactive {
		builder.AddContainerComponents(b.buildComponents()...)
	} else {
		builder.ClearContainerComponents()
	}

	return builder
}

func (b *Builder) buildEmbed() discord.Embed {
	return discord.NewEmbedBuilder().
		SetImage("attachment://" + render.AttachmentName).
		SetColor(constants.DefaultEmbedColor).
		Build()
}

// buildComponents creates the scope menu and the page buttons.
func (b *Builder) buildComponents() []discord.ContainerComponent {
	controls := b.view.Controls

	options := make([]discord.StringSelectMenuOption, 0, len(selectableScopes))
	for _, scope := range selectableScopes {
		options = append(options,
			discord.NewStringSelectMenuOption(scope.Label(), scope.Key()).
				WithDefault(scope == controls.Scope))
	}

	return []discord.ContainerComponent{
		discord.NewActionRow(
			discord.NewStringSelectMenu(constants.LeaderboardScopeSelectCustomID, controls.Scope.Label(), options...),
		),
		discord.NewActionRow(
			discord.NewSecondaryButton(constants.LeaderboardPrevButtonLabel, constants.LeaderboardPrevButtonCustomID).
				WithDisabled(controls.PrevDisabled),
			discord.NewSecondaryButton(constants.LeaderboardNextButtonLabel, constants.LeaderboardNextButtonCustomID).
				WithDisabled(controls.NextDisabled),
		),
	}
}
