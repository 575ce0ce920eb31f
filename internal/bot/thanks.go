package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/havenhelper/internal/bot/builder/thanks"
	"github.com/robalyx/havenhelper/internal/bot/constants"
	"github.com/robalyx/havenhelper/internal/bot/interfaces"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/robalyx/havenhelper/internal/render"
	"go.uber.org/zap"
)

// thanksTarget is the member receiving thanks.
type thanksTarget struct {
	id      snowflake.ID
	name    string
	mention string
}

// handleGiveThanksCommand records thanks given through the slash command.
func (b *Bot) handleGiveThanksCommand(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	data := event.SlashCommandInteractionData()

	user, ok := data.OptUser(constants.UserOptionName)
	if !ok {
		b.reply(event, "Please choose a user to thank.", true)
		return
	}

	target := thanksTarget{id: user.ID, name: user.EffectiveName(), mention: user.Mention()}
	if member, ok := data.OptMember(constants.UserOptionName); ok {
		target.name = member.EffectiveName()
	}

	game, _ := data.OptString(constants.GameOptionName)
	note, _ := data.OptString(constants.MessageOptionName)

	b.giveThanks(ctx, event, target, game, note)
}

// handleGiveThanksUserCommand opens the give-thanks form for the selected member.
func (b *Bot) handleGiveThanksUserCommand(_ context.Context, event *events.ApplicationCommandInteractionCreate) {
	target := event.UserCommandInteractionData().TargetUser()

	if target.ID == event.User().ID {
		b.reply(event, "You can't thank yourself!", true)
		return
	}

	modal := discord.NewModalCreateBuilder().
		SetCustomID(constants.GiveThanksModalPrefix + target.ID.String()).
		SetTitle(constants.GiveThanksModalTitle).
		AddActionRow(
			discord.NewTextInput(constants.GameInputCustomID, discord.TextInputStyleShort, constants.GameInputLabel).
				WithRequired(false).
				WithMaxLength(constants.MaxGameInputLength),
		).
		AddActionRow(
			discord.NewTextInput(constants.NoteInputCustomID, discord.TextInputStyleParagraph, constants.NoteInputLabel).
				WithRequired(false).
				WithMaxLength(constants.MaxNoteInputLength),
		).
		Build()

	if err := event.Modal(modal); err != nil {
		b.logger.Error("Failed to open give thanks modal", zap.Error(err))
	}
}

// handleGiveThanksModal records thanks submitted through the form.
func (b *Bot) handleGiveThanksModal(ctx context.Context, event *events.ModalSubmitInteractionCreate) {
	rawID, ok := strings.CutPrefix(event.Data.CustomID, constants.GiveThanksModalPrefix)
	if !ok {
		b.logger.Warn("Unknown modal submitted", zap.String("custom_id", event.Data.CustomID))
		b.reply(event, "This form is no longer supported.", true)
		return
	}

	targetID, err := snowflake.Parse(rawID)
	if err != nil {
		b.logger.Warn("Invalid give thanks target", zap.String("custom_id", event.Data.CustomID), zap.Error(err))
		b.reply(event, "This form is no longer supported.", true)
		return
	}

	guildID := event.GuildID()
	if guildID == nil {
		b.reply(event, "This command can only be used in a server.", true)
		return
	}

	member, err := b.directory.ResolveMember(ctx, uint64(*guildID), uint64(targetID))
	if err != nil {
		if errors.Is(err, render.ErrMemberNotFound) {
			b.reply(event, "That member is no longer in this server.", true)
			return
		}

		b.logger.Error("Failed to resolve thanked member", zap.Uint64("user_id", uint64(targetID)), zap.Error(err))
		b.reply(event, "Failed to look up that member. Please try again.", true)
		return
	}

	target := thanksTarget{id: targetID, name: member.DisplayName, mention: discord.UserMention(targetID)}

	b.giveThanks(ctx, event,
		target, event.Data.Text(constants.GameInputCustomID), event.Data.Text(constants.NoteInputCustomID))
}

// giveThanks records the thanks, confirms it publicly and announces a crossed milestone.
func (b *Bot) giveThanks(
	ctx context.Context, event interfaces.MessageResponder, target thanksTarget, game, note string,
) {
	user := event.User()

	thankingName := user.EffectiveName()
	if member := event.Member(); member != nil {
		thankingName = member.EffectiveName()
	}

	result, err := b.service.GiveThanks(ctx, gratitude.ThanksRequest{
		ThankedID:    uint64(target.id),
		ThankedName:  target.name,
		ThankingID:   uint64(user.ID),
		ThankingName: thankingName,
		Game:         game,
		Note:         note,
	})
	if err != nil {
		switch {
		case errors.Is(err, gratitude.ErrSelfThanks):
			b.reply(event, "You can't thank yourself!", true)
		case errors.Is(err, gratitude.ErrGameTooLong):
			b.reply(event, "The game name can be at most "+strconv.Itoa(gratitude.MaxGameLength)+" characters.", true)
		case errors.Is(err, gratitude.ErrNoteTooLong):
			b.reply(event, "The message can be at most "+strconv.Itoa(gratitude.MaxNoteLength)+" characters.", true)
		default:
			b.logger.Error("Failed to give thanks",
				zap.Uint64("thanked_id", uint64(target.id)),
				zap.Uint64("thanking_id", uint64(user.ID)),
				zap.Error(err))
			b.reply(event, "Failed to record your thanks. Please try again.", true)
		}

		return
	}

	b.metrics.ThanksRecorded()
	b.reply(event, thanks.ThankedMessage(user.Mention(), target.mention, result.Fact.Game, result.Fact.Note), false)

	if result.Milestone != nil {
		b.announceMilestone(event, target, *result.Milestone)
	}
}

// announceMilestone posts the congratulation for a crossed milestone.
// Delivery problems are logged and never undo the recorded thanks.
func (b *Bot) announceMilestone(event interfaces.CommonEvent, target thanksTarget, m gratitude.Milestone) {
	b.metrics.MilestoneFired(m.Threshold)

	var roleMention string

	if roleID := snowflake.ID(b.config.Thanks.ModeratorRoleID); roleID != 0 {
		roleMention = discord.RoleMention(roleID)

		if guildID := event.GuildID(); guildID != nil {
			if role, ok := event.Client().Caches().Role(*guildID, roleID); ok {
				roleMention = role.Mention()
			} else {
				b.logger.Warn("Moderator role not found in cache",
					zap.Uint64("guild_id", uint64(*guildID)),
					zap.Uint64("role_id", uint64(roleID)))
			}
		}
	}

	b.followUp(event, thanks.MilestoneAnnouncement(target.mention, m, roleMention))

	b.logger.Info("Announced milestone",
		zap.Uint64("user_id", uint64(target.id)),
		zap.Int64("threshold", m.Threshold))
}
