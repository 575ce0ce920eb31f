package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	builder "github.com/robalyx/havenhelper/internal/bot/builder/leaderboard"
	"github.com/robalyx/havenhelper/internal/bot/constants"
	"github.com/robalyx/havenhelper/internal/bot/leaderboard"
	"github.com/robalyx/havenhelper/internal/bot/session"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"go.uber.org/zap"
)

// scopeFromCommand reads the optional month and year options of a command.
// It answers the user and returns false when the pair is invalid.
func (b *Bot) scopeFromCommand(event *events.ApplicationCommandInteractionCreate) (gratitude.Scope, bool) {
	data := event.SlashCommandInteractionData()

	var month, year *int
	if v, ok := data.OptInt(constants.MonthOptionName); ok {
		month = &v
	}
	if v, ok := data.OptInt(constants.YearOptionName); ok {
		year = &v
	}

	scope, err := gratitude.ScopeFromOptions(month, year)
	switch {
	case errors.Is(err, gratitude.ErrMonthYearPair):
		b.reply(event, "Please provide **both** month and year, or neither.", true)
		return gratitude.Scope{}, false
	case errors.Is(err, gratitude.ErrMonthRange):
		b.reply(event, "Month must be between 1 and 12.", true)
		return gratitude.Scope{}, false
	case err != nil:
		b.logger.Error("Failed to read leaderboard scope", zap.Error(err))
		b.reply(event, "Invalid month or year.", true)
		return gratitude.Scope{}, false
	}

	return scope, true
}

// noThanksMessage is shown when a scope has no rows at all.
func noThanksMessage(scope gratitude.Scope) string {
	if scope.Interactive() {
		return "No thanks recorded yet."
	}

	return "No thanks recorded for **" + scope.LongLabel() + "**."
}

// handleMostThankedTable posts the image leaderboard and binds its session.
func (b *Bot) handleMostThankedTable(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	scope, ok := b.scopeFromCommand(event)
	if !ok {
		return
	}

	if err := event.DeferCreateMessage(false); err != nil {
		b.logger.Error("Failed to defer leaderboard response", zap.Error(err))
		return
	}

	guildID := uint64(*event.GuildID())

	view, sess, err := b.controller.Open(ctx, guildID, scope)
	if err != nil {
		if errors.Is(err, leaderboard.ErrNoThanks) {
			b.replyPrivately(event, noThanksMessage(scope))
			return
		}

		b.logger.Error("Failed to open leaderboard",
			zap.String("scope", scope.Key()),
			zap.Error(err))
		b.replyPrivately(event, "Failed to build the leaderboard. Please try again.")
		return
	}

	message, err := event.Client().Rest().UpdateInteractionResponse(
		event.ApplicationID(), event.Token(), builder.NewBuilder(view).Build().Build(),
	)
	if err != nil {
		b.logger.Error("Failed to send leaderboard", zap.Error(err))
		return
	}

	if sess == nil {
		return
	}

	if err := b.controller.Bind(ctx, uint64(message.ID), sess); err != nil {
		b.logger.Error("Failed to bind leaderboard session",
			zap.Uint64("message_id", uint64(message.ID)),
			zap.Error(err))
	}
}

// activationFromComponent maps a control interaction to a session activation.
func activationFromComponent(event *events.ComponentInteractionCreate) (leaderboard.Activation, error) {
	switch event.Data.CustomID() {
	case constants.LeaderboardPrevButtonCustomID:
		return leaderboard.PrevPage(), nil
	case constants.LeaderboardNextButtonCustomID:
		return leaderboard.NextPage(), nil
	case constants.LeaderboardScopeSelectCustomID:
		values := event.StringSelectMenuInteractionData().Values
		if len(values) == 0 {
			return leaderboard.Activation{}, gratitude.ErrUnknownScope
		}

		scope, err := gratitude.ParseScopeKey(values[0])
		if err != nil {
			return leaderboard.Activation{}, err
		}

		return leaderboard.ScopeChanged(scope), nil
	}

	return leaderboard.Activation{}, errUnknownComponent
}

var errUnknownComponent = errors.New("unknown component")

// presentLeaderboard shows the outcome of an activation on the leaderboard message.
// It runs inside the session's lane after the interaction was acknowledged.
func (b *Bot) presentLeaderboard(
	event *events.ComponentInteractionCreate, messageID uint64, view *leaderboard.View, err error,
) error {
	switch {
	case errors.Is(err, session.ErrSessionExpired), errors.Is(err, leaderboard.ErrNoChange):
		return nil
	case err != nil:
		b.logger.Error("Failed to update leaderboard",
			zap.Uint64("message_id", messageID),
			zap.Error(err))
		b.respondWithError(event, "Failed to update the leaderboard. Please try again.")
		return nil
	}

	_, err = event.Client().Rest().UpdateInteractionResponse(
		event.ApplicationID(), event.Token(), builder.NewBuilder(view).Build().Build(),
	)
	if err != nil {
		var restErr *rest.Error
		if errors.As(err, &restErr) && restErr.Code == rest.JSONErrorCode(10008) {
			return leaderboard.ErrMessageGone
		}

		return fmt.Errorf("failed to update leaderboard message: %w", err)
	}

	return nil
}
