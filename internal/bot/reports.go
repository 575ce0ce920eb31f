package bot

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/havenhelper/internal/bot/builder/status"
	"github.com/robalyx/havenhelper/internal/bot/builder/thanks"
	"github.com/robalyx/havenhelper/internal/bot/constants"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"go.uber.org/zap"
)

// handleMostThanked replies with the top recipients of a scope as text.
func (b *Bot) handleMostThanked(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	scope, ok := b.scopeFromCommand(event)
	if !ok {
		return
	}

	rows, err := b.aggregator.Rank(ctx, scope, constants.LeaderboardTextLimit, 0)
	if err != nil {
		b.logger.Error("Failed to rank thanks", zap.String("scope", scope.Key()), zap.Error(err))
		b.reply(event, "Failed to load the leaderboard. Please try again.", true)
		return
	}

	if len(rows) == 0 {
		b.reply(event, noThanksMessage(scope), true)
		return
	}

	b.reply(event, thanks.TopList(scope, rows), false)
}

// handleMostThankedFull replies with every all-time recipient, split across messages.
func (b *Bot) handleMostThankedFull(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	rows, err := b.aggregator.Rank(ctx, gratitude.AllTime(), 0, 0)
	if err != nil {
		b.logger.Error("Failed to rank all-time thanks", zap.Error(err))
		b.reply(event, "Failed to load the leaderboard. Please try again.", true)
		return
	}

	if len(rows) == 0 {
		b.reply(event, noThanksMessage(gratitude.AllTime()), true)
		return
	}

	b.replyChunks(event, thanks.FullList(rows))
}

// handleShowFeedback replies with the most recent thanks a user received.
func (b *Bot) handleShowFeedback(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	user, ok := event.SlashCommandInteractionData().OptUser(constants.UserOptionName)
	if !ok {
		b.reply(event, "Please choose a user.", true)
		return
	}

	facts, err := b.thanks.RecentFeedback(ctx, uint64(user.ID), constants.FeedbackEntriesPerQuery)
	if err != nil {
		b.logger.Error("Failed to load feedback", zap.Uint64("user_id", uint64(user.ID)), zap.Error(err))
		b.reply(event, "Failed to load feedback. Please try again.", true)
		return
	}

	chunks := thanks.Feedback(user.Username, facts)
	if len(chunks) == 0 {
		b.reply(event, thanks.NoFeedback(user.Mention()), false)
		return
	}

	b.replyChunks(event, chunks)
}

// handleSyncName rewrites the stored name snapshots of a member to their current name.
func (b *Bot) handleSyncName(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	if !canManageGuild(event.Member()) {
		b.reply(event, "You need the Manage Server permission to use this command.", true)
		return
	}

	data := event.SlashCommandInteractionData()

	user, ok := data.OptUser(constants.UserOptionName)
	if !ok {
		b.reply(event, "Please choose a member.", true)
		return
	}

	name := user.EffectiveName()
	if member, ok := data.OptMember(constants.UserOptionName); ok {
		name = member.EffectiveName()
	}

	thanked, thanking, err := b.thanks.SyncNames(ctx, uint64(user.ID), name)
	if err != nil {
		b.logger.Error("Failed to sync names", zap.Uint64("user_id", uint64(user.ID)), zap.Error(err))
		b.reply(event, "Failed to sync names. Please try again.", true)
		return
	}

	b.logger.Info("Synced names",
		zap.Uint64("user_id", uint64(user.ID)),
		zap.String("name", name),
		zap.Int64("thanked_rows", thanked),
		zap.Int64("thanking_rows", thanking))

	b.reply(event, "Synced names for "+user.Mention()+".", true)
}

// handleHealthCheck reports uptime, database connectivity and the command count.
func (b *Bot) handleHealthCheck(ctx context.Context, event *events.ApplicationCommandInteractionCreate) {
	pingCtx, cancel := context.WithTimeout(ctx, b.requestTimeout())
	defer cancel()

	err := b.db.Ping(pingCtx)
	if err != nil {
		b.logger.Warn("Health check database ping failed", zap.Error(err))
	}

	report := status.Report{
		Uptime:      time.Since(b.startedAt),
		DatabaseErr: err,
		Commands:    len(b.definitions),
	}

	b.reply(event, report.Build(), false)
}

// canManageGuild reports whether the invoking member may run moderation commands.
func canManageGuild(member *discord.ResolvedMember) bool {
	if member == nil {
		return false
	}

	return member.Permissions.Has(discord.PermissionAdministrator) ||
		member.Permissions.Has(discord.PermissionManageGuild)
}
