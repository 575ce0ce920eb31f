package events

import (
	"github.com/disgoorg/disgo/events"
	"go.uber.org/zap"
)

// GuildEventHandler logs the guilds the bot joins and leaves.
type GuildEventHandler struct {
	logger *zap.Logger
}

// NewGuildEventHandler creates a new instance of the guild event handler.
func NewGuildEventHandler(logger *zap.Logger) *GuildEventHandler {
	return &GuildEventHandler{
		logger: logger.Named("guild_events"),
	}
}

// OnGuildJoin handles the event when the bot joins a new guild.
func (h *GuildEventHandler) OnGuildJoin(event *events.GuildJoin) {
	h.logger.Info("Bot joined a new guild",
		zap.String("guild_id", event.Guild.ID.String()),
		zap.String("guild_name", event.Guild.Name))
}

// OnGuildLeave handles the event when the bot is removed from a guild.
func (h *GuildEventHandler) OnGuildLeave(event *events.GuildLeave) {
	h.logger.Info("Bot left a guild",
		zap.String("guild_id", event.GuildID.String()),
		zap.String("guild_name", event.Guild.Name))
}
