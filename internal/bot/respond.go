package bot

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/robalyx/havenhelper/internal/bot/interfaces"
	"github.com/robalyx/havenhelper/internal/bot/utils"
	"go.uber.org/zap"
)

// userMentionsOnly lets replies ping the users they name and nothing else.
var userMentionsOnly = &discord.AllowedMentions{
	Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
}

func newMessage(content string, ephemeral bool) discord.MessageCreate {
	return discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(ephemeral).
		SetAllowedMentions(userMentionsOnly).
		Build()
}

// reply answers an interaction that has not been responded to yet.
func (b *Bot) reply(event interfaces.MessageResponder, content string, ephemeral bool) {
	if err := event.CreateMessage(newMessage(content, ephemeral)); err != nil {
		b.logger.Error("Failed to send reply", zap.Error(err))
	}
}

// replyChunks sends the first chunk as the reply and the rest as follow-ups.
func (b *Bot) replyChunks(event interfaces.MessageResponder, chunks []string) {
	for i, chunk := range chunks {
		if i == 0 {
			b.reply(event, chunk, false)
			continue
		}

		b.followUp(event, newMessage(chunk, false))
	}
}

// followUp sends an additional message after the interaction was answered.
func (b *Bot) followUp(event interfaces.CommonEvent, message discord.MessageCreate) {
	_, err := event.Client().Rest().CreateFollowupMessage(event.ApplicationID(), event.Token(), message)
	if err != nil {
		b.logger.Error("Failed to send follow-up message", zap.Error(err))
	}
}

// replyPrivately replaces a deferred public response with an ephemeral message.
func (b *Bot) replyPrivately(event interfaces.CommonEvent, content string) {
	rest := event.Client().Rest()

	if err := rest.DeleteInteractionResponse(event.ApplicationID(), event.Token()); err != nil {
		b.logger.Warn("Failed to delete deferred response", zap.Error(err))
	}

	b.followUp(event, newMessage(content, true))
}

// respondWithError reports a failure whether or not the interaction was answered already.
// Component messages keep their image and controls and only show the error as content.
func (b *Bot) respondWithError(event interfaces.CommonEvent, message string) {
	switch e := event.(type) {
	case *events.ComponentInteractionCreate:
		update := discord.NewMessageUpdateBuilder().
			SetContent(utils.GetTimestampedSubtext(message)).
			RetainAttachments().
			Build()

		if _, err := e.Client().Rest().UpdateInteractionResponse(e.ApplicationID(), e.Token(), update); err != nil {
			b.logger.Error("Failed to update interaction response", zap.Error(err))
		}
	case interfaces.MessageResponder:
		if err := e.CreateMessage(newMessage(message, true)); err == nil {
			return
		}

		b.followUp(e, newMessage(message, true))
	}
}
