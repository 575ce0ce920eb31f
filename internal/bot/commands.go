package bot

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/json"
	"github.com/robalyx/havenhelper/internal/bot/constants"
)

// commandHandler answers one application command.
type commandHandler func(ctx context.Context, event *events.ApplicationCommandInteractionCreate)

// command binds a command definition to its handler.
type command struct {
	definition discord.ApplicationCommandCreate
	handler    commandHandler
}

// registerCommands builds the command table used for registration and dispatch.
func (b *Bot) registerCommands() {
	userOption := func(description string) discord.ApplicationCommandOption {
		return discord.ApplicationCommandOptionUser{
			Name:        constants.UserOptionName,
			Description: description,
			Required:    true,
		}
	}

	monthYearOptions := []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        constants.MonthOptionName,
			Description: "Month (1-12)",
		},
		discord.ApplicationCommandOptionInt{
			Name:        constants.YearOptionName,
			Description: "Year, e.g. 2025",
		},
	}

	commands := []command{
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.GiveThanksCommandName,
				Description: "Give thanks to another user for their help.",
				Options: []discord.ApplicationCommandOption{
					userOption("The user to thank"),
					discord.ApplicationCommandOptionString{
						Name:        constants.GameOptionName,
						Description: "The game they helped with",
						MaxLength:   json.Ptr(constants.MaxGameInputLength),
					},
					discord.ApplicationCommandOptionString{
						Name:        constants.MessageOptionName,
						Description: "A message for them",
						MaxLength:   json.Ptr(constants.MaxNoteInputLength),
					},
				},
			},
			handler: b.handleGiveThanksCommand,
		},
		{
			definition: discord.UserCommandCreate{
				Name: constants.GiveThanksUserCommandName,
			},
			handler: b.handleGiveThanksUserCommand,
		},
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.MostThankedTableCommandName,
				Description: "Shows the most thanked users as an image leaderboard.",
				Options:     monthYearOptions,
			},
			handler: b.handleMostThankedTable,
		},
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.MostThankedCommandName,
				Description: "Shows the most thanked users.",
				Options:     monthYearOptions,
			},
			handler: b.handleMostThanked,
		},
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.MostThankedFullCommandName,
				Description: "Shows the full all-time list of most thanked users.",
			},
			handler: b.handleMostThankedFull,
		},
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.ShowFeedbackCommandName,
				Description: "Shows the last 10 feedback messages received by a user.",
				Options:     []discord.ApplicationCommandOption{userOption("The user to show feedback for")},
			},
			handler: b.handleShowFeedback,
		},
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.SyncNameCommandName,
				Description: "Sync a member's display name across stored records.",
				Options:     []discord.ApplicationCommandOption{userOption("The member to sync")},
			},
			handler: b.handleSyncName,
		},
		{
			definition: discord.SlashCommandCreate{
				Name:        constants.HealthCheckCommandName,
				Description: "Checks the bot's status and health.",
			},
			handler: b.handleHealthCheck,
		},
	}

	b.commands = make(map[string]commandHandler, len(commands))
	b.definitions = make([]discord.ApplicationCommandCreate, 0, len(commands))

	for _, c := range commands {
		b.commands[c.definition.CommandName()] = c.handler
		b.definitions = append(b.definitions, c.definition)
	}
}
