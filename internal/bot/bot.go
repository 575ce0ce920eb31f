package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/havenhelper/internal/bot/directory"
	botEvents "github.com/robalyx/havenhelper/internal/bot/events"
	"github.com/robalyx/havenhelper/internal/bot/leaderboard"
	"github.com/robalyx/havenhelper/internal/bot/session"
	"github.com/robalyx/havenhelper/internal/database"
	"github.com/robalyx/havenhelper/internal/database/models"
	"github.com/robalyx/havenhelper/internal/gratitude"
	"github.com/robalyx/havenhelper/internal/metrics"
	"github.com/robalyx/havenhelper/internal/redis"
	"github.com/robalyx/havenhelper/internal/render"
	"github.com/robalyx/havenhelper/internal/setup/config"
	"go.uber.org/zap"
)

// internalErrorMessage is shown when a handler panics.
const internalErrorMessage = "Internal error. Please report this to an administrator."

// interactionLifetime is how long Discord accepts responses to an interaction token.
const interactionLifetime = 15 * time.Minute

// Bot handles the Discord client and the services behind each command.
// Every interaction is processed on its own goroutine.
type Bot struct {
	config      *config.BotConfig
	db          database.Client
	thanks      *models.ThanksModel
	client      bot.Client
	service     *gratitude.Service
	aggregator  *gratitude.Aggregator
	controller  *leaderboard.Controller
	directory   *directory.Directory
	metrics     *metrics.Metrics
	logger      *zap.Logger
	commands    map[string]commandHandler
	definitions []discord.ApplicationCommandCreate
	startedAt   time.Time
}

// New initializes a Bot instance by creating the gratitude services, the
// leaderboard controller and the Discord client with its event listeners.
func New(
	cfg *config.BotConfig,
	db database.Client,
	redisManager *redis.Manager,
	m *metrics.Metrics,
	logger *zap.Logger,
) (*Bot, error) {
	sessionClient, err := redisManager.GetClient(redis.SessionDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get session redis client: %w", err)
	}

	thanks := db.Model().Thanks()

	b := &Bot{
		config:     cfg,
		db:         db,
		thanks:     thanks,
		service:    gratitude.NewService(thanks, logger),
		aggregator: gratitude.NewAggregator(thanks, cfg.Leaderboard.PageSize),
		metrics:    m,
		logger:     logger.Named("bot"),
		startedAt:  time.Now(),
	}
	b.registerCommands()
	warnMissingSettings(cfg, b.logger)

	guildEvents := botEvents.NewGuildEventHandler(logger)

	// Configure Discord client with required gateway intents and event handlers
	client, err := disgo.New(cfg.Discord.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMembers,
			),
		),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnGuildJoin:                     guildEvents.OnGuildJoin,
			OnGuildLeave:                    guildEvents.OnGuildLeave,
			OnApplicationCommandInteraction: b.handleApplicationCommandInteraction,
			OnComponentInteraction:          b.handleComponentInteraction,
			OnModalSubmit:                   b.handleModalSubmit,
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client
	b.directory = directory.New(client.Caches(), client.Rest(), &http.Client{
		Timeout: b.requestTimeout(),
	}, logger)

	renderer, err := render.NewRenderer(b.directory, cfg.Leaderboard.AvatarConcurrency, m, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	store := session.NewManager[leaderboard.Session](
		sessionClient, time.Duration(cfg.Leaderboard.SessionTimeout)*time.Second, logger,
	)
	b.controller = leaderboard.NewController(b.aggregator, renderer, store, logger)

	return b, nil
}

// Start registers the commands with Discord and opens the gateway connection.
// Commands go to the configured guild when one is set, globally otherwise.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Registering commands", zap.Int("count", len(b.definitions)))

	var err error
	if b.config.Discord.GuildID != 0 {
		_, err = b.client.Rest().SetGuildCommands(
			b.client.ApplicationID(), snowflake.ID(b.config.Discord.GuildID), b.definitions,
		)
	} else {
		_, err = b.client.Rest().SetGlobalCommands(b.client.ApplicationID(), b.definitions)
	}

	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	b.logger.Info("Starting bot")
	return b.client.OpenGateway(ctx)
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.client.Close(context.Background())
}

// handleApplicationCommandInteraction dispatches slash and user commands in a goroutine.
func (b *Bot) handleApplicationCommandInteraction(event *events.ApplicationCommandInteractionCreate) {
	go func() {
		start := time.Now()
		name := event.Data.CommandName()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in application command interaction handler", zap.Any("panic", r))
				b.respondWithError(event, internalErrorMessage)
			}
			duration := time.Since(start)
			b.logger.Debug("Application command interaction handled",
				zap.String("command", name),
				zap.Duration("duration", duration))
		}()

		b.metrics.Interaction("command")

		handler, ok := b.commands[name]
		if !ok {
			b.reply(event, "This command is not available.", true)
			return
		}

		if event.GuildID() == nil {
			b.reply(event, "This command can only be used in a server.", true)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), interactionLifetime)
		defer cancel()

		handler(ctx, event)
	}()
}

// handleComponentInteraction processes leaderboard controls.
// The activation takes its place in the session's lane before the listener
// returns, so activations apply in the order the gateway delivered them.
// The acknowledgement is sent at once and the page is rendered in the lane.
func (b *Bot) handleComponentInteraction(event *events.ComponentInteractionCreate) {
	start := time.Now()
	customID := event.Data.CustomID()

	b.metrics.Interaction("component")

	acked := make(chan error, 1)
	go func() {
		acked <- event.DeferUpdateMessage()
	}()

	activation, err := activationFromComponent(event)
	if err != nil {
		b.logger.Debug("Ignoring component interaction",
			zap.String("custom_id", customID),
			zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionLifetime)
	messageID := uint64(event.Message.ID)

	done := b.controller.Submit(ctx, messageID, activation, func(view *leaderboard.View, err error) error {
		if ackErr := <-acked; ackErr != nil {
			b.logger.Error("Failed to defer update message", zap.Error(ackErr))
			return nil
		}

		return b.presentLeaderboard(event, messageID, view, err)
	})

	go func() {
		defer cancel()

		if panicErr := <-done; panicErr != nil {
			b.logger.Error("Panic in component interaction handler", zap.Error(panicErr))
			b.respondWithError(event, internalErrorMessage)
		}

		b.logger.Debug("Component interaction handled",
			zap.String("custom_id", customID),
			zap.Duration("duration", time.Since(start)))
	}()
}

// handleModalSubmit processes the give-thanks form in a goroutine.
func (b *Bot) handleModalSubmit(event *events.ModalSubmitInteractionCreate) {
	go func() {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("Panic in modal submit interaction handler", zap.Any("panic", r))
				b.respondWithError(event, internalErrorMessage)
			}
			duration := time.Since(start)
			b.logger.Debug("Modal submit interaction handled",
				zap.String("custom_id", event.Data.CustomID),
				zap.Duration("duration", duration))
		}()

		b.metrics.Interaction("modal")

		ctx, cancel := context.WithTimeout(context.Background(), interactionLifetime)
		defer cancel()

		b.handleGiveThanksModal(ctx, event)
	}()
}

// warnMissingSettings logs optional settings whose absence changes behavior.
func warnMissingSettings(cfg *config.BotConfig, logger *zap.Logger) {
	if cfg.Thanks.ModeratorRoleID == 0 {
		logger.Warn("thanks.moderator_role_id is not set; milestone announcements will not ask moderators to award the role")
	}

	if cfg.Discord.GuildID == 0 {
		logger.Info("discord.guild_id is not set; commands are registered globally")
	}
}

// requestTimeout bounds a single outbound request.
func (b *Bot) requestTimeout() time.Duration {
	return time.Duration(b.config.RequestTimeout) * time.Millisecond
}
