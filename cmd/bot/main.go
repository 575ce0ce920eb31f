package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robalyx/havenhelper/internal/bot"
	"github.com/robalyx/havenhelper/internal/database"
	"github.com/robalyx/havenhelper/internal/setup"
	"github.com/robalyx/havenhelper/internal/setup/telemetry"
)

const (
	// BotLogDir specifies where bot log files are stored.
	BotLogDir = "logs/bot_logs"
	// shutdownTimeout bounds the graceful cleanup after a signal.
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Initialize application with required dependencies
	app, err := setup.InitializeApp(ctx, telemetry.ServiceBot, BotLogDir, database.WithAutoMigrate())
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.Cleanup(cleanupCtx)
	}()

	// Create bot instance
	discordBot, err := bot.New(&app.Config.Bot, app.DB, app.RedisManager, app.Metrics, app.Logger)
	if err != nil {
		log.Printf("Failed to create bot: %v", err)
		return
	}

	// Start the bot and connect to Discord
	if err := discordBot.Start(ctx); err != nil {
		log.Printf("Failed to start bot: %v", err)
		return
	}

	log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

	<-ctx.Done()

	// Cleanly close down the Discord session
	discordBot.Close()
}
