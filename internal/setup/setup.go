package setup

import (
	"context"
	"log"

	"github.com/robalyx/havenhelper/internal/database"
	"github.com/robalyx/havenhelper/internal/metrics"
	"github.com/robalyx/havenhelper/internal/redis"
	"github.com/robalyx/havenhelper/internal/setup/config"
	"github.com/robalyx/havenhelper/internal/setup/telemetry"
	"go.uber.org/zap"
)

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config        *config.Config     // Application configuration
	Logger        *zap.Logger        // Main application logger
	DBLogger      *zap.Logger        // Database-specific logger
	DB            database.Client    // Database connection pool
	RedisManager  *redis.Manager     // Redis connection manager
	LogManager    *telemetry.Manager // Log management system
	Metrics       *metrics.Metrics   // Prometheus collectors
	metricsServer *metrics.Server    // HTTP server for /metrics and /healthz
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(
	ctx context.Context, serviceType telemetry.ServiceType, logDir string, dbOpts ...database.Option,
) (*App, error) {
	// Load app configuration
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(serviceType, logDir, &cfg.Common.Debug)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	if cfg.Common.Telemetry.Tracing {
		dbOpts = append(dbOpts, database.WithTracing())
	}

	db, err := database.NewConnection(ctx, &cfg.Common.Database, dbLogger.Named("database"), dbOpts...)
	if err != nil {
		logManager.Close()
		return nil, err
	}

	// Redis manager provides connection pools for various subsystems
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	app := &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		LogManager:   logManager,
		Metrics:      metrics.New(),
	}

	// Metrics endpoint is optional and never blocks startup
	if addr := cfg.Common.Telemetry.MetricsAddr; addr != "" {
		srv, err := metrics.StartServer(addr, app.Metrics, db.Ping, logger)
		if err != nil {
			logger.Error("Failed to start metrics server", zap.String("addr", addr), zap.Error(err))
		} else {
			app.metricsServer = srv
		}
	}

	return app, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			s.Logger.Error("Failed to shutdown metrics server", zap.Error(err))
		}
	}

	// Close database connections
	if err := s.DB.Close(); err != nil {
		s.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	// Close Redis connections after the components that use them
	s.RedisManager.Close()

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}

	s.LogManager.Close()
}
