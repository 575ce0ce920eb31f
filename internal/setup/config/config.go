package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrUnknownDriver         = errors.New("unknown database driver")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v1.0.0"

// Current version of the config file.
const (
	CurrentCommonVersion = 1
	CurrentBotVersion    = 1
)

// EnvPrefix is the prefix for environment variable overrides.
// A double underscore separates nested keys, e.g. HAVEN_BOT__DISCORD__TOKEN.
const EnvPrefix = "HAVEN_"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the entire application configuration.
type Config struct {
	Common CommonConfig `koanf:"common"`
	Bot    BotConfig    `koanf:"bot"`
}

// CommonConfig contains configuration shared between the bot and the db tool.
type CommonConfig struct {
	// Version of the common config.
	Version   int       `koanf:"version"`
	Debug     Debug     `koanf:"debug"`
	Database  Database  `koanf:"database"`
	Redis     Redis     `koanf:"redis"`
	Telemetry Telemetry `koanf:"telemetry"`
}

// BotConfig contains Discord bot specific configuration.
type BotConfig struct {
	// Version of the bot config.
	Version int `koanf:"version"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Discord configuration.
	Discord Discord `koanf:"discord"`
	// Thanks configuration.
	Thanks Thanks `koanf:"thanks"`
	// Leaderboard configuration.
	Leaderboard Leaderboard `koanf:"leaderboard"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// Database selects the storage backend.
type Database struct {
	// Driver is either "postgres" or "sqlite".
	Driver string `koanf:"driver"`
	// SQLite contains the embedded database settings.
	SQLite SQLite `koanf:"sqlite"`
	// PostgreSQL contains the server database settings.
	PostgreSQL PostgreSQL `koanf:"postgresql"`
}

// SQLite contains embedded database configuration.
type SQLite struct {
	// Path to the database file.
	Path string `koanf:"path"`
	// Busy timeout in milliseconds.
	BusyTimeout int `koanf:"busy_timeout"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
	// Maximum idle connections.
	MaxIdleConns int `koanf:"max_idle_conns"`
	// Connection lifetime in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	// Idle timeout in minutes.
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Telemetry contains metrics and tracing configuration.
type Telemetry struct {
	// Address for the metrics listener. Empty disables it.
	MetricsAddr string `koanf:"metrics_addr"`
	// Enable query tracing spans.
	Tracing bool `koanf:"tracing"`
}

// Discord contains Discord bot configuration.
type Discord struct {
	// Discord bot token for authentication.
	Token string `koanf:"token"`
	// Guild to register commands in. Zero registers them globally.
	GuildID uint64 `koanf:"guild_id"`
}

// Thanks contains configuration for the give-thanks flow.
type Thanks struct {
	// Role mentioned when a user reaches a milestone. Zero disables the mention.
	ModeratorRoleID uint64 `koanf:"moderator_role_id"`
}

// Leaderboard contains configuration for the interactive leaderboard.
type Leaderboard struct {
	// Idle timeout of a leaderboard session in seconds.
	SessionTimeout int `koanf:"session_timeout"`
	// Rows per page.
	PageSize int `koanf:"page_size"`
	// Maximum concurrent avatar downloads per render.
	AvatarConcurrency int `koanf:"avatar_concurrency"`
}

// LoadConfig loads the configuration from the default search paths.
// Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".havenhelper",
		homeDir + "/.havenhelper/config",
		"/etc/havenhelper/config",
		"/app/config",
		"config",
		".",
	}

	return LoadConfigFrom(configPaths)
}

// LoadConfigFrom loads common.toml and bot.toml from the first path containing each,
// then applies environment overrides.
func LoadConfigFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	configFiles := []string{"common", "bot"}
	for _, configName := range configFiles {
		configLoaded := false

		for _, path := range configPaths {
			configPath := fmt.Sprintf("%s/%s.toml", path, configName)

			// Each file is mounted under its own top-level key
			fileConf := koanf.New(".")
			if err := fileConf.Load(file.Provider(configPath), toml.Parser()); err != nil {
				continue
			}

			if err := k.MergeAt(fileConf, configName); err != nil {
				return nil, "", fmt.Errorf("failed to merge %s.toml: %w", configName, err)
			}

			configLoaded = true

			if usedConfigPath == "" {
				usedConfigPath = path
			}

			break
		}

		if !configLoaded {
			return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, configName)
		}
	}

	// Environment variables override file values
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Check versions for each config file
	if err := checkConfigVersion("common", config.Common.Version, CurrentCommonVersion); err != nil {
		return nil, "", err
	}

	if err := checkConfigVersion("bot", config.Bot.Version, CurrentBotVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	if err := config.Common.Database.validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// applyDefaults fills in values that were left empty in the config files.
func (c *Config) applyDefaults() {
	if c.Common.Debug.LogLevel == "" {
		c.Common.Debug.LogLevel = "info"
	}

	if c.Common.Debug.MaxLogsToKeep <= 0 {
		c.Common.Debug.MaxLogsToKeep = 10
	}

	if c.Common.Debug.MaxLogLines <= 0 {
		c.Common.Debug.MaxLogLines = 10000
	}

	if c.Common.Database.Driver == "" {
		c.Common.Database.Driver = DriverPostgres
	}

	if c.Common.Database.SQLite.BusyTimeout <= 0 {
		c.Common.Database.SQLite.BusyTimeout = 5000
	}

	if c.Bot.RequestTimeout <= 0 {
		c.Bot.RequestTimeout = 5000
	}

	if c.Bot.Leaderboard.SessionTimeout <= 0 {
		c.Bot.Leaderboard.SessionTimeout = 300
	}

	if c.Bot.Leaderboard.PageSize <= 0 {
		c.Bot.Leaderboard.PageSize = 10
	}

	if c.Bot.Leaderboard.AvatarConcurrency <= 0 {
		c.Bot.Leaderboard.AvatarConcurrency = 5
	}
}

// validate checks that the database section names a supported driver.
func (d *Database) validate() error {
	switch d.Driver {
	case DriverPostgres:
		return nil
	case DriverSQLite:
		if d.SQLite.Path == "" {
			return fmt.Errorf("%w: sqlite driver requires a path", ErrUnknownDriver)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, d.Driver)
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/havenhelper/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
