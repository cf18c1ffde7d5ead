package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

// ServerConfig holds the transport listener settings.
type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig configures the WebSocket endpoint.
type WebSocketConfig struct {
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig configures the optional results database. When disabled the
// server runs fully in memory and game results are not persisted.
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// GameConfig holds the tunable game rules.
type GameConfig struct {
	InitialHand      int `mapstructure:"initial_hand"`
	HandLimit        int `mapstructure:"hand_limit"`
	LandLimit        int `mapstructure:"land_limit"`
	DeckSizePerColor int `mapstructure:"deck_size_per_color"`
	GiftsInDisplay   int `mapstructure:"gifts_in_display"`
	GiftPoolSize     int `mapstructure:"gift_pool_size"`
}

// Load reads configuration from the given file, applying defaults and
// environment variable overrides with the SHOWDOWN_ prefix.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("SHOWDOWN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults and environment overrides.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("game.initial_hand", 5)
	v.SetDefault("game.hand_limit", 7)
	v.SetDefault("game.land_limit", 10)
	v.SetDefault("game.deck_size_per_color", 12)
	v.SetDefault("game.gifts_in_display", 8)
	v.SetDefault("game.gift_pool_size", 24)
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.WebSocket.Address == "" {
		return fmt.Errorf("server.websocket.address must not be empty")
	}
	if c.Database.Enabled && c.Database.URL == "" {
		return fmt.Errorf("database.url is required when database.enabled is true")
	}
	if c.Game.InitialHand <= 0 {
		return fmt.Errorf("game.initial_hand must be positive")
	}
	if c.Game.HandLimit < c.Game.InitialHand {
		return fmt.Errorf("game.hand_limit must be at least game.initial_hand")
	}
	if c.Game.LandLimit <= 0 {
		return fmt.Errorf("game.land_limit must be positive")
	}
	if c.Game.DeckSizePerColor <= 0 {
		return fmt.Errorf("game.deck_size_per_color must be positive")
	}
	if c.Game.GiftsInDisplay <= 0 {
		return fmt.Errorf("game.gifts_in_display must be positive")
	}
	if c.Game.GiftPoolSize < c.Game.GiftsInDisplay {
		return fmt.Errorf("game.gift_pool_size must be at least game.gifts_in_display")
	}
	return nil
}
