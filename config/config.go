package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultDatabaseURL = "sqlite:///./db.sqlite"
	DefaultServerPort  = 8000
	DefaultMaxBodySize = 64 << 20
)

type Config struct {
	Environment          string        `mapstructure:"ENVIRONMENT"`
	ServerPort           int           `mapstructure:"SERVER_PORT"`
	DatabaseURL          string        `mapstructure:"DATABASE_URL"`
	DatabaseCacheAddress string        `mapstructure:"DATABASE_CACHE_ADDRESS"`
	DatabaseCachePort    int           `mapstructure:"DATABASE_CACHE_PORT"`
	LogLevel             string        `mapstructure:"LOG_LEVEL"`
	StaticDir            string        `mapstructure:"STATIC_DIR"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CorsOrigins          string        `mapstructure:"CORS_ORIGINS"`
	MaxBodySize          int           `mapstructure:"MAX_BODY_SIZE"`
}

func InitConfig() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_PORT", DefaultServerPort)
	v.SetDefault("DATABASE_URL", DefaultDatabaseURL)
	v.SetDefault("DATABASE_CACHE_ADDRESS", "")
	v.SetDefault("DATABASE_CACHE_PORT", 6379)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("MAX_BODY_SIZE", DefaultMaxBodySize)

	if err := v.ReadInConfig(); err != nil {
		// an explicit config file that is absent surfaces as a plain fs error
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate fills in the zero values that would otherwise leave the server
// unusable and rejects values that can never work.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		c.DatabaseURL = DefaultDatabaseURL
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT %s", c.RequestTimeout)
	}

	if c.CorsOrigins == "" {
		c.CorsOrigins = "*"
	}

	if c.MaxBodySize <= 0 {
		c.MaxBodySize = DefaultMaxBodySize
	}

	return nil
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c Config) CacheEnabled() bool {
	return c.DatabaseCacheAddress != ""
}

func (c Config) ListenAddress() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
