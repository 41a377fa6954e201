// internal/config/config.go
//
// Server configuration.
//
// Sources, lowest to highest precedence:
//   1. Defaults below.
//   2. Optional memory.yaml / memory.json in the working directory (or the file
//      named by CONFIG_FILE).
//   3. Environment variables (a .env file is loaded into the environment first).
//
// Environment variables:
//   PORT, LOG_LEVEL, CLIENT_ORIGIN, FLIP_DURATION_MS, CARD_IMAGES_FILE,
//   SCORES_DB, SESSION_SECRET, SESSION_TTL, DAILY_SALT, CONFIG_FILE

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all server settings.
type Config struct {
	Port           int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel       string        `mapstructure:"log_level" validate:"required,oneof=trace debug info warn error"`
	ClientOrigin   string        `mapstructure:"client_origin" validate:"required"`
	FlipDurationMs int           `mapstructure:"flip_duration_ms" validate:"gte=0"`
	CardImagesFile string        `mapstructure:"card_images_file"`
	ScoresDB       string        `mapstructure:"scores_db"`
	SessionSecret  string        `mapstructure:"session_secret" validate:"required,min=16"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" validate:"gte=1m"`
	DailySalt      string        `mapstructure:"daily_salt" validate:"required"`
}

// FlipDuration is the configured resolution delay, before clamping.
func (c *Config) FlipDuration() time.Duration {
	return time.Duration(c.FlipDurationMs) * time.Millisecond
}

var defaults = map[string]any{
	"port":             5175,
	"log_level":        "info",
	"client_origin":    "http://localhost:5175",
	"flip_duration_ms": 500,
	"card_images_file": "",
	"scores_db":        "",
	"session_secret":   "dev_secret_change_me",
	"session_ttl":      "30m",
	"daily_salt":       "local_dev_salt",
}

// Load builds a Config from defaults, an optional config file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("memory")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
