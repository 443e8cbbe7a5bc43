package config

import (
	"errors"
	"fmt"
	"strings"

	"warehouse/internal/models"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Config holds runtime settings, read from the environment and an optional
// warehouse.yaml in the working directory.
type Config struct {
	AppPort       string
	DBPath        string
	RabbitMQURL   string
	RabbitMQQueue string
	LogLevel      string
	LogEncoding   string
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_PATH", models.DatabaseName)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_changes")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "console")
}

// Load reads and validates the configuration held by v. Values missing from
// both the environment and the config file fall back to the defaults.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("warehouse")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := Config{
		AppPort:       v.GetString("APP_PORT"),
		DBPath:        v.GetString("DB_PATH"),
		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		RabbitMQQueue: v.GetString("RABBITMQ_QUEUE"),
		LogLevel:      strings.ToLower(v.GetString("LOG_LEVEL")),
		LogEncoding:   strings.ToLower(v.GetString("LOG_ENCODING")),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every setting holds a usable value.
func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if c.AppPort == "" {
		return errors.New("APP_PORT must not be empty")
	}
	if c.RabbitMQURL != "" && c.RabbitMQQueue == "" {
		return errors.New("RABBITMQ_QUEUE must not be empty when RABBITMQ_URL is set")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.LogEncoding != "console" && c.LogEncoding != "json" {
		return fmt.Errorf("invalid LOG_ENCODING %q: must be console or json", c.LogEncoding)
	}
	return nil
}
