package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application settings.
type Config struct {
	AppPort         string
	StorageDriver   string // sqlite, postgres or memory
	StorageDSN      string
	SessionSecret   string
	SessionTTL      time.Duration
	PasswordHashing string // plain or bcrypt
	EventsURL       string // amqp URL; empty disables review events
}

// Load reads configuration from an optional .env file, an optional
// config.yaml, and the environment, in increasing precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("STORAGE_DRIVER", "sqlite")
	v.SetDefault("STORAGE_DSN", "gamereview.db")
	v.SetDefault("SESSION_SECRET", "change-me")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("PASSWORD_HASHING", "plain")
	v.SetDefault("EVENTS_URL", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		StorageDriver:   v.GetString("STORAGE_DRIVER"),
		StorageDSN:      v.GetString("STORAGE_DSN"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		PasswordHashing: v.GetString("PASSWORD_HASHING"),
		EventsURL:       v.GetString("EVENTS_URL"),
	}
	switch cfg.StorageDriver {
	case "sqlite", "postgres", "memory":
	default:
		return Config{}, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return cfg, nil
}
