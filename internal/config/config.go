package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// Workers is the size of the connection worker pool.
	Workers int
	// JWTSecret signs and verifies access tokens.
	JWTSecret string
	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration
	// DatabaseDSN selects the postgres store; empty means in-memory.
	DatabaseDSN string
	// LogLevel is a logrus level name.
	LogLevel string
}

// Load reads configuration from rrrgame.yaml (if present), a .env file
// (if present) and RRR_-prefixed environment variables, in increasing
// order of precedence.
func Load() (Config, error) {
	// .env is optional; missing files are not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("addr", ":7878")
	v.SetDefault("workers", 4)
	v.SetDefault("jwt_secret", "test")
	v.SetDefault("token_ttl", 24*time.Hour)
	v.SetDefault("database_dsn", "")
	v.SetDefault("log_level", "info")

	v.SetConfigName("rrrgame")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("RRR")
	v.AutomaticEnv()

	cfg := Config{
		Addr:        v.GetString("addr"),
		Workers:     v.GetInt("workers"),
		JWTSecret:   v.GetString("jwt_secret"),
		TokenTTL:    v.GetDuration("token_ttl"),
		DatabaseDSN: v.GetString("database_dsn"),
		LogLevel:    v.GetString("log_level"),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
