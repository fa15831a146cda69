// Package config loads application configuration from environment variables
// (prefix DIVVY_) with sane defaults for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage driver names accepted by Load.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Storage StorageConfig
	Auth    AuthConfig
	Logging LoggingConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects and configures the store backend.
type StorageConfig struct {
	Driver     string // sqlite|mongo
	SQLitePath string
	MongoURI   string
	MongoDB    string
}

// AuthConfig holds identity-provider and field-encryption secrets.
type AuthConfig struct {
	JWTSecret     string
	TokenDuration time.Duration
	FieldSecret   string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DIVVY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "./data/divvy.db")
	v.SetDefault("storage.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("storage.mongo_db", "divvy")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_duration", 24*time.Hour)
	v.SetDefault("auth.field_secret", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(v.GetString("storage.driver")),
			SQLitePath: v.GetString("storage.sqlite_path"),
			MongoURI:   v.GetString("storage.mongo_uri"),
			MongoDB:    v.GetString("storage.mongo_db"),
		},
		Auth: AuthConfig{
			JWTSecret:     v.GetString("auth.jwt_secret"),
			TokenDuration: v.GetDuration("auth.token_duration"),
			FieldSecret:   v.GetString("auth.field_secret"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("log.level"),
			JSON:  v.GetBool("log.json"),
		},
	}

	if cfg.Storage.Driver != DriverSQLite && cfg.Storage.Driver != DriverMongo {
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("DIVVY_AUTH_JWT_SECRET is required")
	}
	if cfg.Auth.FieldSecret == "" {
		return Config{}, fmt.Errorf("DIVVY_AUTH_FIELD_SECRET is required")
	}
	return cfg, nil
}
