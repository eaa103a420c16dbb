package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"onboarding_portal/internal/middleware"
	"onboarding_portal/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

const (
	storeMemory   = "memory"
	storePostgres = "postgres"
	storeRedis    = "redis"
)

type Config struct {
	Server   ServerConfig           `mapstructure:"server"`
	Portal   PortalConfig           `mapstructure:"portal"`
	Session  SessionConfig          `mapstructure:"session"`
	Database repository.Config      `mapstructure:"database"`
	Redis    repository.RedisConfig `mapstructure:"redis"`
	Chat     ChatConfig             `mapstructure:"chat"`
	Metrics  MetricsConfig          `mapstructure:"metrics"`

	OrganizationName string `mapstructure:"organizationName"`
	LogLevel         string `mapstructure:"logLevel"`
	LogEncoding      string `mapstructure:"logEncoding"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

// PortalConfig points at the upstream REST API. A zero timeout means none.
type PortalConfig struct {
	BaseURL string        `mapstructure:"baseURL"`
	Prefix  string        `mapstructure:"prefix"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	Store         string            `mapstructure:"store"`
	TTL           time.Duration     `mapstructure:"ttl"`
	SweepInterval time.Duration     `mapstructure:"sweepInterval"`
	Cookie        middleware.CookieConfig `mapstructure:"cookie"`
}

type ChatConfig struct {
	ReplyDelay time.Duration `mapstructure:"replyDelay"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8888")
	viper.SetDefault("server.shutdownTimeout", 10*time.Second)
	viper.SetDefault("server.allowedOrigins", []string{})
	viper.SetDefault("portal.baseURL", "")
	viper.SetDefault("portal.prefix", "/api/v1")
	viper.SetDefault("portal.timeout", 0)
	viper.SetDefault("session.store", storeMemory)
	viper.SetDefault("session.ttl", 24*time.Hour)
	viper.SetDefault("session.sweepInterval", 10*time.Minute)
	viper.SetDefault("session.cookie.name", middleware.DefaultCookieName)
	viper.SetDefault("session.cookie.secure", false)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.name", "")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("chat.replyDelay", time.Second)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("organizationName", "Default Organization")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logEncoding", "json")
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Portal.BaseURL == "" {
		return fmt.Errorf("portal.baseURL is required")
	}
	switch c.Session.Store {
	case storeMemory, storePostgres, storeRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}
	return nil
}
