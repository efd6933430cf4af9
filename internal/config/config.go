package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers understood by kvstore.Open.
const (
	StoreDriverSQL   = "sql"
	StoreDriverRedis = "redis"
)

// Config holds runtime configuration values for the turmas services.
type Config struct {
	AppName     string
	AppEnv      string
	AppPort     string
	LogLevel    string
	LogFormat   string
	StoreDriver string
	StoreDSN    string
	StorePrefix string
	RedisURL    string
	SessionTTL  time.Duration
	BcryptCost  int
	JWTSecret   string
	SeedOnStart bool
	// SeedToken enables the /dev seeding routes when set.
	SeedToken string
	// CORSAllowOrigins is a comma separated origin list handed to the CORS middleware.
	CORSAllowOrigins string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TURMAS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Turmas API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pretty")
	v.SetDefault("store.driver", StoreDriverSQL)
	v.SetDefault("store.dsn", "turmas.db")
	v.SetDefault("store.prefix", "")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("bcrypt.cost", 10)
	v.SetDefault("seed.on_start", true)
	v.SetDefault("cors.allow_origins", "*")

	ttl, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}
	if ttl <= 0 {
		return Config{}, fmt.Errorf("session ttl must be positive")
	}

	cfg := Config{
		AppName:     v.GetString("app.name"),
		AppEnv:      v.GetString("app.env"),
		AppPort:     v.GetString("app.port"),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   v.GetString("log.format"),
		StoreDriver: strings.ToLower(v.GetString("store.driver")),
		StoreDSN:    v.GetString("store.dsn"),
		StorePrefix: v.GetString("store.prefix"),
		RedisURL:    v.GetString("redis.url"),
		SessionTTL:  ttl,
		BcryptCost:  v.GetInt("bcrypt.cost"),
		JWTSecret:   v.GetString("jwt.secret"),
		SeedOnStart: v.GetBool("seed.on_start"),
		SeedToken:   v.GetString("seed.token"),

		CORSAllowOrigins: v.GetString("cors.allow_origins"),
	}

	switch cfg.StoreDriver {
	case StoreDriverSQL:
		if cfg.StoreDSN == "" {
			return Config{}, fmt.Errorf("store dsn must be provided for the sql driver")
		}
	case StoreDriverRedis:
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("redis url must be provided for the redis driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		cfg.BcryptCost = 10
	}

	return cfg, nil
}
