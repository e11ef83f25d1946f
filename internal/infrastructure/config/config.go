package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is the immutable process configuration, loaded once at startup and
// passed explicitly to each component.
type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// JWTSecret signs and verifies session tokens.
	JWTSecret string `env:"JWT_SECRET, required"`
	// TokenTTLMinutes is the session lifetime.
	TokenTTLMinutes int `env:"TOKEN_TTL_MINUTES, default=30"`

	Bootstrap BootstrapConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	SMTP      SMTPConfig
	Throttle  ThrottleConfig
}

// BootstrapConfig seeds the single super-admin account on first startup.
type BootstrapConfig struct {
	Username string `env:"BOOTSTRAP_USERNAME, default=superadmin"`
	Password string `env:"BOOTSTRAP_PASSWORD, required"`
	Email    string `env:"BOOTSTRAP_EMAIL, default=superadmin@localhost"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// SMTPConfig configures outbound credential notifications. When Host is empty
// deliveries are logged instead of sent.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	AppName  string `env:"APP_NAME,  default=Auth System"`
	LoginURL string `env:"LOGIN_URL, default=http://localhost:8080/login"`
}

// ThrottleConfig bounds failed login attempts per username.
type ThrottleConfig struct {
	MaxFailures   int `env:"LOGIN_MAX_FAILURES,   default=10"`
	WindowMinutes int `env:"LOGIN_WINDOW_MINUTES, default=15"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
