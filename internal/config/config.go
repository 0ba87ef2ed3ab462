package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME, default=quickcart"`
	ServerPort  int    `env:"SERVER_PORT, default=8080"`
	LogLevel    string `env:"LOG_LEVEL, default=info"`

	// TrustedProxies lists CIDRs whose X-Forwarded-For is honored. Empty means
	// the client IP is always the socket peer.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	DB        DBConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Search    SearchConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER, default=postgres"`
	URL    string `env:"DATABASE_URL, required"`
}

type JWTConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	TTL    time.Duration `env:"JWT_TTL, default=5m"`
	Issuer string        `env:"JWT_ISSUER, default=quickcart"`
}

// KafkaConfig leaves events disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
}

type SearchConfig struct {
	URL      string `env:"ES_URL"`
	User     string `env:"ES_USER"`
	Password string `env:"ES_PASSWORD"`
	Index    string `env:"ES_INDEX, default=products"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Limit  int           `env:"LOGIN_RATE_LIMIT, default=10"`
	Window time.Duration `env:"LOGIN_RATE_WINDOW, default=1m"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context, l *slog.Logger) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		l.Debug("dotenv_skipped", "reason", ".env file not found, using system environment")
	}
	return LoadWith(ctx, envconfig.OsLookuper())
}

func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("load config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("load config: JWT_TTL must be positive")
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("load config: login rate limit and window must be positive")
	}
	return nil
}
