package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Messaging MessagingConfig
	Gateway   GatewayConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// MessagingConfig points at the messaging-network sidecar used for number
// validation, canonicalization and profile picture lookup.
type MessagingConfig struct {
	BaseURL            string
	APIToken           string
	RequestTimeoutSec  int
	CacheTTLMinutes    int
	ProfilePicRequired bool
}

// GatewayConfig tunes the realtime broadcast gateway.
type GatewayConfig struct {
	SendBuffer      int
	WriteWaitSec    int
	PongWaitSec     int
	PingIntervalSec int
	MaxMessageSize  int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "contact-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Messaging: MessagingConfig{
			BaseURL:            getEnv("MESSAGING_BASE_URL", "http://127.0.0.1:3333"),
			APIToken:           os.Getenv("MESSAGING_API_TOKEN"),
			RequestTimeoutSec:  getEnvAsInt("MESSAGING_REQUEST_TIMEOUT_SECONDS", 15),
			CacheTTLMinutes:    getEnvAsInt("MESSAGING_CACHE_TTL_MINUTES", 60),
			ProfilePicRequired: getEnvAsBool("CONTACT_PROFILE_PIC_REQUIRED", false),
		},
		Gateway: GatewayConfig{
			SendBuffer:      getEnvAsInt("GATEWAY_SEND_BUFFER", 256),
			WriteWaitSec:    getEnvAsInt("GATEWAY_WRITE_WAIT_SECONDS", 10),
			PongWaitSec:     getEnvAsInt("GATEWAY_PONG_WAIT_SECONDS", 60),
			PingIntervalSec: getEnvAsInt("GATEWAY_PING_INTERVAL_SECONDS", 54),
			MaxMessageSize:  int64(getEnvAsInt("GATEWAY_MAX_MESSAGE_BYTES", 4096)),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the messaging client timeout duration.
func (m MessagingConfig) RequestTimeout() time.Duration {
	if m.RequestTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(m.RequestTimeoutSec) * time.Second
}

// CacheTTL returns how long validator lookups stay cached.
func (m MessagingConfig) CacheTTL() time.Duration {
	if m.CacheTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(m.CacheTTLMinutes) * time.Minute
}

// WriteWait returns the write deadline for a single frame.
func (g GatewayConfig) WriteWait() time.Duration {
	return time.Duration(g.WriteWaitSec) * time.Second
}

// PongWait returns how long a connection may stay silent before it is
// considered dead.
func (g GatewayConfig) PongWait() time.Duration {
	return time.Duration(g.PongWaitSec) * time.Second
}

// PingInterval returns the keepalive ping period.
func (g GatewayConfig) PingInterval() time.Duration {
	return time.Duration(g.PingIntervalSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
