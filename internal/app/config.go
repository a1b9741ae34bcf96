package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/data/db"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/observability"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/envutil"
	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

const serviceName = "prisonrp-rules"

type Config struct {
	Port        string
	Environment string
	CORSOrigins []string

	Postgres db.PostgresConfig

	JWTSecretKey string

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	ContentEventsChannel string

	AuditQueueSize    int
	NotifyQueueSize   int
	NotifyTimeout     time.Duration
	SchedulerInterval time.Duration
	ShutdownTimeout   time.Duration

	CategorySeedFile string

	Otel observability.OtelConfig
}

// LoadDotEnv reads .env when present; a missing file is not an error.
func LoadDotEnv(log *logger.Logger) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("Could not parse .env file", "error", err)
		}
		return
	}
	log.Info("Loaded .env file")
}

func LoadConfig(log *logger.Logger) (Config, error) {
	env := envutil.String("APP_ENV", "development")
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: env,
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		Postgres: db.PostgresConfig{
			Host:            envutil.String("POSTGRES_HOST", "localhost"),
			Port:            envutil.String("POSTGRES_PORT", "5432"),
			User:            envutil.String("POSTGRES_USER", "postgres"),
			Password:        envutil.String("POSTGRES_PASSWORD", ""),
			Name:            envutil.String("POSTGRES_NAME", "prisonrp_rules"),
			SSLMode:         envutil.String("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    envutil.Int("POSTGRES_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envutil.Int("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envutil.Duration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		RedisAddr:            envutil.String("REDIS_ADDR", ""),
		RedisPassword:        envutil.String("REDIS_PASSWORD", ""),
		RedisDB:              envutil.Int("REDIS_DB", 0),
		ContentEventsChannel: envutil.String("CONTENT_EVENTS_CHANNEL", "content-events"),

		AuditQueueSize:    envutil.Int("AUDIT_QUEUE_SIZE", 1024),
		NotifyQueueSize:   envutil.Int("NOTIFY_QUEUE_SIZE", 256),
		NotifyTimeout:     envutil.Duration("NOTIFY_TIMEOUT", 5*time.Second),
		SchedulerInterval: envutil.Duration("SCHEDULER_INTERVAL", time.Minute),
		ShutdownTimeout:   envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),

		CategorySeedFile: envutil.String("CATEGORY_SEED_FILE", ""),

		Otel: observability.OtelConfigFromEnv(envutil.String("OTEL_SERVICE_NAME", serviceName), env, envutil.String("APP_VERSION", "dev")),
	}

	if cfg.JWTSecretKey == "" {
		return cfg, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if cfg.RedisAddr == "" {
		log.Warn("REDIS_ADDR not set; content events will only be logged")
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
