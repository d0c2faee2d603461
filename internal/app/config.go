package app

import (
	"time"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/openai"
	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/db"
	"github.com/premsagarmanikyala/mantrix-ai/internal/modules/roadmap/steps"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/envutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/neo4jdb"
	"github.com/premsagarmanikyala/mantrix-ai/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	DB db.Config

	ScheduleMaxDays   int
	ScheduleStartTime string
	ScheduleLocation  *time.Location
	MergeMaxSources   int

	Redis  redis.Config
	Neo4j  neo4jdb.Config
	OpenAI openai.Config

	SeedPath       string
	SeedOwnerEmail string

	MetricsEnabled bool
	Otel           observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	jwtSecretKey := envutil.String("JWT_SECRET_KEY", defaultJWTSecret)
	if jwtSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}

	tzName := envutil.String("SCHEDULE_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Warn("Unknown SCHEDULE_TIMEZONE, falling back to UTC", "timezone", tzName, "error", err)
		loc = time.UTC
	}

	return Config{
		Port:            envutil.String("PORT", "8080"),
		RequestTimeout:  envutil.Duration("REQUEST_TIMEOUT", 15*time.Second),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     envutil.List("CORS_ALLOWED_ORIGINS", nil),

		JWTSecretKey:   jwtSecretKey,
		AccessTokenTTL: envutil.Duration("ACCESS_TOKEN_TTL", 24*time.Hour),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverMemory),
			SQLitePath:       envutil.String("SQLITE_PATH", "mantrix.db"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "mantrix"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD", time.Second),
		},

		ScheduleMaxDays:   envutil.Int("SCHEDULE_MAX_DAYS", steps.DefaultMaxDays),
		ScheduleStartTime: envutil.String("SCHEDULE_START_TIME", steps.DefaultScheduledTime),
		ScheduleLocation:  loc,
		MergeMaxSources:   envutil.Int("MERGE_MAX_SOURCES", services.DefaultMaxMergeSources),

		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
			Channel:  envutil.String("REDIS_CHANNEL", "mantrix.events"),
		},
		Neo4j:  neo4jdb.ConfigFromEnv(),
		OpenAI: openai.ConfigFromEnv(),

		SeedPath:       envutil.String("SEED_PATH", ""),
		SeedOwnerEmail: envutil.String("SEED_OWNER_EMAIL", "demo@mantrix.ai"),

		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true),
		Otel:           observability.OtelConfigFromEnv(),
	}
}
