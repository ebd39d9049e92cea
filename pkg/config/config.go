package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Fees         FeeConfig
	Reservation  ReservationConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BRICKVEST_APP_ENV" required:"true"`
	Port         string `envconfig:"BRICKVEST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BRICKVEST_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"BRICKVEST_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"BRICKVEST_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"BRICKVEST_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BRICKVEST_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BRICKVEST_DB_DSN"`
	Driver string `envconfig:"BRICKVEST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BRICKVEST_DB_HOST"`
	LegacyPort     int    `envconfig:"BRICKVEST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BRICKVEST_DB_USER"`
	LegacyPassword string `envconfig:"BRICKVEST_DB_PASSWORD"`
	LegacyName     string `envconfig:"BRICKVEST_DB_NAME"`
	LegacySSLMode  string `envconfig:"BRICKVEST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BRICKVEST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BRICKVEST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BRICKVEST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BRICKVEST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BRICKVEST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BRICKVEST_REDIS_ADDR"`
	Password     string        `envconfig:"BRICKVEST_REDIS_PASSWORD"`
	DB           int           `envconfig:"BRICKVEST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BRICKVEST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BRICKVEST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BRICKVEST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BRICKVEST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BRICKVEST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// FeeConfig carries the platform fee policy. The fee calculator reads these
// through an injected policy provider so tests can substitute fixed values.
type FeeConfig struct {
	PlatformFeePercent string `envconfig:"BRICKVEST_PLATFORM_FEE_PERCENT" default:"2.5"`
	ProcessingFeeCents int64  `envconfig:"BRICKVEST_PROCESSING_FEE_CENTS" default:"500"`
}

// ReservationConfig bounds how long a share reservation may be held.
type ReservationConfig struct {
	DefaultMinutes int `envconfig:"BRICKVEST_RESERVATION_DEFAULT_MINUTES" default:"15"`
	MinMinutes     int `envconfig:"BRICKVEST_RESERVATION_MIN_MINUTES" default:"5"`
	MaxMinutes     int `envconfig:"BRICKVEST_RESERVATION_MAX_MINUTES" default:"30"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"BRICKVEST_CRON_INTERVAL" default:"1m"`
	LockKey     string        `envconfig:"BRICKVEST_CRON_LOCK_KEY" default:"bv:cron:lock"`
	LockTTL     time.Duration `envconfig:"BRICKVEST_CRON_LOCK_TTL" default:"5m"`
	MetricsPort string        `envconfig:"BRICKVEST_CRON_METRICS_PORT" default:"9091"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BRICKVEST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BRICKVEST_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BRICKVEST_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BRICKVEST_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BRICKVEST_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	CertificateBucket string `envconfig:"BRICKVEST_GCS_CERTIFICATE_BUCKET"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"BRICKVEST_PUBSUB_NOTIFICATION_TOPIC" default:"bv-notification-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BRICKVEST_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BRICKVEST_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BRICKVEST_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
