package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Publisher     PublisherConfig
	SocialPublish SocialPublishConfig
	Idempotency   IdempotencyConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"BRANDPULSE_APP_ENV" required:"true"`
	Port         string `envconfig:"BRANDPULSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BRANDPULSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BRANDPULSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BRANDPULSE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"BRANDPULSE_DB_DSN"`
	Driver string `envconfig:"BRANDPULSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BRANDPULSE_DB_HOST"`
	LegacyPort     int    `envconfig:"BRANDPULSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BRANDPULSE_DB_USER"`
	LegacyPassword string `envconfig:"BRANDPULSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BRANDPULSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BRANDPULSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BRANDPULSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BRANDPULSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BRANDPULSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BRANDPULSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BRANDPULSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BRANDPULSE_REDIS_ADDR"`
	Password     string        `envconfig:"BRANDPULSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BRANDPULSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BRANDPULSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BRANDPULSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BRANDPULSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BRANDPULSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BRANDPULSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PublisherConfig tunes the scheduled-post publishing pipeline.
type PublisherConfig struct {
	PollInterval   time.Duration `envconfig:"BRANDPULSE_PUBLISH_POLL_INTERVAL" default:"60s"`
	BatchSize      int           `envconfig:"BRANDPULSE_PUBLISH_BATCH_SIZE" default:"10"`
	MaxRetries     int           `envconfig:"BRANDPULSE_PUBLISH_MAX_RETRIES" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"BRANDPULSE_PUBLISH_RETRY_BASE_DELAY" default:"5m"`
	MetricsPort    string        `envconfig:"BRANDPULSE_PUBLISH_METRICS_PORT" default:"9105"`
}

// SocialPublishConfig points at the external social publishing service.
type SocialPublishConfig struct {
	BaseURL string        `envconfig:"BRANDPULSE_SOCIAL_PUBLISH_BASE_URL" required:"true"`
	APIKey  string        `envconfig:"BRANDPULSE_SOCIAL_PUBLISH_API_KEY"`
	Timeout time.Duration `envconfig:"BRANDPULSE_SOCIAL_PUBLISH_TIMEOUT" default:"30s"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"BRANDPULSE_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BRANDPULSE_AUTO_MIGRATE" default:"false"`
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
