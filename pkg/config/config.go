package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Staging      StagingConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string   `envconfig:"DINEPLUS_APP_ENV" default:"dev"`
	Port         string   `envconfig:"DINEPLUS_APP_PORT" default:"4000"`
	LogLevel     string   `envconfig:"DINEPLUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"DINEPLUS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"DINEPLUS_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DINEPLUS_DB_DSN"`
	Driver string `envconfig:"DINEPLUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DINEPLUS_DB_HOST"`
	LegacyPort     int    `envconfig:"DINEPLUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DINEPLUS_DB_USER"`
	LegacyPassword string `envconfig:"DINEPLUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"DINEPLUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"DINEPLUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DINEPLUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DINEPLUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DINEPLUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DINEPLUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.LegacyUser),
		url.QueryEscape(d.LegacyPassword),
		d.LegacyHost,
		d.LegacyPort,
		d.LegacyName,
		d.LegacySSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"DINEPLUS_REDIS_URL"`
	Address      string        `envconfig:"DINEPLUS_REDIS_ADDR"`
	Password     string        `envconfig:"DINEPLUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"DINEPLUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DINEPLUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DINEPLUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DINEPLUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DINEPLUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DINEPLUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StagingConfig tunes the staged-order session protocol.
type StagingConfig struct {
	SessionTTL        time.Duration `envconfig:"DINEPLUS_STAGING_SESSION_TTL" default:"4h"`
	TableLockTTL      time.Duration `envconfig:"DINEPLUS_STAGING_TABLE_LOCK_TTL" default:"4h"`
	OrderNumberPrefix string        `envconfig:"DINEPLUS_STAGING_ORDER_PREFIX" default:"STG"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"DINEPLUS_CRON_INTERVAL" default:"15m"`
	LockTTL    time.Duration `envconfig:"DINEPLUS_CRON_LOCK_TTL" default:"20m"`
	SessionTTL time.Duration `envconfig:"DINEPLUS_CRON_STAGED_SESSION_TTL" default:"4h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DINEPLUS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DINEPLUS_AUTO_MIGRATE" default:"false"`
}
