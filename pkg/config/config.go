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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
	Cron         CronConfig
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
	Env          string `envconfig:"SIMSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"SIMSTACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SIMSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIMSTACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SIMSTACK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"SIMSTACK_DB_DSN"`

	Host     string `envconfig:"SIMSTACK_DB_HOST"`
	Port     int    `envconfig:"SIMSTACK_DB_PORT" default:"5432"`
	User     string `envconfig:"SIMSTACK_DB_USER"`
	Password string `envconfig:"SIMSTACK_DB_PASSWORD"`
	Name     string `envconfig:"SIMSTACK_DB_NAME"`
	SSLMode  string `envconfig:"SIMSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIMSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIMSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIMSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIMSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SIMSTACK_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SIMSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIMSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIMSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIMSTACK_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"SIMSTACK_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret    string        `envconfig:"SIMSTACK_JWT_SECRET" required:"true"`
	Issuer    string        `envconfig:"SIMSTACK_JWT_ISSUER" default:"simstack"`
	AccessTTL time.Duration `envconfig:"SIMSTACK_JWT_ACCESS_TTL" default:"15m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SIMSTACK_FEATURE_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	PollInterval time.Duration `envconfig:"SIMSTACK_OUTBOX_POLL_INTERVAL" default:"2s"`
	BatchSize    int           `envconfig:"SIMSTACK_OUTBOX_BATCH_SIZE" default:"50"`
	MaxAttempts  int           `envconfig:"SIMSTACK_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"SIMSTACK_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"SIMSTACK_CRON_LOCK_TTL" default:"25h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"SIMSTACK_DB_HOST": db.Host,
		"SIMSTACK_DB_USER": db.User,
		"SIMSTACK_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SIMSTACK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
