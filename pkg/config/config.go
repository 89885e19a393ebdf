package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COOPADMIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "COOPADMIN_DB_DSN"
	EnvDBHost = "COOPADMIN_DB_HOST"
	EnvDBUser = "COOPADMIN_DB_USER"
	EnvDBName = "COOPADMIN_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Receipts     ReceiptsConfig
	GCP          GCPConfig
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
	Env          string `envconfig:"COOPADMIN_APP_ENV" required:"true"`
	Port         string `envconfig:"COOPADMIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COOPADMIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COOPADMIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COOPADMIN_DB_DSN"`
	Driver string `envconfig:"COOPADMIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COOPADMIN_DB_HOST"`
	LegacyPort     int    `envconfig:"COOPADMIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COOPADMIN_DB_USER"`
	LegacyPassword string `envconfig:"COOPADMIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"COOPADMIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"COOPADMIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COOPADMIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COOPADMIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COOPADMIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COOPADMIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COOPADMIN_REDIS_URL"`
	Address      string        `envconfig:"COOPADMIN_REDIS_ADDR"`
	Password     string        `envconfig:"COOPADMIN_REDIS_PASSWORD"`
	DB           int           `envconfig:"COOPADMIN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COOPADMIN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COOPADMIN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COOPADMIN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COOPADMIN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COOPADMIN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COOPADMIN_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COOPADMIN_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"COOPADMIN_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COOPADMIN_AUTO_MIGRATE" default:"false"`
}

// ReceiptsConfig carries branch-independent fallbacks for official receipt
// numbering. When a branch has no OR settings row, allocation falls back to
// these values only if a default prefix is configured; otherwise printing
// fails closed.
type ReceiptsConfig struct {
	DefaultPrefix  string `envconfig:"COOPADMIN_OR_DEFAULT_PREFIX"`
	DefaultPadding int    `envconfig:"COOPADMIN_OR_DEFAULT_PADDING" default:"6"`
	AllocateRetry  int    `envconfig:"COOPADMIN_OR_ALLOCATE_RETRY" default:"3"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"COOPADMIN_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	VoucherTopic        string `envconfig:"COOPADMIN_PUBSUB_VOUCHER_TOPIC" default:"coop-voucher-events"`
	VoucherSubscription string `envconfig:"COOPADMIN_PUBSUB_VOUCHER_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"COOPADMIN_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"COOPADMIN_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"COOPADMIN_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
