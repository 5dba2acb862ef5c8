package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "SAKU"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Canonical environment variable names, referenced by tests and error messages.
const (
	EnvAppEnv            = "SAKU_APP_ENV"
	EnvPort              = "SAKU_APP_PORT"
	EnvDBDSN             = "SAKU_DB_DSN"
	EnvDBHost            = "SAKU_DB_HOST"
	EnvDBUser            = "SAKU_DB_USER"
	EnvDBName            = "SAKU_DB_NAME"
	EnvRedisURL          = "SAKU_REDIS_URL"
	EnvAPIKeyBootstrap   = "SAKU_API_KEY_BOOTSTRAP_TOKEN"
	EnvQuotesBaseURL     = "SAKU_QUOTES_BASE_URL"
	EnvRateLimitPerKey   = "SAKU_RATE_LIMIT_PER_KEY"
	EnvRateLimitWindow   = "SAKU_RATE_LIMIT_WINDOW"
	EnvFeatureUseSQLite  = "SAKU_USE_SQLITE"
	EnvFeatureAutoMigrat = "SAKU_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	APIKeys      APIKeyConfig
	RateLimit    RateLimitConfig
	Quotes       QuotesConfig
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
	Env          string `envconfig:"SAKU_APP_ENV" required:"true"`
	Port         string `envconfig:"SAKU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SAKU_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SAKU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SAKU_DB_DSN"`
	Driver string `envconfig:"SAKU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SAKU_DB_HOST"`
	LegacyPort     int    `envconfig:"SAKU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SAKU_DB_USER"`
	LegacyPassword string `envconfig:"SAKU_DB_PASSWORD"`
	LegacyName     string `envconfig:"SAKU_DB_NAME"`
	LegacySSLMode  string `envconfig:"SAKU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SAKU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SAKU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SAKU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SAKU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SAKU_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SAKU_REDIS_ADDR"`
	Password     string        `envconfig:"SAKU_REDIS_PASSWORD"`
	DB           int           `envconfig:"SAKU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SAKU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SAKU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SAKU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SAKU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SAKU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// APIKeyConfig holds the Argon2id parameters used to hash API key secrets plus
// the bootstrap token that guards the key-management endpoints.
type APIKeyConfig struct {
	BootstrapToken   string        `envconfig:"SAKU_API_KEY_BOOTSTRAP_TOKEN" required:"true"`
	OwnerCacheTTL    time.Duration `envconfig:"SAKU_API_KEY_OWNER_CACHE_TTL" default:"5m"`
	ArgonMemoryKB    int           `envconfig:"SAKU_ARGON_MEMORY_KB" default:"8192"`
	ArgonTime        int           `envconfig:"SAKU_ARGON_TIME" default:"1"`
	ArgonParallelism int           `envconfig:"SAKU_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int           `envconfig:"SAKU_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int           `envconfig:"SAKU_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"SAKU_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int           `envconfig:"SAKU_RATE_LIMIT_PER_KEY" default:"120"`
}

type QuotesConfig struct {
	BaseURL  string        `envconfig:"SAKU_QUOTES_BASE_URL"`
	APIKey   string        `envconfig:"SAKU_QUOTES_API_KEY"`
	Timeout  time.Duration `envconfig:"SAKU_QUOTES_TIMEOUT" default:"10s"`
	CacheTTL time.Duration `envconfig:"SAKU_QUOTES_CACHE_TTL" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SAKU_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SAKU_AUTO_MIGRATE" default:"false"`
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
