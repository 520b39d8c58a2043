package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "EGGTRADE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv        = "EGGTRADE_APP_ENV"
	EnvPort          = "EGGTRADE_APP_PORT"
	EnvLogLevel      = "EGGTRADE_LOG_LEVEL"
	EnvTimezone      = "EGGTRADE_APP_TIMEZONE"
	EnvDBDSN         = "EGGTRADE_DB_DSN"
	EnvDBDriver      = "EGGTRADE_DB_DRIVER"
	EnvDBHost        = "EGGTRADE_DB_HOST"
	EnvDBUser        = "EGGTRADE_DB_USER"
	EnvDBName        = "EGGTRADE_DB_NAME"
	EnvRedisURL      = "EGGTRADE_REDIS_URL"
	EnvPricingStrict = "EGGTRADE_PRICING_STRICT"
	EnvAutoMigrate   = "EGGTRADE_AUTO_MIGRATE"
	EnvCronInterval  = "EGGTRADE_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"EGGTRADE_APP_ENV" required:"true"`
	Port         string `envconfig:"EGGTRADE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"EGGTRADE_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"EGGTRADE_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"EGGTRADE_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"EGGTRADE_APP_TIMEZONE" default:"Africa/Accra"`
	// CORSOrigins is a comma separated list of allowed browser origins.
	CORSOrigins []string `envconfig:"EGGTRADE_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone used to derive a sale's as-of date.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

type DBConfig struct {
	DSN    string `envconfig:"EGGTRADE_DB_DSN"`
	Driver string `envconfig:"EGGTRADE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EGGTRADE_DB_HOST"`
	LegacyPort     int    `envconfig:"EGGTRADE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EGGTRADE_DB_USER"`
	LegacyPassword string `envconfig:"EGGTRADE_DB_PASSWORD"`
	LegacyName     string `envconfig:"EGGTRADE_DB_NAME"`
	LegacySSLMode  string `envconfig:"EGGTRADE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EGGTRADE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EGGTRADE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EGGTRADE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EGGTRADE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"EGGTRADE_REDIS_URL"`
	Address      string        `envconfig:"EGGTRADE_REDIS_ADDR"`
	Password     string        `envconfig:"EGGTRADE_REDIS_PASSWORD"`
	DB           int           `envconfig:"EGGTRADE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EGGTRADE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EGGTRADE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EGGTRADE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EGGTRADE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EGGTRADE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured. Idempotency
// replay is skipped when redis is absent.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type PricingConfig struct {
	// Strict turns a missing tier/override price into an error instead of a
	// zero unit price.
	Strict bool `envconfig:"EGGTRADE_PRICING_STRICT" default:"false"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"EGGTRADE_CRON_INTERVAL" default:"1h"`
	// RunOnce runs a single cycle and exits, for platform schedulers.
	RunOnce bool `envconfig:"EGGTRADE_CRON_RUN_ONCE" default:"false"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"EGGTRADE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = "file:eggtrade.db?_foreign_keys=on"
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
