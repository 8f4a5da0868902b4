package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/kelseyhightower/envconfig"

	"github.com/erazemk/phonestock/internal/db"
)

// Environment variable names referenced by tests and the CLI.
const (
	EnvAppEnv       = "PHONESTOCK_ENV"
	EnvCookieSecure = "PHONESTOCK_COOKIE_SECURE"
	EnvTrustProxy   = "PHONESTOCK_TRUST_PROXY"
	EnvDBDriver     = "PHONESTOCK_DB_DRIVER"
	EnvDBDSN        = "PHONESTOCK_DB_DSN"
	EnvRedisURL     = "PHONESTOCK_REDIS_URL"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Setup     SetupConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.normalize(); err != nil {
		return nil, err
	}
	if cfg.App.IsProd() {
		cfg.App.CookieSecure = true
	}
	return &cfg, nil
}

type AppConfig struct {
	Env       string `envconfig:"PHONESTOCK_ENV" default:"dev"`
	Addr      string `envconfig:"PHONESTOCK_ADDR" default:":8080"`
	LogLevel  string `envconfig:"PHONESTOCK_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"PHONESTOCK_LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"PHONESTOCK_LOG_FILE"`
	LoginURL  string `envconfig:"PHONESTOCK_LOGIN_URL" default:"/login"`
	// CookieSecure is forced on in production.
	CookieSecure bool `envconfig:"PHONESTOCK_COOKIE_SECURE" default:"false"`
	// TrustProxy makes the login rate limiter key on X-Forwarded-For. Enable
	// it only behind a proxy that overwrites the header.
	TrustProxy bool `envconfig:"PHONESTOCK_TRUST_PROXY" default:"false"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "prod") || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	Driver string `envconfig:"PHONESTOCK_DB_DRIVER" default:"sqlite"`
	// DSN is a file path for SQLite and a go-sql-driver DSN for MySQL.
	DSN string `envconfig:"PHONESTOCK_DB_DSN" default:"phonestock.sqlite3"`

	MaxOpenConns    int           `envconfig:"PHONESTOCK_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PHONESTOCK_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PHONESTOCK_DB_CONN_MAX_LIFETIME" default:"5m"`
}

// normalize validates the driver and, for MySQL, forces parseTime so DATETIME
// columns scan into time.Time.
func (d *DBConfig) normalize() error {
	d.Driver = strings.ToLower(strings.TrimSpace(d.Driver))
	switch d.Driver {
	case db.DriverSQLite:
		if d.DSN == "" {
			return fmt.Errorf("%s is required", EnvDBDSN)
		}
		return nil
	case db.DriverMySQL:
		parsed, err := mysql.ParseDSN(d.DSN)
		if err != nil {
			return fmt.Errorf("parsing mysql dsn: %w", err)
		}
		parsed.ParseTime = true
		d.DSN = parsed.FormatDSN()
		return nil
	default:
		return fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

type RedisConfig struct {
	URL          string        `envconfig:"PHONESTOCK_REDIS_URL"`
	Address      string        `envconfig:"PHONESTOCK_REDIS_ADDR"`
	Password     string        `envconfig:"PHONESTOCK_REDIS_PASSWORD"`
	DB           int           `envconfig:"PHONESTOCK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PHONESTOCK_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"PHONESTOCK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PHONESTOCK_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PHONESTOCK_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Enabled reports whether a Redis server is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type JWTConfig struct {
	// Secret is optional; when empty a secret persisted in the settings table is used.
	Secret string        `envconfig:"PHONESTOCK_JWT_SECRET"`
	TTL    time.Duration `envconfig:"PHONESTOCK_JWT_TTL" default:"168h"`
}

type RateLimitConfig struct {
	LoginWindow    time.Duration `envconfig:"PHONESTOCK_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit   int           `envconfig:"PHONESTOCK_LOGIN_IP_LIMIT" default:"20"`
	LoginUserLimit int           `envconfig:"PHONESTOCK_LOGIN_USER_LIMIT" default:"5"`
}

type SetupConfig struct {
	// Token enables POST /setup/reset-admin-password when non-empty.
	Token string `envconfig:"PHONESTOCK_SETUP_TOKEN"`
}
