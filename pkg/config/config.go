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
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	Sessions     SessionsConfig
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
	Env          string `envconfig:"GROCER_APP_ENV" default:"dev"`
	Port         string `envconfig:"GROCER_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GROCER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROCER_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"GROCER_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GROCER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GROCER_DB_DSN"`
	Driver string `envconfig:"GROCER_DB_DRIVER" default:"sqlite"`

	Host     string `envconfig:"GROCER_DB_HOST"`
	Port     int    `envconfig:"GROCER_DB_PORT" default:"5432"`
	User     string `envconfig:"GROCER_DB_USER"`
	Password string `envconfig:"GROCER_DB_PASSWORD"`
	Name     string `envconfig:"GROCER_DB_NAME"`
	SSLMode  string `envconfig:"GROCER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROCER_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"GROCER_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"GROCER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROCER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// IsPostgres reports whether the configured driver is Postgres.
func (db DBConfig) IsPostgres() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverPostgres)
}

type RedisConfig struct {
	URL          string        `envconfig:"GROCER_REDIS_URL"`
	Address      string        `envconfig:"GROCER_REDIS_ADDR"`
	Password     string        `envconfig:"GROCER_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROCER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROCER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROCER_AUTO_MIGRATE" default:"true"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GROCER_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type SessionsConfig struct {
	DefaultTTL time.Duration `envconfig:"GROCER_SESSION_DEFAULT_TTL" default:"720h"`
}

type CronConfig struct {
	Interval   time.Duration `envconfig:"GROCER_CRON_INTERVAL" default:"1h"`
	LockTTL    time.Duration `envconfig:"GROCER_CRON_LOCK_TTL" default:"55m"`
	JobTimeout time.Duration `envconfig:"GROCER_CRON_JOB_TIMEOUT" default:"5m"`
}

func (db *DBConfig) ensureDSN() error {
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	if db.Driver == "" {
		db.Driver = DriverSQLite
	}
	if !db.IsSQLite() && !db.IsPostgres() {
		return fmt.Errorf("unsupported %s %q (expected %s or %s)", EnvDBDriver, db.Driver, DriverSQLite, DriverPostgres)
	}
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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
