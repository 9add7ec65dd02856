package config

const (
	EnvPrefix = "GROCER"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	DefaultSQLiteDSN = "file:grocer.db?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
)

const (
	EnvAppEnv      = "GROCER_APP_ENV"
	EnvPort        = "GROCER_APP_PORT"
	EnvLogLevel    = "GROCER_LOG_LEVEL"
	EnvDBDriver    = "GROCER_DB_DRIVER"
	EnvDBDSN       = "GROCER_DB_DSN"
	EnvDBHost      = "GROCER_DB_HOST"
	EnvDBUser      = "GROCER_DB_USER"
	EnvDBName      = "GROCER_DB_NAME"
	EnvRedisURL    = "GROCER_REDIS_URL"
	EnvAutoMigrate = "GROCER_AUTO_MIGRATE"
	EnvCORSOrigins = "GROCER_CORS_ALLOWED_ORIGINS"
	EnvSessionTTL  = "GROCER_SESSION_DEFAULT_TTL"
	EnvCronEvery   = "GROCER_CRON_INTERVAL"
)

var postgresDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
