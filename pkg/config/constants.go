package config

// EnvPrefix is empty because every field declares its fully qualified name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv                 = "MERCH_APP_ENV"
	EnvPort                   = "MERCH_APP_PORT"
	EnvLogLevel               = "MERCH_LOG_LEVEL"
	EnvDBDSN                  = "MERCH_DB_DSN"
	EnvDBDriver               = "MERCH_DB_DRIVER"
	EnvDBHost                 = "MERCH_DB_HOST"
	EnvDBPort                 = "MERCH_DB_PORT"
	EnvDBUser                 = "MERCH_DB_USER"
	EnvDBPassword             = "MERCH_DB_PASSWORD"
	EnvDBName                 = "MERCH_DB_NAME"
	EnvRedisURL               = "MERCH_REDIS_URL"
	EnvJWTSecret              = "MERCH_JWT_SECRET"
	EnvJWTIssuer              = "MERCH_JWT_ISSUER"
	EnvJWTExpMins             = "MERCH_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MERCH_REFRESH_TOKEN_TTL_MINUTES"
	EnvCartMaxQuantity        = "MERCH_CART_MAX_QUANTITY"
	EnvUseSQLite              = "MERCH_USE_SQLITE"
	EnvCORSOrigins            = "MERCH_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
