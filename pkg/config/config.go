package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Password        PasswordConfig
	AuthRateLimit   AuthRateLimitConfig
	PublicRateLimit PublicRateLimitConfig
	Cart            CartConfig
	FeatureFlags    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"MERCH_APP_ENV" required:"true"`
	Port         string   `envconfig:"MERCH_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"MERCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"MERCH_LOG_WARN_STACK" default:"false"`
	ShopName     string   `envconfig:"MERCH_SHOP_NAME" default:"DD Creation"`
	CORSOrigins  []string `envconfig:"MERCH_CORS_ORIGINS" default:"http://localhost:3000"`

	ShutdownTimeout time.Duration `envconfig:"MERCH_APP_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"MERCH_DB_DSN"`
	Driver string `envconfig:"MERCH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MERCH_DB_HOST"`
	LegacyPort     int    `envconfig:"MERCH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MERCH_DB_USER"`
	LegacyPassword string `envconfig:"MERCH_DB_PASSWORD"`
	LegacyName     string `envconfig:"MERCH_DB_NAME"`
	LegacySSLMode  string `envconfig:"MERCH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MERCH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MERCH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MERCH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MERCH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets the embedded database.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MERCH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MERCH_REDIS_ADDR"`
	Password     string        `envconfig:"MERCH_REDIS_PASSWORD"`
	DB           int           `envconfig:"MERCH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MERCH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MERCH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MERCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MERCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MERCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MERCH_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MERCH_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MERCH_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MERCH_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MERCH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MERCH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MERCH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MERCH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MERCH_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"MERCH_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"MERCH_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"MERCH_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"MERCH_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"MERCH_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"MERCH_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

// PublicRateLimitConfig throttles anonymous catalog traffic per client IP.
type PublicRateLimitConfig struct {
	RequestsPerSecond float64       `envconfig:"MERCH_PUBLIC_RATE_LIMIT_RPS" default:"10"`
	Burst             int           `envconfig:"MERCH_PUBLIC_RATE_LIMIT_BURST" default:"20"`
	IdleTTL           time.Duration `envconfig:"MERCH_PUBLIC_RATE_LIMIT_IDLE_TTL" default:"3m"`
}

type CartConfig struct {
	MaxQuantity int `envconfig:"MERCH_CART_MAX_QUANTITY" default:"100"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MERCH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MERCH_AUTO_MIGRATE" default:"false"`
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
