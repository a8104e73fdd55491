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

	EnvDBDSN  = "ARENAMARKET_DB_DSN"
	EnvDBHost = "ARENAMARKET_DB_HOST"
	EnvDBUser = "ARENAMARKET_DB_USER"
	EnvDBName = "ARENAMARKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Events        EventsConfig
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
	Env          string `envconfig:"ARENAMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"ARENAMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARENAMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARENAMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ARENAMARKET_DB_DSN"`
	Driver string `envconfig:"ARENAMARKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARENAMARKET_DB_HOST"`
	LegacyPort     int    `envconfig:"ARENAMARKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARENAMARKET_DB_USER"`
	LegacyPassword string `envconfig:"ARENAMARKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARENAMARKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARENAMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARENAMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARENAMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARENAMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARENAMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARENAMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ARENAMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"ARENAMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARENAMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARENAMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARENAMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARENAMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARENAMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARENAMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARENAMARKET_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARENAMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ARENAMARKET_JWT_EXPIRATION_MINUTES" default:"720"`
	SessionTTLMinutes int    `envconfig:"ARENAMARKET_SESSION_TTL_MINUTES" default:"1440"`
}

// SessionTTL returns the server-side session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARENAMARKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARENAMARKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARENAMARKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARENAMARKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARENAMARKET_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"ARENAMARKET_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginNameLimit  int           `envconfig:"ARENAMARKET_AUTH_RATE_LIMIT_LOGIN_NAME_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"ARENAMARKET_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ARENAMARKET_AUTO_MIGRATE" default:"false"`
}

type EventsConfig struct {
	Channel string `envconfig:"ARENAMARKET_EVENTS_CHANNEL" default:"arenamarket:events"`
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
