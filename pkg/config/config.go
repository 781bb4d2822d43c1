package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOCKROOM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOCKROOM_DB_DSN"
	EnvDBHost = "STOCKROOM_DB_HOST"
	EnvDBUser = "STOCKROOM_DB_USER"
	EnvDBName = "STOCKROOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
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
	Env          string `envconfig:"STOCKROOM_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKROOM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKROOM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKROOM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKROOM_DB_DSN"`
	Driver string `envconfig:"STOCKROOM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKROOM_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKROOM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKROOM_DB_USER"`
	LegacyPassword string `envconfig:"STOCKROOM_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKROOM_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKROOM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKROOM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKROOM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKROOM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKROOM_REDIS_URL"`
	Address      string        `envconfig:"STOCKROOM_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKROOM_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKROOM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKROOM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKROOM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKROOM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKROOM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKROOM_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKROOM_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOCKROOM_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKROOM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKROOM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKROOM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKROOM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKROOM_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOCKROOM_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOCKROOM_AUTO_MIGRATE" default:"false"`
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
