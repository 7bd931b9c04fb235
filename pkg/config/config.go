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
	Simulator    SimulatorConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// The sqlite flag trumps the driver setting: local runs get a file
	// database without any of the postgres connection variables.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DBDriverSQLite
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = DefaultSQLiteDSN
		}
		return &cfg, nil
	}

	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MARTSYS_APP_ENV" required:"true"`
	Port         string `envconfig:"MARTSYS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MARTSYS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MARTSYS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MARTSYS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MARTSYS_DB_DSN"`
	Driver string `envconfig:"MARTSYS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MARTSYS_DB_HOST"`
	LegacyPort     int    `envconfig:"MARTSYS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MARTSYS_DB_USER"`
	LegacyPassword string `envconfig:"MARTSYS_DB_PASSWORD"`
	LegacyName     string `envconfig:"MARTSYS_DB_NAME"`
	LegacySSLMode  string `envconfig:"MARTSYS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MARTSYS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MARTSYS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MARTSYS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MARTSYS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MARTSYS_REDIS_URL"`
	Address      string        `envconfig:"MARTSYS_REDIS_ADDR"`
	Password     string        `envconfig:"MARTSYS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MARTSYS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MARTSYS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MARTSYS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MARTSYS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MARTSYS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MARTSYS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MARTSYS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MARTSYS_AUTO_MIGRATE" default:"false"`
}

type SimulatorConfig struct {
	Days            int   `envconfig:"MARTSYS_SIMULATOR_DAYS" default:"30"`
	Seed            int64 `envconfig:"MARTSYS_SIMULATOR_SEED" default:"0"`
	MaxCheckoutsDay int   `envconfig:"MARTSYS_SIMULATOR_MAX_CHECKOUTS_PER_DAY" default:"12"`
	MaxLinesPerSale int   `envconfig:"MARTSYS_SIMULATOR_MAX_LINES_PER_SALE" default:"4"`
	SeedCatalog     bool  `envconfig:"MARTSYS_SIMULATOR_SEED_CATALOG" default:"true"`
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
