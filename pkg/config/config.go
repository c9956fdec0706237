package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Payments     PaymentsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

// Load reads the IMPORTOPS_ environment, resolves the database target and
// reports every invalid setting at once.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	if err := cfg.DB.resolveDSN(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf(format, args...))
		}
	}
	check(c.DB.Driver == DriverPostgres || c.DB.Driver == DriverSQLite, "unsupported db driver %q", c.DB.Driver)
	check(c.JWT.ExpirationMinutes > 0, "jwt expiration minutes must be positive")
	check(c.JWT.ClockSkew >= 0, "jwt clock skew must not be negative")
	check(c.Payments.LockTTL > 0, "payments lock ttl must be positive")
	check(c.Outbox.BatchSize > 0, "outbox batch size must be positive")
	check(c.Outbox.MaxAttempts > 0, "outbox max attempts must be positive")
	check(c.Outbox.PollIntervalMS > 0, "outbox poll interval must be positive")
	format := strings.ToLower(c.App.LogFormat)
	check(format == "json" || format == "console", "unsupported log format %q", c.App.LogFormat)
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"IMPORTOPS_APP_ENV" required:"true"`
	Port         string `envconfig:"IMPORTOPS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"IMPORTOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"IMPORTOPS_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"IMPORTOPS_LOG_FORMAT" default:"json"`

	CORSOrigins []string `envconfig:"IMPORTOPS_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"IMPORTOPS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"IMPORTOPS_DB_DSN"`
	Driver string `envconfig:"IMPORTOPS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"IMPORTOPS_DB_HOST"`
	LegacyPort     int    `envconfig:"IMPORTOPS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"IMPORTOPS_DB_USER"`
	LegacyPassword string `envconfig:"IMPORTOPS_DB_PASSWORD"`
	LegacyName     string `envconfig:"IMPORTOPS_DB_NAME"`
	LegacySSLMode  string `envconfig:"IMPORTOPS_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"IMPORTOPS_SQLITE_PATH" default:"importops.db"`

	MaxOpenConns    int           `envconfig:"IMPORTOPS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IMPORTOPS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IMPORTOPS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IMPORTOPS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"IMPORTOPS_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IMPORTOPS_REDIS_URL"`
	Address      string        `envconfig:"IMPORTOPS_REDIS_ADDR"`
	Password     string        `envconfig:"IMPORTOPS_REDIS_PASSWORD"`
	DB           int           `envconfig:"IMPORTOPS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IMPORTOPS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IMPORTOPS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IMPORTOPS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IMPORTOPS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IMPORTOPS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"IMPORTOPS_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"IMPORTOPS_JWT_ISSUER" required:"true"`
	// ExpirationMinutes is only used when minting tokens for local tooling and tests.
	ExpirationMinutes int `envconfig:"IMPORTOPS_JWT_EXPIRATION_MINUTES" default:"60"`
	// ClockSkew is the leeway applied to exp and iat checks.
	ClockSkew time.Duration `envconfig:"IMPORTOPS_JWT_CLOCK_SKEW" default:"30s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"IMPORTOPS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"IMPORTOPS_AUTO_MIGRATE" default:"false"`
}

type PaymentsConfig struct {
	AllowOverpayment bool          `envconfig:"IMPORTOPS_PAYMENTS_ALLOW_OVERPAYMENT" default:"false"`
	LockTTL          time.Duration `envconfig:"IMPORTOPS_PAYMENTS_LOCK_TTL" default:"30s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"IMPORTOPS_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DispatchTopic string `envconfig:"IMPORTOPS_PUBSUB_DISPATCH_TOPIC" default:"importops-dispatch-events"`
	LedgerTopic   string `envconfig:"IMPORTOPS_PUBSUB_LEDGER_TOPIC" default:"importops-ledger-events"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"IMPORTOPS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"IMPORTOPS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"IMPORTOPS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"IMPORTOPS_OUTBOX_METRICS_ADDR" default:":9091"`
}

// resolveDSN assembles a postgres DSN from the legacy host/user/name
// variables when no DSN is given.
func (db *DBConfig) resolveDSN() error {
	if db.Driver == DriverSQLite || db.DSN != "" {
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
