package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "DELIVERLY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Fees    FeesConfig
	GCP     GCPConfig
	PubSub  PubSubConfig
	Outbox  OutboxConfig
	Feature FeatureFlagsConfig
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
	Env          string `envconfig:"DELIVERLY_APP_ENV" required:"true"`
	Port         string `envconfig:"DELIVERLY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DELIVERLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DELIVERLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"DELIVERLY_DB_DSN"`

	Host     string `envconfig:"DELIVERLY_DB_HOST"`
	Port     int    `envconfig:"DELIVERLY_DB_PORT" default:"5432"`
	User     string `envconfig:"DELIVERLY_DB_USER"`
	Password string `envconfig:"DELIVERLY_DB_PASSWORD"`
	Name     string `envconfig:"DELIVERLY_DB_NAME"`
	SSLMode  string `envconfig:"DELIVERLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DELIVERLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DELIVERLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DELIVERLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DELIVERLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DELIVERLY_REDIS_URL"`
	Address      string        `envconfig:"DELIVERLY_REDIS_ADDR"`
	Password     string        `envconfig:"DELIVERLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"DELIVERLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DELIVERLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DELIVERLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DELIVERLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DELIVERLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DELIVERLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"DELIVERLY_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"DELIVERLY_JWT_ISSUER" required:"true"`
}

// FeesConfig carries the platform-level fees frozen into each order's pricing
// snapshot at creation time.
type FeesConfig struct {
	ShippingFee string `envconfig:"DELIVERLY_SHIPPING_FEE" default:"3.00"`
	ServiceFee  string `envconfig:"DELIVERLY_SERVICE_FEE" default:"2.00"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DELIVERLY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"DELIVERLY_PUBSUB_ORDERS_TOPIC" default:"deliverly-order-events"`
	OrdersSubscription string `envconfig:"DELIVERLY_PUBSUB_ORDERS_SUBSCRIPTION" default:"deliverly-order-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"DELIVERLY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"DELIVERLY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"DELIVERLY_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsPort    string `envconfig:"DELIVERLY_OUTBOX_METRICS_PORT" default:"9090"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DELIVERLY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"DELIVERLY_DB_HOST": db.Host,
		"DELIVERLY_DB_USER": db.User,
		"DELIVERLY_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either DELIVERLY_DB_DSN or %s are required", strings.Join(missing, ", "))
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
