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
	CORS         CORSConfig
	Redis        RedisConfig
	Auth         AuthConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"DELIVERY_APP_ENV" required:"true"`
	Port         string `envconfig:"DELIVERY_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"DELIVERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DELIVERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DELIVERY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DELIVERY_DB_DSN"`
	Driver string `envconfig:"DELIVERY_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DELIVERY_DB_HOST"`
	Port     int    `envconfig:"DELIVERY_DB_PORT" default:"5432"`
	User     string `envconfig:"DELIVERY_DB_USER"`
	Password string `envconfig:"DELIVERY_DB_PASSWORD"`
	Name     string `envconfig:"DELIVERY_DB_NAME"`
	SSLMode  string `envconfig:"DELIVERY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DELIVERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DELIVERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DELIVERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DELIVERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// CORSConfig holds the single dashboard origin allowed to call the API.
type CORSConfig struct {
	ClientOrigin string `envconfig:"DELIVERY_CLIENT_URI" default:"http://localhost:5173"`
}

// RedisConfig is optional; an empty URL and address disables idempotency replay.
type RedisConfig struct {
	URL          string        `envconfig:"DELIVERY_REDIS_URL"`
	Address      string        `envconfig:"DELIVERY_REDIS_ADDR"`
	Password     string        `envconfig:"DELIVERY_REDIS_PASSWORD"`
	DB           int           `envconfig:"DELIVERY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DELIVERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DELIVERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DELIVERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DELIVERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DELIVERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// AuthConfig configures operator bearer tokens. An empty secret leaves the API open.
type AuthConfig struct {
	JWTSecret         string `envconfig:"DELIVERY_AUTH_JWT_SECRET"`
	JWTIssuer         string `envconfig:"DELIVERY_AUTH_JWT_ISSUER" default:"delivery-console"`
	ExpirationMinutes int    `envconfig:"DELIVERY_AUTH_JWT_EXPIRATION_MINUTES" default:"720"`
}

func (a AuthConfig) Enabled() bool {
	return strings.TrimSpace(a.JWTSecret) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DELIVERY_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"DELIVERY_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DELIVERY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"DELIVERY_PUBSUB_DOMAIN_TOPIC" default:"delivery-domain-events"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"DELIVERY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"DELIVERY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"DELIVERY_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"DELIVERY_OUTBOX_METRICS_ADDR"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
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
