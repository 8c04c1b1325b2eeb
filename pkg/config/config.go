package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

const (
	EnvPrefix = "BUSYBIZ"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv        = "BUSYBIZ_APP_ENV"
	EnvPort          = "BUSYBIZ_APP_PORT"
	EnvDBDSN         = "BUSYBIZ_DB_DSN"
	EnvDBHost        = "BUSYBIZ_DB_HOST"
	EnvDBUser        = "BUSYBIZ_DB_USER"
	EnvDBName        = "BUSYBIZ_DB_NAME"
	EnvRedisURL      = "BUSYBIZ_REDIS_URL"
	EnvStripeAPIKey  = "BUSYBIZ_STRIPE_API_KEY"
	EnvStripeSecret  = "BUSYBIZ_STRIPE_WEBHOOK_SECRET"
	EnvJWTSecret     = "BUSYBIZ_JWT_SECRET"
	EnvJWTIssuer     = "BUSYBIZ_JWT_ISSUER"
	EnvResendAPIKey  = "BUSYBIZ_RESEND_API_KEY"
	EnvContactToAddr = "BUSYBIZ_CONTACT_TO_EMAIL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Stripe       StripeConfig
	Resend       ResendConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
}

// Load reads the full configuration from the environment and verifies that
// every secret the handler set depends on is present before anything is
// registered.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate collects every missing required secret so operators see the full
// list on a single failed boot instead of one variable at a time.
func (c *Config) Validate() error {
	var errs error
	require := func(value, env string) {
		if strings.TrimSpace(value) == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s is required", env))
		}
	}

	require(c.DB.DSN, EnvDBDSN)
	require(c.Redis.URL, EnvRedisURL)
	require(c.Stripe.APIKey, EnvStripeAPIKey)
	require(c.Stripe.WebhookSecret, EnvStripeSecret)
	require(c.JWT.Secret, EnvJWTSecret)
	require(c.JWT.Issuer, EnvJWTIssuer)

	// The Resend key is deliberately not required here: the contact relay
	// fails closed per request when it is unset.
	return errs
}

type AppConfig struct {
	Env          string `envconfig:"BUSYBIZ_APP_ENV" required:"true"`
	Port         string `envconfig:"BUSYBIZ_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BUSYBIZ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BUSYBIZ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BUSYBIZ_DB_DSN"`

	LegacyHost     string `envconfig:"BUSYBIZ_DB_HOST"`
	LegacyPort     int    `envconfig:"BUSYBIZ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BUSYBIZ_DB_USER"`
	LegacyPassword string `envconfig:"BUSYBIZ_DB_PASSWORD"`
	LegacyName     string `envconfig:"BUSYBIZ_DB_NAME"`
	LegacySSLMode  string `envconfig:"BUSYBIZ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BUSYBIZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BUSYBIZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BUSYBIZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BUSYBIZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BUSYBIZ_REDIS_URL"`
	Address      string        `envconfig:"BUSYBIZ_REDIS_ADDR"`
	Password     string        `envconfig:"BUSYBIZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"BUSYBIZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BUSYBIZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BUSYBIZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BUSYBIZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BUSYBIZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BUSYBIZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"BUSYBIZ_JWT_SECRET"`
	Issuer string `envconfig:"BUSYBIZ_JWT_ISSUER"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"BUSYBIZ_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"BUSYBIZ_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"BUSYBIZ_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type ResendConfig struct {
	APIKey    string `envconfig:"BUSYBIZ_RESEND_API_KEY"`
	FromEmail string `envconfig:"BUSYBIZ_RESEND_FROM_EMAIL" default:"BusyBiz Kontaktformular <onboarding@resend.dev>"`
	ToEmail   string `envconfig:"BUSYBIZ_CONTACT_TO_EMAIL"`
}

// Configured reports whether the contact relay can actually send mail.
func (r ResendConfig) Configured() bool {
	return strings.TrimSpace(r.APIKey) != "" && strings.TrimSpace(r.ToEmail) != ""
}

type WebhookConfig struct {
	IdempotencyTTL time.Duration `envconfig:"BUSYBIZ_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BUSYBIZ_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BUSYBIZ_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
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
