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
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Payments     PaymentsConfig
	Payouts      PayoutsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
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
	Env          string `envconfig:"MEALORA_APP_ENV" required:"true"`
	Port         string `envconfig:"MEALORA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MEALORA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MEALORA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MEALORA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"MEALORA_DB_DSN"`
	Driver string `envconfig:"MEALORA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MEALORA_DB_HOST"`
	LegacyPort     int    `envconfig:"MEALORA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MEALORA_DB_USER"`
	LegacyPassword string `envconfig:"MEALORA_DB_PASSWORD"`
	LegacyName     string `envconfig:"MEALORA_DB_NAME"`
	LegacySSLMode  string `envconfig:"MEALORA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MEALORA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MEALORA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MEALORA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MEALORA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MEALORA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MEALORA_REDIS_ADDR"`
	Password     string        `envconfig:"MEALORA_REDIS_PASSWORD"`
	DB           int           `envconfig:"MEALORA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MEALORA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MEALORA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MEALORA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MEALORA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MEALORA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MEALORA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MEALORA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MEALORA_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MEALORA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MEALORA_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey               string        `envconfig:"MEALORA_STRIPE_API_KEY"`
	Secret               string        `envconfig:"MEALORA_STRIPE_WEBHOOK_SECRET"`
	Env                  string        `envconfig:"MEALORA_STRIPE_ENV" default:"test"`
	CallTimeout          time.Duration `envconfig:"MEALORA_STRIPE_CALL_TIMEOUT" default:"10s"`
	OnboardingReturnURL  string        `envconfig:"MEALORA_STRIPE_ONBOARDING_RETURN_URL"`
	OnboardingRefreshURL string        `envconfig:"MEALORA_STRIPE_ONBOARDING_REFRESH_URL"`
	WebhookEventTTL      time.Duration `envconfig:"MEALORA_STRIPE_WEBHOOK_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PaymentsConfig struct {
	PlatformFeePercent int    `envconfig:"MEALORA_PLATFORM_FEE_PERCENT" default:"5"`
	Currency           string `envconfig:"MEALORA_PAYMENTS_CURRENCY" default:"usd"`
}

type PayoutsConfig struct {
	SweepInterval time.Duration `envconfig:"MEALORA_PAYOUT_SWEEP_INTERVAL" default:"1h"`
	LockTTL       time.Duration `envconfig:"MEALORA_PAYOUT_LOCK_TTL" default:"2h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MEALORA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"MEALORA_PUBSUB_NOTIFICATION_TOPIC" default:"mealora-notification-events"`
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
