package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is passed to envconfig; individual tags carry the full name.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "QUOTEHUB_DB_DSN"
	EnvDBHost = "QUOTEHUB_DB_HOST"
	EnvDBUser = "QUOTEHUB_DB_USER"
	EnvDBName = "QUOTEHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"QUOTEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTEHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUOTEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTEHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"QUOTEHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"QUOTEHUB_DB_DSN"`

	LegacyHost     string `envconfig:"QUOTEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"QUOTEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUOTEHUB_DB_USER"`
	LegacyPassword string `envconfig:"QUOTEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUOTEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUOTEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUOTEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUOTEHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"QUOTEHUB_REDIS_ADDRESS"`
	Password     string        `envconfig:"QUOTEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUOTEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUOTEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUOTEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUOTEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUOTEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUOTEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"QUOTEHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"QUOTEHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"QUOTEHUB_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"QUOTEHUB_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the Redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	BcryptCost int `envconfig:"QUOTEHUB_PASSWORD_BCRYPT_COST" default:"12"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"QUOTEHUB_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"QUOTEHUB_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"QUOTEHUB_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"QUOTEHUB_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"QUOTEHUB_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"QUOTEHUB_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUOTEHUB_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"QUOTEHUB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"QUOTEHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"QUOTEHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	QuoteTopic               string `envconfig:"QUOTEHUB_PUBSUB_QUOTE_TOPIC" default:"qh-quote-events"`
	QuoteSubscription        string `envconfig:"QUOTEHUB_PUBSUB_QUOTE_SUBSCRIPTION" required:"true"`
	NotificationTopic        string `envconfig:"QUOTEHUB_PUBSUB_NOTIFICATION_TOPIC" default:"qh-notification-events"`
	NotificationSubscription string `envconfig:"QUOTEHUB_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"QUOTEHUB_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"QUOTEHUB_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"QUOTEHUB_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"QUOTEHUB_OUTBOX_IDEMPOTENCY_TTL" default:"72h"`
}

type CronConfig struct {
	ExpirySweepInterval   time.Duration `envconfig:"QUOTEHUB_CRON_EXPIRY_SWEEP_INTERVAL" default:"5m"`
	NotificationRetention time.Duration `envconfig:"QUOTEHUB_CRON_NOTIFICATION_RETENTION" default:"720h"`
	OutboxRetention       time.Duration `envconfig:"QUOTEHUB_CRON_OUTBOX_RETENTION" default:"168h"`
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
