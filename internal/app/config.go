package app

import (
	"errors"
	"strings"
	"time"

	"go-hris-leave/internal/leave"
	"go-hris-leave/internal/shared/connection"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/time/rate"
)

type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   string `envconfig:"PORT" default:"3000"`

	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBUser        string `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME" default:"hris"`
	DBPort        string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxRetries  int    `envconfig:"DB_MAX_RETRIES" default:"5"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`

	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnectRetryDelay time.Duration `envconfig:"CONNECT_RETRY_DELAY" default:"2s"`

	// RedisAddr empty runs without cache, idempotency and the apply lock.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	KafkaBroker             string        `envconfig:"KAFKA_BROKER"`
	KafkaConsumerGroup      string        `envconfig:"KAFKA_CONSUMER_GROUP" default:"go-hris-leave-notifier"`
	ConsumerRetryBackoff    time.Duration `envconfig:"CONSUMER_RETRY_BACKOFF" default:"1s"`
	ConsumerMaxRetryBackoff time.Duration `envconfig:"CONSUMER_MAX_RETRY_BACKOFF" default:"1m"`
	OutboxPollInterval      time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"3s"`
	OutboxBatchSize         int           `envconfig:"OUTBOX_BATCH_SIZE" default:"50"`
	OutboxLease             time.Duration `envconfig:"OUTBOX_LEASE" default:"30s"`
	OutboxMaxAttempts       int           `envconfig:"OUTBOX_MAX_ATTEMPTS" default:"8"`

	JWTSecret     string        `envconfig:"JWT_SECRET"`
	RBACPolicyTTL time.Duration `envconfig:"RBAC_POLICY_TTL" default:"30s"`

	LeaveWeekendDays  []string      `envconfig:"LEAVE_WEEKEND_DAYS" default:"Sat,Sun"`
	LeaveAllowExceed  bool          `envconfig:"LEAVE_ALLOW_EXCEED" default:"false"`
	LeaveApplyLockTTL time.Duration `envconfig:"LEAVE_APPLY_LOCK_TTL" default:"15s"`
	LeaveMaxRangeDays int           `envconfig:"LEAVE_MAX_RANGE_DAYS" default:"366"`

	ApplyRatePerSecond float64 `envconfig:"APPLY_RATE_PER_SECOND" default:"1"`
	ApplyRateBurst     int     `envconfig:"APPLY_RATE_BURST" default:"5"`
	IPRatePerSecond    float64 `envconfig:"IP_RATE_PER_SECOND" default:"20"`
	IPRateBurst        int     `envconfig:"IP_RATE_BURST" default:"40"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.WeekendDays(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateAPI checks the settings only the HTTP server needs.
func (c *Config) ValidateAPI() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c != nil && strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) Postgres() connection.PostgresConfig {
	return connection.PostgresConfig{
		Host:     c.DBHost,
		User:     c.DBUser,
		Password: c.DBPassword,
		DBName:   c.DBName,
		Port:     c.DBPort,
		SSLMode:  c.DBSSLMode,

		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}

// ConnectRetry is the startup wait policy for every backing service.
func (c *Config) ConnectRetry() connection.Retry {
	return connection.Retry{Attempts: c.DBMaxRetries, Delay: c.ConnectRetryDelay}
}

func (c *Config) WeekendDays() ([]time.Weekday, error) {
	return leave.ParseWeekdays(c.LeaveWeekendDays)
}

func (c *Config) ApplyRate() rate.Limit {
	return rate.Limit(c.ApplyRatePerSecond)
}

func (c *Config) IPRate() rate.Limit {
	return rate.Limit(c.IPRatePerSecond)
}
