package connection

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Retry bounds how long a dependency is waited for at startup.
type Retry struct {
	Attempts int
	Delay    time.Duration
}

func (r Retry) normalized() Retry {
	if r.Attempts < 1 {
		r.Attempts = 1
	}
	if r.Delay <= 0 {
		r.Delay = 2 * time.Second
	}
	return r
}

// Do calls fn until it succeeds, the attempts run out or ctx ends. The delay
// grows linearly with the attempt number.
func (r Retry) Do(ctx context.Context, log *zap.Logger, what string, fn func(ctx context.Context) error) error {
	r = r.normalized()
	var lastErr error
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		log.Warn(what+" not ready",
			zap.Int("attempt", attempt),
			zap.Int("max", r.Attempts),
			zap.Error(lastErr),
		)
		if attempt == r.Attempts {
			break
		}

		timer := time.NewTimer(time.Duration(attempt) * r.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("%s unavailable after %d attempts: %w", what, r.Attempts, lastErr)
}

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	DBName   string
	Port     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN renders a postgres URL; the password is escaped.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

func (c PostgresConfig) applyPool(db interface {
	SetMaxOpenConns(int)
	SetMaxIdleConns(int)
	SetConnMaxLifetime(time.Duration)
}) {
	if c.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
}

func OpenPostgres(ctx context.Context, cfg PostgresConfig, retry Retry) (*gorm.DB, error) {
	log := zap.L().Named("connection.postgres")

	var db *gorm.DB
	err := retry.Do(ctx, log, "postgres", func(ctx context.Context) error {
		opened, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err != nil {
			return err
		}
		sqlDB, err := opened.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return err
		}
		cfg.applyPool(sqlDB)
		db = opened
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("postgres connected", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
	return db, nil
}

func OpenRedis(ctx context.Context, addr string, retry Retry) (*redis.Client, error) {
	log := zap.L().Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	err := retry.Do(ctx, log, "redis", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return rdb.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}

	log.Info("redis connected", zap.String("addr", addr))
	return rdb, nil
}

// OpenKafkaWriter waits for the broker and returns a writer with no default
// topic. Each message names its own.
func OpenKafkaWriter(ctx context.Context, broker string, retry Retry) (*kafkago.Writer, error) {
	log := zap.L().Named("connection.kafka")

	err := retry.Do(ctx, log, "kafka", func(ctx context.Context) error {
		conn, err := (&kafkago.Dialer{Timeout: 5 * time.Second}).DialContext(ctx, "tcp", broker)
		if err != nil {
			return err
		}
		return conn.Close()
	})
	if err != nil {
		return nil, err
	}

	log.Info("kafka connected", zap.String("broker", broker))
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(broker),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}, nil
}

// NewKafkaReader returns a group reader that commits only on explicit
// CommitMessages calls.
func NewKafkaReader(broker, topic, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafkago.FirstOffset,
	})
}
