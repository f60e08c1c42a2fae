package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	MaxLen   int64 // approximate stream cap, 0 keeps everything
}

// Redis appends events to a Redis stream.
type Redis struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Stream == "" {
		cfg.Stream = "db-crud:changes"
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("changefeed connected to redis",
		zap.String("addr", cfg.Addr),
		zap.String("stream", cfg.Stream))

	return &Redis{client: client, stream: cfg.Stream, maxLen: cfg.MaxLen, logger: logger}, nil
}

func (r *Redis) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"table": event.Table,
			"op":    string(event.Op),
			"event": data,
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", r.stream, err)
	}
	r.logger.Debug("change event published",
		zap.String("stream", r.stream),
		zap.String("id", id),
		zap.String("table", event.Table))
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
