// Package changefeed publishes an event after every committed write made
// through the record accessor.
package changefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrClosed is returned when publishing to a closed publisher.
	ErrClosed = errors.New("changefeed publisher is closed")
)

// Op is the kind of write an Event describes.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes one committed write.
type Event struct {
	Table  string         `json:"table"`
	Op     Op             `json:"op"`
	Key    any            `json:"key"`
	Values map[string]any `json:"values,omitempty"`
	At     time.Time      `json:"at"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Config selects and configures the sink.
type Config struct {
	Type  string // none, redis, kafka
	Redis RedisConfig
	Kafka KafkaConfig
}

// New builds the publisher named by cfg.Type.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Publisher, error) {
	switch cfg.Type {
	case "", "none":
		return Nop{}, nil
	case "redis":
		return NewRedis(ctx, cfg.Redis, logger)
	case "kafka":
		return NewKafka(cfg.Kafka, logger)
	default:
		return nil, fmt.Errorf("unsupported changefeed type %q", cfg.Type)
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
