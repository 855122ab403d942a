package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher publishes every record as JSON on a redis pub/sub channel
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisPublisher connects to url and verifies the connection
func NewRedisPublisher(ctx context.Context, url, channel string, timeout time.Duration, logger *zap.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return newRedisPublisher(rdb, channel, timeout, logger), nil
}

func newRedisPublisher(rdb *redis.Client, channel string, timeout time.Duration, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		rdb:     rdb,
		channel: channel,
		timeout: timeout,
		logger:  logger.Named("redis_publisher"),
	}
}

func (p *RedisPublisher) Name() string { return "redis" }

// Notify publishes r; failures are logged and otherwise ignored
func (p *RedisPublisher) Notify(ctx context.Context, r Record) {
	data, err := json.Marshal(r)
	if err != nil {
		p.logger.Warn("Failed to encode record", zap.Error(err))
		return
	}

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.rdb.Publish(pubCtx, p.channel, data).Err(); err != nil {
		p.logger.Warn("Failed to publish record",
			zap.String("channel", p.channel),
			zap.String("lock_id", r.ID),
			zap.Error(err))
	}
}

// Close closes the redis connection
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
