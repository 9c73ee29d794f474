// Package redis connects the registrar event bus to Redis Pub/Sub.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/campus-records/internal/infrastructure/messaging"
)

// ErrConnection is returned when Redis cannot be reached at startup.
var ErrConnection = errors.New("redis: connection failed")

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	PoolSize     int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// BufferSize is the capacity of the channel returned by Subscribe.
	BufferSize int
}

// DefaultConfig returns local defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		BufferSize:   64,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PubSubClient adapts a go-redis client to messaging.RedisClient.
type PubSubClient struct {
	client *redis.Client
	buffer int
}

var _ messaging.RedisClient = (*PubSubClient)(nil)

// NewPubSubClient connects and pings Redis.
func NewPubSubClient(ctx context.Context, cfg Config) (*PubSubClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	return newPubSubClient(client, cfg.BufferSize), nil
}

func newPubSubClient(client *redis.Client, buffer int) *PubSubClient {
	if buffer <= 0 {
		buffer = 64
	}
	return &PubSubClient{client: client, buffer: buffer}
}

// Publish sends a message to a channel.
func (c *PubSubClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.client.Publish(ctx, channel, message).Err()
}

// Subscribe subscribes to channels and forwards messages until ctx is done.
// The returned channel is closed when the subscription ends.
func (c *PubSubClient) Subscribe(ctx context.Context, channels ...string) (<-chan messaging.RedisMessage, error) {
	ps := c.client.Subscribe(ctx, channels...)

	// Wait for the subscription confirmation so publish-after-subscribe
	// is not lost.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan messaging.RedisMessage, c.buffer)
	go func() {
		defer close(out)
		defer ps.Close()

		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- toMessage(msg):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close closes the underlying client.
func (c *PubSubClient) Close() error {
	return c.client.Close()
}

func toMessage(msg *redis.Message) messaging.RedisMessage {
	return messaging.RedisMessage{Channel: msg.Channel, Payload: msg.Payload}
}
