// Package cache selects between a Redis-backed store and an in-process
// fallback so single-binary deployments need no external services.
package cache

import (
	"context"
	"time"

	"github.com/ryotaku/taskforge/cache/local"
	cacheredis "github.com/ryotaku/taskforge/cache/redis"
)

// Cache is the store the application talks to. Plain keys hold session
// tokens, a sorted set holds the points leaderboard.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZScore(ctx context.Context, key, member string) (float64, error)
}

// Message is one delivery from a PubSub subscription.
type Message struct {
	Channel string
	Payload string
}

// PubSub fans event payloads out to subscribers, such as SSE clients.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

// CacheConfig configures both backends. A non-empty RedisAddr selects
// Redis, everything else stays in process.
type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
}

func (c CacheConfig) redis() cacheredis.Config {
	return cacheredis.Config{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// NewCache builds the Cache the config asks for.
func NewCache(cfg CacheConfig) (Cache, error) {
	if cfg.RedisAddr != "" {
		return cacheredis.NewCache(cfg.redis())
	}
	return local.NewCache(local.Config{GCInterval: cfg.LocalGCInterval})
}

// NewPubSub builds the PubSub the config asks for. Both backends expose
// their own message type, so the result is wrapped to emit *Message.
func NewPubSub(cfg CacheConfig) (PubSub, error) {
	buf := cfg.LocalPubSubBuf
	if buf <= 0 {
		buf = 256
	}
	if cfg.RedisAddr == "" {
		ps := local.NewPubSub(buf)
		return pubsubFuncs{
			publish: ps.Publish,
			subscribe: func(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
				in, cancel, err := ps.Subscribe(ctx, channels...)
				if err != nil {
					return nil, nil, err
				}
				return forward(in, func(m *local.LocalMessage) *Message {
					return &Message{Channel: m.Channel, Payload: m.Payload}
				}), cancel, nil
			},
		}, nil
	}
	ps, err := cacheredis.NewPubSub(cfg.redis())
	if err != nil {
		return nil, err
	}
	return pubsubFuncs{
		publish: ps.Publish,
		subscribe: func(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
			in, cancel, err := ps.Subscribe(ctx, channels...)
			if err != nil {
				return nil, nil, err
			}
			return forward(in, func(m *cacheredis.RedisMessage) *Message {
				return &Message{Channel: m.Channel, Payload: m.Payload}
			}), cancel, nil
		},
	}, nil
}

// pubsubFuncs adapts a backend's publish/subscribe pair to the PubSub
// interface without a dedicated wrapper type per backend.
type pubsubFuncs struct {
	publish   func(ctx context.Context, channel, message string) error
	subscribe func(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
}

func (p pubsubFuncs) Publish(ctx context.Context, channel, message string) error {
	return p.publish(ctx, channel, message)
}

func (p pubsubFuncs) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	return p.subscribe(ctx, channels...)
}

// forward converts a backend message stream into *Message, closing the
// output when the backend stream closes.
func forward[T any](in <-chan *T, conv func(*T) *Message) <-chan *Message {
	out := make(chan *Message, cap(in))
	go func() {
		defer close(out)
		for m := range in {
			out <- conv(m)
		}
	}()
	return out
}
