// Package redis backs the cache and pub/sub interfaces with a Redis
// server, for deployments that run more than one instance.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ErrNotFound reports a missing key or sorted-set member.
var ErrNotFound = errors.New("cache: key not found")

// Config holds the connection settings for one Redis server.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// dial opens a client and verifies the server answers before handing
// it out. Connection problems surface at startup, not on first use.
func dial(cfg Config) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// RedisCache satisfies the application cache interface with Redis
// strings and sorted sets.
type RedisCache struct {
	rdb *goredis.Client
}

// NewCache connects and returns a Redis-backed cache.
func NewCache(cfg Config) (*RedisCache, error) {
	rdb, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

func (c *RedisCache) ZAdd(ctx context.Context, key string, score float64, member string) error {
	return c.rdb.ZAdd(ctx, key, goredis.Z{Score: score, Member: member}).Err()
}

func (c *RedisCache) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return c.rdb.ZRevRange(ctx, key, start, stop).Result()
}

func (c *RedisCache) ZScore(ctx context.Context, key, member string) (float64, error) {
	v, err := c.rdb.ZScore(ctx, key, member).Result()
	if errors.Is(err, goredis.Nil) {
		return 0, ErrNotFound
	}
	return v, err
}

// RedisMessage is one delivery from RedisPubSub.Subscribe.
type RedisMessage struct {
	Channel string
	Payload string
}

// RedisPubSub publishes and subscribes over Redis channels. It holds
// its own client because subscriptions pin a connection.
type RedisPubSub struct {
	rdb *goredis.Client
}

// NewPubSub connects and returns a Redis-backed pub/sub.
func NewPubSub(cfg Config) (*RedisPubSub, error) {
	rdb, err := dial(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisPubSub{rdb: rdb}, nil
}

func (p *RedisPubSub) Publish(ctx context.Context, channel, message string) error {
	return p.rdb.Publish(ctx, channel, message).Err()
}

// Subscribe streams messages from the named channels. The returned
// cancel closes the subscription, which in turn closes the stream.
func (p *RedisPubSub) Subscribe(ctx context.Context, channels ...string) (<-chan *RedisMessage, func(), error) {
	sub := p.rdb.Subscribe(ctx, channels...)
	out := make(chan *RedisMessage, 256)
	go func() {
		defer close(out)
		for m := range sub.Channel() {
			out <- &RedisMessage{Channel: m.Channel, Payload: m.Payload}
		}
	}()
	return out, func() { _ = sub.Close() }, nil
}
