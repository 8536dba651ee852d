// Package local provides in-process cache and pub/sub backends. They
// keep a single-binary deployment free of external services.
package local

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrNotFound reports a missing key or sorted-set member.
var ErrNotFound = errors.New("cache: key not found")

// Config holds LocalCache settings.
type Config struct {
	GCInterval time.Duration
}

type value struct {
	data    string
	expires time.Time // zero means no expiry
}

func (v value) live(now time.Time) bool {
	return v.expires.IsZero() || now.Before(v.expires)
}

// LocalCache is a map-backed cache with lazy expiry on read and a
// periodic sweep for keys nobody reads again.
type LocalCache struct {
	mu   sync.RWMutex
	keys map[string]value
	sets map[string]map[string]float64

	done chan struct{}
}

// NewCache builds a LocalCache and starts its sweep goroutine.
func NewCache(cfg Config) (*LocalCache, error) {
	interval := cfg.GCInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	c := &LocalCache{
		keys: make(map[string]value),
		sets: make(map[string]map[string]float64),
		done: make(chan struct{}),
	}
	go c.sweep(interval)
	return c, nil
}

// Close stops the sweep goroutine.
func (c *LocalCache) Close() {
	close(c.done)
}

func (c *LocalCache) sweep(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case now := <-t.C:
			c.mu.Lock()
			for k, v := range c.keys {
				if !v.live(now) {
					delete(c.keys, k)
				}
			}
			c.mu.Unlock()
		case <-c.done:
			return
		}
	}
}

func (c *LocalCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	v, ok := c.keys[key]
	c.mu.RUnlock()
	if !ok || !v.live(time.Now()) {
		return "", ErrNotFound
	}
	return v.data, nil
}

func (c *LocalCache) Set(_ context.Context, key, val string, ttl time.Duration) error {
	v := value{data: val}
	if ttl > 0 {
		v.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.keys[key] = v
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.keys, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	v, ok := c.keys[key]
	c.mu.RUnlock()
	return ok && v.live(time.Now()), nil
}

func (c *LocalCache) ZAdd(_ context.Context, key string, score float64, member string) error {
	c.mu.Lock()
	set, ok := c.sets[key]
	if !ok {
		set = make(map[string]float64)
		c.sets[key] = set
	}
	set[member] = score
	c.mu.Unlock()
	return nil
}

// ZRevRange returns members ordered by descending score. A negative or
// out-of-range stop means through the last member, matching Redis.
func (c *LocalCache) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	c.mu.RLock()
	set := c.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return set[members[i]] > set[members[j]]
	})
	c.mu.RUnlock()

	n := int64(len(members))
	if start >= n {
		return nil, nil
	}
	if stop < 0 || stop >= n {
		stop = n - 1
	}
	return members[start : stop+1], nil
}

func (c *LocalCache) ZScore(_ context.Context, key, member string) (float64, error) {
	c.mu.RLock()
	score, ok := c.sets[key][member]
	c.mu.RUnlock()
	if !ok {
		return 0, ErrNotFound
	}
	return score, nil
}
