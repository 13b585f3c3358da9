package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "newhope:analytics:version"
	bumpChannel     = "newhope:analytics:bump"
)

// Cache wraps Redis based caching with versioning controls. Keys embed the
// current version, so a Bump orphans every cached dashboard at once.
type Cache struct {
	client  *redis.Client
	ttl     time.Duration
	lookups *prometheus.CounterVec
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// WithMetrics registers a hit/miss counter on reg.
func (c *Cache) WithMetrics(reg prometheus.Registerer) *Cache {
	if c == nil || reg == nil {
		return c
	}
	c.lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "newhope_dashboard_cache_lookups_total",
		Help: "Dashboard cache lookups partitioned by result.",
	}, []string{"result"})
	reg.MustRegister(c.lookups)
	return c
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, cacheVersionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// GetJSON decodes a cached value into dest and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.observe("miss")
		return false, nil
	}
	if err != nil {
		c.observe("error")
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.observe("error")
		return false, err
	}
	c.observe("hit")
	return true, nil
}

// SetJSON stores value under key for the configured TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func (c *Cache) observe(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// InvalidateReports bumps the version; it lets the cache serve as the
// synchronous invalidator when no worker queue is configured.
func (c *Cache) InvalidateReports(ctx context.Context, reason string) error {
	return c.Bump(ctx)
}

// ListenForInvalidation subscribes to version bump notifications so that
// replicas sharing a Redis pick up bumps published elsewhere. onBump, when
// set, receives each announced version.
func (c *Cache) ListenForInvalidation(ctx context.Context, onBump func(version int64)) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				if onBump != nil {
					onBump(ver)
				}
			}
		}
	}()
	return nil
}
