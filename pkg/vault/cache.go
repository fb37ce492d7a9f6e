// pkg/vault/cache.go
package vault

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type cachedSecret struct {
	value   string
	expires time.Time
}

// Cached fronts a Store with an in-process TTL cache. Concurrent misses for
// the same name share one backing fetch. An optional redis client adds a
// second cache tier shared across instances; values written there are the
// encrypted blobs only when a cipher is present, so a nil cipher disables
// the redis tier.
type Cached struct {
	backing Store
	ttl     time.Duration
	cipher  *Cipher
	rdb     *redis.Client

	mu       sync.Mutex
	items    map[string]cachedSecret
	inflight map[string]chan struct{}
}

func NewCached(backing Store, ttl time.Duration, cipher *Cipher, rdb *redis.Client) *Cached {
	return &Cached{
		backing:  backing,
		ttl:      ttl,
		cipher:   cipher,
		rdb:      rdb,
		items:    map[string]cachedSecret{},
		inflight: map[string]chan struct{}{},
	}
}

func redisKey(name string) string { return "vault:" + name }

func (c *Cached) Get(ctx context.Context, name string) (string, error) {
	for {
		c.mu.Lock()
		if e, ok := c.items[name]; ok && time.Now().Before(e.expires) {
			c.mu.Unlock()
			return e.value, nil
		}
		if ch, ok := c.inflight[name]; ok {
			c.mu.Unlock()
			select {
			case <-ch:
				continue // re-check cache
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		ch := make(chan struct{})
		c.inflight[name] = ch
		c.mu.Unlock()

		value, err := c.fetch(ctx, name)

		c.mu.Lock()
		delete(c.inflight, name)
		close(ch)
		if err == nil {
			c.items[name] = cachedSecret{value: value, expires: time.Now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return value, err
	}
}

func (c *Cached) fetch(ctx context.Context, name string) (string, error) {
	if c.rdb != nil && c.cipher != nil {
		if blob, err := c.rdb.Get(ctx, redisKey(name)).Bytes(); err == nil {
			if plain, derr := c.cipher.Decrypt(blob); derr == nil {
				return string(plain), nil
			}
		}
	}
	value, err := c.backing.Get(ctx, name)
	if err != nil {
		return "", err
	}
	if c.rdb != nil && c.cipher != nil {
		if blob, eerr := c.cipher.Encrypt([]byte(value)); eerr == nil {
			_ = c.rdb.Set(ctx, redisKey(name), blob, c.ttl).Err()
		}
	}
	return value, nil
}

func (c *Cached) Set(ctx context.Context, name, value string) error {
	if err := c.backing.Set(ctx, name, value); err != nil {
		return err
	}
	c.invalidate(ctx, name)
	return nil
}

func (c *Cached) Delete(ctx context.Context, name string) error {
	if err := c.backing.Delete(ctx, name); err != nil {
		return err
	}
	c.invalidate(ctx, name)
	return nil
}

func (c *Cached) invalidate(ctx context.Context, name string) {
	c.mu.Lock()
	delete(c.items, name)
	c.mu.Unlock()
	if c.rdb != nil {
		_ = c.rdb.Del(ctx, redisKey(name)).Err()
	}
}
