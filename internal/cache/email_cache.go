// Package cache holds the Redis-backed lookups in front of slower stores.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultEmailPrefix = "paddock:email:"

// EmailCache maps caller ids to emails with a fixed TTL. Entries are never
// invalidated: an email changed directly in the users table shows up in
// audit views only after the entry expires.
type EmailCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewEmailCache(client *redis.Client, ttl time.Duration) *EmailCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &EmailCache{client: client, prefix: defaultEmailPrefix, ttl: ttl}
}

func (c *EmailCache) key(id string) string {
	return c.prefix + id
}

// GetEmails returns the cached subset of ids. Unknown ids are absent.
func (c *EmailCache) GetEmails(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = c.key(id)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("mget emails: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[ids[i]] = s
		}
	}
	return out, nil
}

func (c *EmailCache) SetEmails(ctx context.Context, emails map[string]string) error {
	if len(emails) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, email := range emails {
			pipe.Set(ctx, c.key(id), email, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set emails: %w", err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (c *EmailCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
