package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// PostListCache keeps serialized published-post pages in redis for a short
// TTL. Misses and redis outages both fall through to the database; this layer
// must never be load-bearing.
type PostListCache struct {
	client *Client
	ttl    time.Duration
}

func NewPostListCache(client *Client, ttl time.Duration) *PostListCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &PostListCache{client: client, ttl: ttl}
}

func BuildPostListKey(limit int, cursor string, categoryID, tagSlug *string) string {
	cat := ""
	if categoryID != nil {
		cat = *categoryID
	}
	tg := ""
	if tagSlug != nil {
		tg = *tagSlug
	}

	return "posts:list:v1:limit=" + strconv.Itoa(limit) +
		":cursor=" + cursor +
		":category=" + cat +
		":tag=" + tg
}

func (c *PostListCache) Get(ctx context.Context, key string, out any) bool {
	if c == nil || c.client == nil {
		return false
	}

	raw, err := c.client.Raw().Get(ctx, key).Bytes()

	if err != nil {
		return false // redis.Nil and outages look the same here
	}

	return json.Unmarshal(raw, out) == nil
}

func (c *PostListCache) Set(ctx context.Context, key string, val any) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(val)

	if err != nil {
		return
	}

	_ = c.client.Raw().Set(ctx, key, raw, c.ttl).Err()
}

// InvalidateAll drops every cached page. Called on any post mutation; pages
// are keyed by filter combination so targeted invalidation isn't practical.
func (c *PostListCache) InvalidateAll(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}

	var cursor uint64

	for {
		keys, next, err := c.client.Raw().Scan(ctx, cursor, "posts:list:v1:*", 100).Result()

		if err != nil {
			if !errors.Is(err, redis.Nil) {
				return
			}
			return
		}

		if len(keys) > 0 {
			_ = c.client.Raw().Del(ctx, keys...).Err()
		}

		if next == 0 {
			return
		}
		cursor = next
	}
}
