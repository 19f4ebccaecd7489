package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTL for dispatch lookups. The execution fabric polls these on every
// script invocation, so reads must not always hit Postgres.
const dispatchTTL = 5 * time.Minute

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) *Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	return &Client{client}
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, data, expiration).Err()
}

func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

func (c *Client) CacheDispatchLimits(ctx context.Context, scriptID string, limits interface{}) error {
	return c.SetJSON(ctx, dispatchLimitsKey(scriptID), limits, dispatchTTL)
}

func (c *Client) GetCachedDispatchLimits(ctx context.Context, scriptID string, dest interface{}) error {
	return c.GetJSON(ctx, dispatchLimitsKey(scriptID), dest)
}

func (c *Client) CacheOutboundWorker(ctx context.Context, scriptID string, worker interface{}) error {
	return c.SetJSON(ctx, outboundWorkerKey(scriptID), worker, dispatchTTL)
}

func (c *Client) GetCachedOutboundWorker(ctx context.Context, scriptID string, dest interface{}) error {
	return c.GetJSON(ctx, outboundWorkerKey(scriptID), dest)
}

func (c *Client) InvalidateDispatch(ctx context.Context, scriptID string) error {
	return c.Del(ctx, dispatchLimitsKey(scriptID), outboundWorkerKey(scriptID)).Err()
}

func dispatchLimitsKey(scriptID string) string {
	return fmt.Sprintf("dispatch:limits:%s", scriptID)
}

func outboundWorkerKey(scriptID string) string {
	return fmt.Sprintf("dispatch:outbound:%s", scriptID)
}
