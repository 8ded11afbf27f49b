package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"furniture_shop/internal/session"

	"github.com/go-redis/redis/v8"
)

// Client stores session state as JSON under "session:<id>" keys.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func Initialize(redisURL string, ttl time.Duration) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb, ttl: ttl}, nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Load implements session.Store.
func (c *Client) Load(ctx context.Context, sessionID string) (*session.State, error) {
	val, err := c.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	state := session.New()
	if err := json.Unmarshal([]byte(val), state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if state.Cart == nil {
		state.Cart = session.Cart{}
	}
	return state, nil
}

// Save implements session.Store. Every save pushes the expiry forward.
func (c *Client) Save(ctx context.Context, sessionID string, state *session.State) error {
	jsonData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	return c.rdb.Set(ctx, sessionKey(sessionID), jsonData, c.ttl).Err()
}

// Delete implements session.Store.
func (c *Client) Delete(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

// Clear deletes every stored session and reports how many were removed.
func (c *Client) Clear(ctx context.Context) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, sessionKey("*"), 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan sessions: %w", err)
		}
		if len(keys) > 0 {
			n, err := c.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete sessions: %w", err)
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			return removed, nil
		}
	}
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
