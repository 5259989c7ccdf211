package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/claim_seat.lua
var claimSeatScript string

//go:embed scripts/release_seat.lua
var releaseSeatScript string

// ErrRosterNotCached is returned by ClaimSeat when the event's roster
// counters are not present in Redis; the caller must fall back to the
// database.
var ErrRosterNotCached = errors.New("roster not cached")

type Client struct {
	rdb           *redis.Client
	claimScript   *redis.Script
	releaseScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		claimScript:   redis.NewScript(claimSeatScript),
		releaseScript: redis.NewScript(releaseSeatScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func rosterKey(eventID string) string {
	return fmt.Sprintf("roster:%s", eventID)
}

// ClaimSeat atomically increments the taken counter of an event's cached
// roster when a seat is available. Returns false when the event is full and
// ErrRosterNotCached when the counters have not been initialized.
func (c *Client) ClaimSeat(ctx context.Context, eventID string) (bool, error) {
	result, err := c.claimScript.Run(ctx, c.rdb, []string{rosterKey(eventID)}).Result()
	if err != nil {
		return false, fmt.Errorf("claim seat script failed: %w", err)
	}

	code, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}
	if code == -1 {
		return false, ErrRosterNotCached
	}

	return code == 1, nil
}

// ReleaseSeat atomically decrements the taken counter (compensation)
func (c *Client) ReleaseSeat(ctx context.Context, eventID string) error {
	_, err := c.releaseScript.Run(ctx, c.rdb, []string{rosterKey(eventID)}).Result()
	if err != nil {
		return fmt.Errorf("release seat script failed: %w", err)
	}
	return nil
}

// InitRoster initializes an event's roster counters in Redis
func (c *Client) InitRoster(ctx context.Context, eventID string, capacity, taken int) error {
	key := rosterKey(eventID)

	pipe := c.rdb.Pipeline()
	pipe.HSet(ctx, key, "capacity", capacity)
	pipe.HSet(ctx, key, "taken", taken)

	_, err := pipe.Exec(ctx)
	return err
}

// GetRoster retrieves the cached roster counters for an event
func (c *Client) GetRoster(ctx context.Context, eventID string) (capacity, taken int, err error) {
	result, err := c.rdb.HGetAll(ctx, rosterKey(eventID)).Result()
	if err != nil {
		return 0, 0, err
	}

	if len(result) == 0 {
		return 0, 0, fmt.Errorf("roster not cached for event %s", eventID)
	}

	fmt.Sscanf(result["capacity"], "%d", &capacity)
	fmt.Sscanf(result["taken"], "%d", &taken)
	return capacity, taken, nil
}
