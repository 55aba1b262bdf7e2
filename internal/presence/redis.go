package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:user:"

// RedisRegistry shares the presence view across instances. Entries carry a
// TTL refreshed on heartbeat, so a crashed instance's users expire instead of
// lingering online forever.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRegistry constructs a registry over an existing client.
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) key(userID int) string {
	return keyPrefix + strconv.Itoa(userID)
}

func (r *RedisRegistry) Register(ctx context.Context, userID int, connID string) error {
	return r.client.Set(ctx, r.key(userID), connID, r.ttl).Err()
}

func (r *RedisRegistry) Unregister(ctx context.Context, userID int, connID string) (bool, error) {
	// Delete only when the stored conn id still matches; a newer connection
	// may have overwritten this one.
	script := redis.NewScript(`
        if redis.call("GET", KEYS[1]) == ARGV[1] then
            return redis.call("DEL", KEYS[1])
        end
        return 0`)
	removed, err := script.Run(ctx, r.client, []string{r.key(userID)}, connID).Int()
	if err != nil {
		return false, err
	}
	return removed == 1, nil
}

func (r *RedisRegistry) Lookup(ctx context.Context, userID int) (string, bool, error) {
	connID, err := r.client.Get(ctx, r.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return connID, true, nil
}

func (r *RedisRegistry) Online(ctx context.Context) ([]int, error) {
	var (
		cursor uint64
		ids    []int
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			id, err := strconv.Atoi(strings.TrimPrefix(key, keyPrefix))
			if err != nil {
				return nil, fmt.Errorf("malformed presence key %q: %w", key, err)
			}
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 {
			return ids, nil
		}
	}
}

func (r *RedisRegistry) Refresh(ctx context.Context, userID int) error {
	return r.client.Expire(ctx, r.key(userID), r.ttl).Err()
}
