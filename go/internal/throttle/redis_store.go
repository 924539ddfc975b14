package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recordScript prunes, counts and appends in one step, so instances sharing
// a key never both admit the last free slot. Scores are unix microseconds.
//
// KEYS[1] attempt set; ARGV now, window, limit, member.
// Returns {allowed, count, oldest}.
var recordScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local count = redis.call('ZCARD', KEYS[1])
if count >= limit then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  return {0, count, tonumber(oldest[2])}
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], math.ceil(window / 1000))
return {1, count + 1, 0}
`)

// RedisStore keeps attempts in a Redis sorted set so every server instance
// shares one window per key. Entries expire with the window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "throttle:login"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

// Record runs one attempt atomically on the Redis side.
func (r *RedisStore) Record(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Recorded, error) {
	nowMicros := now.UnixMicro()
	member := fmt.Sprintf("%d-%s", nowMicros, uuid.NewString())

	res, err := recordScript.Run(ctx, r.client, []string{r.key(key)},
		nowMicros, window.Microseconds(), limit, member).Int64Slice()
	if err != nil {
		return Recorded{}, fmt.Errorf("failed to record attempt in redis: %w", err)
	}
	if len(res) != 3 {
		return Recorded{}, fmt.Errorf("unexpected redis reply %v", res)
	}
	return Recorded{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		Oldest:  time.UnixMicro(res[2]),
	}, nil
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]time.Time, error) {
	entries, err := r.client.ZRangeWithScores(ctx, r.key(key), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get attempts from redis: %w", err)
	}

	attempts := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		attempts = append(attempts, time.UnixMicro(int64(e.Score)))
	}
	return attempts, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, attempts []time.Time, ttl time.Duration) error {
	k := r.key(key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		if len(attempts) == 0 {
			return nil
		}
		members := make([]redis.Z, 0, len(attempts))
		for _, at := range attempts {
			micros := at.UnixMicro()
			members = append(members, redis.Z{
				Score:  float64(micros),
				Member: fmt.Sprintf("%d-%s", micros, uuid.NewString()),
			})
		}
		pipe.ZAdd(ctx, k, members...)
		pipe.PExpire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save attempts to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete attempts from redis: %w", err)
	}
	return nil
}
