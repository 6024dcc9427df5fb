package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.getCount(ctx, key)
	return count > 0, err
}

func (s *Store) getCount(ctx context.Context, key string) (int64, error) {
	return s.client.Exists(ctx, key).Result()
}

// hash ops back the session metadata records
func (s *Store) HashSet(ctx context.Context, key string, fields map[string]interface{}) error {
	return s.client.HSet(ctx, key, fields).Err()
}

func (s *Store) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

func (s *Store) ListPush(ctx context.Context, key string, values ...interface{}) error {
	return s.client.RPush(ctx, key, values...).Err()
}

// The guard check and the writes must be one atomic unit. A plain
// MULTI/EXEC would let a concurrent delete land between the status read
// and the push, so the whole thing runs as a script server-side.
var guardedListPushScript = redis.NewScript(`
local guard = redis.call('HGET', KEYS[2], ARGV[1])
if guard == false then
	return 0
end
if guard == ARGV[2] then
	return -1
end
local n = tonumber(ARGV[3])
for i = 4, 3 + n do
	redis.call('RPUSH', KEYS[1], ARGV[i])
end
for i = 4 + n, #ARGV, 2 do
	redis.call('HSET', KEYS[2], ARGV[i], ARGV[i + 1])
end
return 1
`)

// Script results: 1 pushed, 0 companion hash missing, -1 guard field
// held the forbidden value. Nothing is written unless the result is 1.
const (
	GuardedPushOK       = 1
	GuardedPushMissing  = 0
	GuardedPushRejected = -1
)

// ListPushWithMetaGuarded appends values and updates the companion hash,
// but only when the hash exists and its guard field does not hold the
// forbidden value. Check and writes are atomic.
func (s *Store) ListPushWithMetaGuarded(ctx context.Context, listKey string, metaKey string, guardField string, forbiddenValue string, metaFields map[string]interface{}, values ...interface{}) (int64, error) {
	args := make([]interface{}, 0, 3+len(values)+2*len(metaFields))
	args = append(args, guardField, forbiddenValue, len(values))
	args = append(args, values...)
	for field, value := range metaFields {
		args = append(args, field, value)
	}
	return guardedListPushScript.Run(ctx, s.client, []string{listKey, metaKey}, args...).Int64()
}

func (s *Store) ListGetAll(ctx context.Context, key string) ([]string, error) {
	return s.listRange(ctx, key, 0)
}

// ListGetLast returns at most n trailing entries, oldest first.
func (s *Store) ListGetLast(ctx context.Context, key string, n int64) ([]string, error) {
	if n <= 0 {
		return s.ListGetAll(ctx, key)
	}
	count, err := s.getCount(ctx, key)
	if count < 1 || err != nil {
		return []string{}, err
	}
	return s.listRange(ctx, key, -n)
}

func (s *Store) listRange(ctx context.Context, key string, start int64) ([]string, error) {
	result, err := s.client.LRange(ctx, key, start, -1).Result()
	return result, err
}

func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}
