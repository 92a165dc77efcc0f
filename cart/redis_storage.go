package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

// RedisStorage scopes every key to one browsing session.
type RedisStorage struct {
	client  redis.Cmdable
	session string
	ttl     time.Duration
}

// NewRedisStorage stores keys under session; a ttl of 0 keeps them forever.
func NewRedisStorage(client redis.Cmdable, session string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, session: session, ttl: ttl}
}

func (r *RedisStorage) sessionKey(key string) string {
	return fmt.Sprintf("session:%s:%s", r.session, key)
}

func (r *RedisStorage) Get(c context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(c, r.sessionKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed getting key=%s with error=%w", r.sessionKey(key), err)
	}
	return value, true, nil
}

func (r *RedisStorage) Set(c context.Context, key string, value []byte) error {
	if err := r.client.Set(c, r.sessionKey(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed setting key=%s with error=%w", r.sessionKey(key), err)
	}
	return nil
}

func (r *RedisStorage) Remove(c context.Context, key string) error {
	if err := r.client.Del(c, r.sessionKey(key)).Err(); err != nil {
		return fmt.Errorf("failed deleting key=%s with error=%w", r.sessionKey(key), err)
	}
	return nil
}
