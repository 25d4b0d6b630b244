package authclient

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

var _ CredentialStore = &RedisStore{}

// RedisStore keeps credentials in a Redis hash, one hash per client profile.
// Meant for kiosk or roaming-profile deployments where the "durable client
// storage" lives off the device. The CredentialStore contract stays
// synchronous; each call resolves within the configured timeout.
type RedisStore struct {
	client  redis.UniversalClient
	hashKey string
	timeout time.Duration
}

// NewRedisStore namespaces credentials under the given profile key.
func NewRedisStore(client redis.UniversalClient, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client:  client,
		hashKey: "authclient:credentials:" + profile,
		timeout: 5 * time.Second,
	}
}

func (s *RedisStore) Get(key string) (string, error) {
	ctx, cancel := s.opContext()
	defer cancel()

	value, err := s.client.HGet(ctx, s.hashKey, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "redis credential read failed")
	}
	return value, nil
}

func (s *RedisStore) Set(key, value string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.HSet(ctx, s.hashKey, key, value).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "redis credential write failed")
	}
	return nil
}

func (s *RedisStore) Remove(key string) error {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.HDel(ctx, s.hashKey, key).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "redis credential delete failed")
	}
	return nil
}

func (s *RedisStore) Clear() error {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.Del(ctx, s.hashKey).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "redis credential clear failed")
	}
	return nil
}

func (s *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
