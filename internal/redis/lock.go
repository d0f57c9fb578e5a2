package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("customer lock not acquired")
)

// Locker guards the check-then-create critical section for a single customer.
// Best effort only: the lock narrows the duplicate-pending race, it does not
// turn the one-active-booking rule into a hard guarantee.
type Locker interface {
	WithCustomerLock(ctx context.Context, customerEmail string, fn func(ctx context.Context) error) error
}

type redisCustomerLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCustomerLocker creates a locker that uses a per customer Redis key
func NewRedisCustomerLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisCustomerLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisCustomerLocker) WithCustomerLock(ctx context.Context, customerEmail string, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:customer:%s", customerEmail)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire customer lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisCustomerLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release customer lock: %w", err)
	}
	return nil
}
