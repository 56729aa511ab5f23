package cache

import (
	"context"
	"time"

	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a single-instance SET NX lock. A nil client always grants
// the lock, which is enough for a single process.
type RedisLocker struct {
	client   *redis.Client
	newToken func() string
}

func NewRedisLocker(client *redis.Client) repository.ILocker {
	return &RedisLocker{client: client, newToken: uuid.NewString}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if l.client == nil {
		return func() {}, true, nil
	}
	token := l.newToken()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			logger.GetLogger().WithField("error", err).WithField("key", key).Warn("release lock failed")
		}
	}
	return release, true, nil
}
