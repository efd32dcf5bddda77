package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"vidaview/internal/app/locking"
)

const (
	DefaultTTL   = 30 * time.Second
	retryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another node is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis leases keys with SET NX PX. A lease expires after TTL even if the
// holder dies.
type Redis struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
	Wait   time.Duration
	Logger *slog.Logger
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	name := r.Prefix + key
	token := uuid.NewString()
	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	ctx, cancel := context.WithTimeout(ctx, waitOrDefault(r.Wait))
	defer cancel()

	for {
		ok, err := r.Client.SetNX(ctx, name, token, ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return r.releaser(name, token), nil
		}
		select {
		case <-ctx.Done():
			return nil, waitError(ctx)
		case <-time.After(retryBackoff):
		}
	}
}

func (r *Redis) releaser(name, token string) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.Client, []string{name}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			r.logger().Warn("lock release failed", "key", name, "error", err)
		}
	}
}

func (r *Redis) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

var _ locking.Locker = (*Redis)(nil)
