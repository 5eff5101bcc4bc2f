package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrLockNotAcquired is returned when a key stays locked after every retry.
var ErrLockNotAcquired = errors.New("lock not acquired")

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	MinIdleConns int
	ReadTimeout  time.Duration
	MaxRetries   int
}

// NewRedisClient creates a Redis client with the provided configuration
func NewRedisClient(ctx context.Context, config RedisConfig, log *zap.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(config.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse Redis URL")
	}

	opt.PoolSize = config.PoolSize
	opt.MinIdleConns = config.MinIdleConns
	opt.DialTimeout = config.DialTimeout
	opt.ReadTimeout = config.ReadTimeout
	opt.MaxRetries = config.MaxRetries

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping Redis server")
	}

	log.Info("redis client initialized",
		zap.Int("pool_size", config.PoolSize),
		zap.Int("min_idle_conns", config.MinIdleConns),
		zap.Duration("dial_timeout", config.DialTimeout),
		zap.Duration("read_timeout", config.ReadTimeout),
		zap.Int("max_retries", config.MaxRetries),
	)
	return client, nil
}

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RedisLocker hands out short-lived SETNX locks.
type RedisLocker struct {
	client     *redis.Client
	release    *redis.Script
	log        *zap.Logger
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

func NewRedisLocker(client *redis.Client, log *zap.Logger) *RedisLocker {
	return &RedisLocker{
		client:     client,
		release:    redis.NewScript(releaseLockScript),
		log:        log,
		TTL:        10 * time.Second,
		Retries:    5,
		RetryDelay: 100 * time.Millisecond,
	}
}

// NewLock tries once to take key for value.
func (l *RedisLocker) NewLock(ctx context.Context, key, value string) (bool, error) {
	return l.client.SetNX(ctx, key, value, l.TTL).Result()
}

// ReleaseLock deletes key only while it still holds value.
func (l *RedisLocker) ReleaseLock(ctx context.Context, key, value string) error {
	result, err := l.release.Run(ctx, l.client, []string{key}, value).Int64()
	if err != nil {
		return errors.Wrap(err, "failed to release lock")
	}
	if result == 0 {
		return errors.New("lock release failed: not the lock owner")
	}
	return nil
}

// Lock retries NewLock and returns a func that releases the lock.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	value := uuid.New().String()
	for attempt := 0; attempt < l.Retries; attempt++ {
		ok, err := l.NewLock(ctx, key, value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to acquire lock %s", key)
		}
		if ok {
			return func() {
				// The caller's context may already be done once the work finishes.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := l.ReleaseLock(releaseCtx, key, value); err != nil {
					l.log.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
				}
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.RetryDelay):
		}
	}
	return nil, errors.Wrap(ErrLockNotAcquired, key)
}

// MonitorRedisPool logs pool statistics every interval until ctx is done.
func MonitorRedisPool(ctx context.Context, client *redis.Client, log *zap.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := client.PoolStats()
			log.Debug("redis pool stats",
				zap.Uint32("total", stats.TotalConns),
				zap.Uint32("idle", stats.IdleConns),
				zap.Uint32("stale", stats.StaleConns),
			)
		}
	}
}

// SlotLockKey names the lock guarding one clinic time slot.
func SlotLockKey(clinicaID uint, fechaHora time.Time) string {
	return fmt.Sprintf("cita_slot_lock:%d:%d", clinicaID, fechaHora.Unix())
}

// UsuarioLockKey names the lock guarding registration of one login.
func UsuarioLockKey(login string) string {
	return "usuario_lock:" + login
}
