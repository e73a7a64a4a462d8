package orderlock

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/expediterhq/expediter/internal/config"
)

const (
	lockTTL        = 5 * time.Second
	releaseTimeout = time.Second
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker holds a short-lived advisory lock per order across instances. The
// version guard on the orders table stays authoritative; the lock only keeps
// two instances from burning guard retries against the same row. A nil
// Locker (no redis configured) is a valid no-op.
type Locker struct {
	client *redis.Client
	script *redis.Script
	log    *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) *Locker {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return &Locker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		log:    log.Named("orderlock"),
	}
}

// Acquire takes the order's lock and returns its release func. Acquisition
// is best effort: on redis errors or contention the caller proceeds anyway
// and relies on the version guard.
func (l *Locker) Acquire(ctx context.Context, orderID snowflake.ID) func() {
	if l == nil || l.client == nil {
		return func() {}
	}

	key := "expediter:order:" + orderID.String()
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
	if err != nil {
		l.log.Warn("lock acquire failed", zap.String("key", key), zap.Error(err))
		return func() {}
	}
	if !ok {
		return func() {}
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := l.script.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}
}

var Module = fx.Module("orderlock",
	fx.Provide(New),
)
