package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// release only when the lease is still ours
var luaCompareDel = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

// refresh TTL only when the lease is still ours
var luaComparePExpire = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

// Lease is a short-TTL liveness marker giving one watcher per chain.
// It is clock-based best-effort exclusivity, not a consensus lock;
// downstream settlement stays idempotent regardless.
type Lease struct {
	rdb   redis.UniversalClient
	key   string
	owner string
	ttl   time.Duration
}

func NewLease(rdb redis.UniversalClient, blockchainKey string, ttl time.Duration) *Lease {
	return &Lease{
		rdb:   rdb,
		key:   "watcher:lease:" + blockchainKey,
		owner: uuid.NewString(),
		ttl:   ttl,
	}
}

// Acquire returns false when another owner already holds the lease.
func (l *Lease) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", l.key, err)
	}
	return ok, nil
}

// Renew extends the TTL; it fails if the lease was lost in the meantime.
func (l *Lease) Renew(ctx context.Context) error {
	n, err := luaComparePExpire.Run(ctx, l.rdb, []string{l.key}, l.owner, l.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("renew lease %s: %w", l.key, err)
	}
	if n == 0 {
		return fmt.Errorf("lease %s no longer held", l.key)
	}
	return nil
}

func (l *Lease) Release(ctx context.Context) error {
	_, err := luaCompareDel.Run(ctx, l.rdb, []string{l.key}, l.owner).Int()
	if err != nil {
		return fmt.Errorf("release lease %s: %w", l.key, err)
	}
	return nil
}

// TTL exposes the configured lease duration for renew scheduling.
func (l *Lease) TTL() time.Duration { return l.ttl }
