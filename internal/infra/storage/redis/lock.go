package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gabapcia/faucet/internal/faucet"
	"github.com/gabapcia/faucet/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// lockKeyPrefix is the namespace of the per-address claim locks.
	lockKeyPrefix = "faucet:lock"

	unlockTimeout = 5 * time.Second
)

var errLockBusy = errors.New("lock busy")

// unlockScript deletes the lock only if it still holds the caller's token, so an
// expired holder cannot release a lock acquired by someone else.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func lockKey(key string) string {
	return fmt.Sprintf("%s:%s", lockKeyPrefix, key)
}

func isLockBusy(err error) bool {
	return errors.Is(err, errLockBusy)
}

// Lock acquires the distributed claim lock for key with SET NX and a TTL,
// polling at a fixed interval while another instance holds it.
//
// Returns faucet.ErrClaimInProgress once the wait budget is exhausted.
func (c *client) Lock(ctx context.Context, key string) (func(), error) {
	k := lockKey(key)
	token := uuid.NewString()

	err := c.lockRetry.Execute(ctx, func() error {
		ok, err := c.conn.SetNX(ctx, k, token, c.lockTTL).Result()
		if err != nil {
			return err
		}

		if !ok {
			return errLockBusy
		}

		return nil
	})
	if err != nil {
		if isLockBusy(err) {
			return nil, faucet.ErrClaimInProgress
		}

		return nil, err
	}

	var once sync.Once
	unlock := func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
			defer cancel()

			if err := unlockScript.Run(ctx, c.conn, []string{k}, token).Err(); err != nil {
				logger.Warn(ctx, "failed to release claim lock", "key", k, "error", err)
			}
		})
	}

	return unlock, nil
}

var _ faucet.Locker = new(client)
