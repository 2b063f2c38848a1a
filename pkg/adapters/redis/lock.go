package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/pixelpilot/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
	// ErrLockLost is reported by a Lease whose lock expired or changed hands.
	ErrLockLost = errors.New("distributed lock lost")
)

// DefaultLockRetry is the polling interval while a lock is contended.
const DefaultLockRetry = 100 * time.Millisecond

var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

var renewScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`)

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		retry:  DefaultLockRetry,
	}
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// Each holder stores a unique token so that an expired holder cannot release a
// lock that has since been taken by someone else.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey, token, err := l.acquire(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
	}, nil
}

func (l *Locker) acquire(ctx context.Context, key string, ttl time.Duration) (string, string, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.Must(uuid.NewV7()).String()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		success, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return "", "", fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if success {
			return lockKey, token, nil
		}

		select {
		case <-ctx.Done():
			return "", "", fmt.Errorf("%w %s: %w", ErrLockAcquire, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Lease is a lock kept alive by periodic renewal.
type Lease struct {
	locker  *Locker
	key     string
	token   string
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
	lost    chan struct{}
	once    sync.Once
	errOnce sync.Once
	err     error
}

// Hold acquires key like Lock and renews its ttl every ttl/3 until Release.
// When a renewal fails or finds the lock owned by another token, Lost is
// closed and renewal stops.
func (l *Locker) Hold(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	lockKey, token, err := l.acquire(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	lease := &Lease{
		locker: l,
		key:    lockKey,
		token:  token,
		ttl:    ttl,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		lost:   make(chan struct{}),
	}
	go lease.renew()
	return lease, nil
}

func (h *Lease) renew() {
	defer close(h.done)
	every := h.ttl / 3
	if every <= 0 {
		every = h.ttl
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), every)
		ok, err := renewScript.Run(ctx, h.locker.client, []string{h.key}, h.token, h.ttl.Milliseconds()).Int()
		cancel()
		switch {
		case err != nil:
			h.fail(fmt.Errorf("%w: %s: %w", ErrLockLost, h.key, err))
			return
		case ok == 0:
			h.fail(fmt.Errorf("%w: %s is no longer held", ErrLockLost, h.key))
			return
		}
	}
}

func (h *Lease) fail(err error) {
	h.errOnce.Do(func() {
		h.err = err
		close(h.lost)
	})
}

// Lost is closed once the lease can no longer guarantee ownership.
func (h *Lease) Lost() <-chan struct{} { return h.lost }

// Err returns why the lease was lost, or nil while it is held.
func (h *Lease) Err() error {
	select {
	case <-h.lost:
		return h.err
	default:
		return nil
	}
}

// Release stops renewal and deletes the lock if this lease still owns it.
func (h *Lease) Release(ctx context.Context) error {
	h.once.Do(func() { close(h.stop) })
	<-h.done
	return unlockScript.Run(ctx, h.locker.client, []string{h.key}, h.token).Err()
}
