package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"applybrain-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // how long failures are counted
	BlockDuration time.Duration
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// LoginTracker counts failed sign-ins per email and blocks the address for a
// while once MaxAttempts is reached. Counters live in Redis when connected,
// otherwise in this process.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *SecurityLogger

	mu    sync.Mutex
	local map[string]*loginAttempts
	now   func() time.Time
}

type loginAttempts struct {
	count        int
	windowEnd    time.Time
	blockedUntil time.Time
}

func NewLoginTracker(config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLoginTrackerConfig().MaxAttempts
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{
		config: config,
		logger: logger,
		local:  make(map[string]*loginAttempts),
		now:    time.Now,
	}
}

// Redis key patterns. Emails are hashed so keys carry no PII.
const (
	failLoginPrefix    = "fail:login:"
	blockedLoginPrefix = "blocked:login:"
)

// KEYS[1] = counter key, ARGV[1] = TTL in seconds. Returns the new count.
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func subject(email string) string {
	return HashValue(strings.ToLower(strings.TrimSpace(email)))
}

// Blocked reports how long email stays blocked. Zero means not blocked.
func (lt *LoginTracker) Blocked(ctx context.Context, email string) (time.Duration, error) {
	key := subject(email)
	if client := redis.Client(); client != nil {
		ttl, err := client.TTL(ctx, blockedLoginPrefix+key).Result()
		if err != nil {
			return 0, fmt.Errorf("check login block: %w", err)
		}
		if ttl < 0 {
			return 0, nil
		}
		return ttl, nil
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	a, ok := lt.local[key]
	if !ok {
		return 0, nil
	}
	if left := a.blockedUntil.Sub(lt.now()); left > 0 {
		return left, nil
	}
	return 0, nil
}

// RecordFailure counts one failed attempt and reports whether it triggered
// a block.
func (lt *LoginTracker) RecordFailure(ctx context.Context, email, ip, requestID string) (bool, error) {
	key := subject(email)

	var count int
	if client := redis.Client(); client != nil {
		n, err := incrementWithTTL(ctx, client, failLoginPrefix+key, lt.config.AttemptWindow)
		if err != nil {
			return false, fmt.Errorf("count failed login: %w", err)
		}
		count = n
	} else {
		count = lt.incrementLocal(key)
	}

	if count < lt.config.MaxAttempts {
		return false, nil
	}
	if err := lt.block(ctx, key); err != nil {
		return true, err
	}
	lt.logger.LogBlockCreated(ctx, email, ip, requestID, lt.config.BlockDuration)
	return true, nil
}

func incrementWithTTL(ctx context.Context, client *goredis.Client, key string, ttl time.Duration) (int, error) {
	seconds := max(int(ttl.Seconds()), 1)
	n, err := client.Eval(ctx, incrWithTTLScript, []string{key}, seconds).Int()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (lt *LoginTracker) incrementLocal(key string) int {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	lt.sweep(now)
	a, ok := lt.local[key]
	if !ok || now.After(a.windowEnd) {
		blockedUntil := time.Time{}
		if ok {
			blockedUntil = a.blockedUntil
		}
		a = &loginAttempts{windowEnd: now.Add(lt.config.AttemptWindow), blockedUntil: blockedUntil}
		lt.local[key] = a
	}
	a.count++
	return a.count
}

// sweep drops entries with nothing left to enforce. Caller holds mu.
func (lt *LoginTracker) sweep(now time.Time) {
	for k, a := range lt.local {
		if now.After(a.windowEnd) && now.After(a.blockedUntil) {
			delete(lt.local, k)
		}
	}
}

func (lt *LoginTracker) block(ctx context.Context, key string) error {
	if client := redis.Client(); client != nil {
		if err := client.Set(ctx, blockedLoginPrefix+key, "1", lt.config.BlockDuration).Err(); err != nil {
			return fmt.Errorf("set login block: %w", err)
		}
		return client.Del(ctx, failLoginPrefix+key).Err()
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	if a, ok := lt.local[key]; ok {
		a.count = 0
		a.blockedUntil = lt.now().Add(lt.config.BlockDuration)
		return nil
	}
	return errors.New("login tracker: no attempts recorded")
}

// Clear forgets failed attempts after a successful sign-in. An active block
// is left to expire.
func (lt *LoginTracker) Clear(ctx context.Context, email string) error {
	key := subject(email)
	if client := redis.Client(); client != nil {
		return client.Del(ctx, failLoginPrefix+key).Err()
	}

	lt.mu.Lock()
	defer lt.mu.Unlock()
	if a, ok := lt.local[key]; ok {
		a.count = 0
	}
	return nil
}
