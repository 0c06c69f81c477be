package redisquota

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/open-rails/gatekit/quota"
)

// consumeScript performs the whole check-and-decrement on the Redis server so
// independent process instances never race each other client-side. A missing
// key is treated as the default total (lazy init).
//
// KEYS[1] counter key, ARGV[1] amount, ARGV[2] default total.
// Returns {allowed(0|1), remaining}.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v == false then
  v = tonumber(ARGV[2])
else
  v = tonumber(v)
end
local amount = tonumber(ARGV[1])
if v >= amount then
  v = v - amount
  redis.call('SET', KEYS[1], v)
  return {1, v}
end
return {0, v}
`)

// Store is a Redis-backed quota backend shared across instances.
type Store struct {
	rdb          *redis.Client
	keyNS        string
	defaultTotal int
}

// New constructs a Redis-backed store. Defaults: key prefix "gate:quota:",
// total quota.DefaultTotal.
func New(rdb *redis.Client, keyPrefix string, defaultTotal int) *Store {
	if keyPrefix == "" {
		keyPrefix = "gate:quota:"
	}
	if defaultTotal <= 0 {
		defaultTotal = quota.DefaultTotal
	}
	return &Store{rdb: rdb, keyNS: keyPrefix, defaultTotal: defaultTotal}
}

func (s *Store) key(user uuid.UUID) string { return s.keyNS + user.String() }

// Remaining reports the balance; absent keys report the default total.
func (s *Store) Remaining(ctx context.Context, user uuid.UUID) (int, error) {
	v, err := s.rdb.Get(ctx, s.key(user)).Int()
	if err == redis.Nil {
		return s.defaultTotal, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota: redis get: %w", err)
	}
	return v, nil
}

// TryConsume runs the server-side script; the check and decrement are one
// indivisible step.
func (s *Store) TryConsume(ctx context.Context, user uuid.UUID, amount int) (quota.Result, error) {
	if amount <= 0 {
		return quota.Result{}, quota.ErrInvalidAmount
	}
	raw, err := consumeScript.Run(ctx, s.rdb, []string{s.key(user)}, amount, s.defaultTotal).Result()
	if err != nil {
		return quota.Result{}, fmt.Errorf("quota: redis consume: %w", err)
	}
	reply, ok := raw.([]interface{})
	if !ok || len(reply) != 2 {
		return quota.Result{}, fmt.Errorf("quota: redis consume: unexpected reply %v", raw)
	}
	allowed, _ := reply[0].(int64)
	remaining, _ := reply[1].(int64)
	return quota.Result{Allowed: allowed == 1, Remaining: int(remaining)}, nil
}

// Set overrides the balance.
func (s *Store) Set(ctx context.Context, user uuid.UUID, value int) error {
	if value < 0 {
		return quota.ErrNegativeValue
	}
	if err := s.rdb.Set(ctx, s.key(user), value, 0).Err(); err != nil {
		return fmt.Errorf("quota: redis set: %w", err)
	}
	return nil
}

// Initialize creates the key only if absent (SETNX), so a second call never
// resets a decremented counter.
func (s *Store) Initialize(ctx context.Context, user uuid.UUID, total int) error {
	if total <= 0 {
		return quota.ErrInvalidTotal
	}
	if err := s.rdb.SetNX(ctx, s.key(user), total, 0).Err(); err != nil {
		return fmt.Errorf("quota: redis setnx: %w", err)
	}
	return nil
}

// ResetAll scans the namespace and restores every key to the default total.
// Keys evicted under memory pressure simply reappear at the default on next
// touch, so eviction is a capacity risk, not a correctness one.
func (s *Store) ResetAll(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.keyNS+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Set(ctx, iter.Val(), s.defaultTotal, 0).Err(); err != nil {
			return fmt.Errorf("quota: redis reset: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("quota: redis reset scan: %w", err)
	}
	return nil
}
