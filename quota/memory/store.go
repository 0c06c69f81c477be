package memoryquota

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/open-rails/gatekit/quota"
)

// Store is an in-process quota backend for single-instance deployments.
// Each user owns an independent atomic counter; consuming is a compare-and-swap
// retry loop, so unrelated users never contend and there is no coarse lock.
type Store struct {
	defaultTotal int
	entries      sync.Map // uuid.UUID -> *counter
}

type counter struct {
	remaining atomic.Int64
}

// New constructs an in-process store. If defaultTotal <= 0, quota.DefaultTotal
// is used.
func New(defaultTotal int) *Store {
	if defaultTotal <= 0 {
		defaultTotal = quota.DefaultTotal
	}
	return &Store{defaultTotal: defaultTotal}
}

// counterFor returns the user's counter, creating it at total on first touch.
func (s *Store) counterFor(user uuid.UUID, total int) *counter {
	if v, ok := s.entries.Load(user); ok {
		return v.(*counter)
	}
	c := &counter{}
	c.remaining.Store(int64(total))
	if v, loaded := s.entries.LoadOrStore(user, c); loaded {
		return v.(*counter)
	}
	return c
}

// Remaining reports the current balance without creating a record.
func (s *Store) Remaining(ctx context.Context, user uuid.UUID) (int, error) {
	_ = ctx
	v, ok := s.entries.Load(user)
	if !ok {
		return s.defaultTotal, nil
	}
	return int(v.(*counter).remaining.Load()), nil
}

// TryConsume decrements via CAS. A lost race re-reads and retries; the loop
// terminates because every iteration either succeeds or observes a balance
// another caller just committed.
func (s *Store) TryConsume(ctx context.Context, user uuid.UUID, amount int) (quota.Result, error) {
	_ = ctx
	if amount <= 0 {
		return quota.Result{}, quota.ErrInvalidAmount
	}
	c := s.counterFor(user, s.defaultTotal)
	for {
		cur := c.remaining.Load()
		if cur < int64(amount) {
			return quota.Result{Allowed: false, Remaining: int(cur)}, nil
		}
		if c.remaining.CompareAndSwap(cur, cur-int64(amount)) {
			return quota.Result{Allowed: true, Remaining: int(cur) - amount}, nil
		}
	}
}

// Set overrides the balance.
func (s *Store) Set(ctx context.Context, user uuid.UUID, value int) error {
	_ = ctx
	if value < 0 {
		return quota.ErrNegativeValue
	}
	s.counterFor(user, value).remaining.Store(int64(value))
	return nil
}

// Initialize creates the record at total only if absent.
func (s *Store) Initialize(ctx context.Context, user uuid.UUID, total int) error {
	_ = ctx
	if total <= 0 {
		return quota.ErrInvalidTotal
	}
	s.counterFor(user, total)
	return nil
}

// ResetAll restores every tracked user to the default total.
func (s *Store) ResetAll(ctx context.Context) error {
	_ = ctx
	s.entries.Range(func(_, v any) bool {
		v.(*counter).remaining.Store(int64(s.defaultTotal))
		return true
	})
	return nil
}
