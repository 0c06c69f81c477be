// Package quota defines the per-user credit counter consumed by the
// enforcement engine, with interchangeable in-process and Redis backends.
package quota

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// DefaultTotal is the credit budget for a free user with no record yet.
const DefaultTotal = 5

var (
	// ErrInvalidAmount is returned when a consume amount is not positive.
	ErrInvalidAmount = errors.New("quota: amount must be positive")
	// ErrInvalidTotal is returned when a configured total is not positive.
	ErrInvalidTotal = errors.New("quota: total must be positive")
	// ErrNegativeValue is returned when an override would set a negative balance.
	ErrNegativeValue = errors.New("quota: value must not be negative")
)

// Result reports the outcome of one consume attempt. Remaining is the balance
// after the attempt: the decremented value on success, the untouched value on
// refusal.
type Result struct {
	Allowed   bool
	Remaining int
}

// Store tracks per-user credit counters. Implementations must make TryConsume
// atomic per user: concurrent attempts against the same key never over-admit,
// and attempts against different keys never contend with each other.
type Store interface {
	// Remaining reports the user's current balance. A user with no record
	// yet reports the default total; the lookup mutates nothing.
	Remaining(ctx context.Context, user uuid.UUID) (int, error)

	// TryConsume checks remaining >= amount and decrements in one indivisible
	// step. On refusal the balance is left untouched.
	TryConsume(ctx context.Context, user uuid.UUID, amount int) (Result, error)

	// Set overrides the balance. Administrative use only.
	Set(ctx context.Context, user uuid.UUID, value int) error

	// Initialize creates a record only if absent. Calling it again for the
	// same user never resets an already-decremented counter.
	Initialize(ctx context.Context, user uuid.UUID, total int) error
}

// Resetter is implemented by stores that can restore every tracked user to
// the default total. The reset sweeper feature-detects it.
type Resetter interface {
	ResetAll(ctx context.Context) error
}
