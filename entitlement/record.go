// Package entitlement resolves whether a user is premium, from an
// authoritative subscription record with an authenticated-claim fallback,
// and carries the administrative grant/revoke operations that write that
// same record.
package entitlement

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider identifies where a subscription came from.
type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderManual Provider = "manual"
	ProviderApple  Provider = "apple"
	ProviderGoogle Provider = "google"
)

// Status is the subscription lifecycle state.
type Status string

const (
	StatusNone     Status = "none"
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

var (
	// ErrNotFound is returned when no record exists for a user.
	ErrNotFound = errors.New("entitlement: record not found")
	// ErrVersionConflict is returned when a concurrent writer updated the
	// record first. Callers should re-read and retry.
	ErrVersionConflict = errors.New("entitlement: version conflict")
	// ErrInvalidRecord is returned when a record breaks a field invariant.
	ErrInvalidRecord = errors.New("entitlement: invalid record")
)

// Record is the authoritative subscription state for one user. The free
// baseline is provider none / status none; cancellation and expiry return a
// user there rather than deleting the row. Version serializes concurrent
// administrative writes.
type Record struct {
	UserID       uuid.UUID
	Provider     Provider
	Status       Status
	Plan         string
	ExternalID   string // provider-side subscription id; empty for manual grants
	TrialEndsAt  *time.Time
	PeriodEndsAt *time.Time
	Notes        string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the field invariants. It runs at construction and before
// every write, so an impossible combination is rejected eagerly instead of
// being discovered later from stale data.
func (r *Record) Validate() error {
	if r.UserID == uuid.Nil {
		return fmt.Errorf("%w: missing user id", ErrInvalidRecord)
	}
	if r.Provider == ProviderNone && r.Status != StatusNone {
		return fmt.Errorf("%w: status %q without a provider", ErrInvalidRecord, r.Status)
	}
	if r.Provider == ProviderManual && r.ExternalID != "" {
		return fmt.Errorf("%w: manual grant carries an external subscription id", ErrInvalidRecord)
	}
	if r.Notes != "" && r.Provider != ProviderManual {
		return fmt.Errorf("%w: notes are reserved for manual grants", ErrInvalidRecord)
	}
	if r.Status == StatusTrialing && r.TrialEndsAt == nil {
		return fmt.Errorf("%w: trialing without trial_ends_at", ErrInvalidRecord)
	}
	if r.Status == StatusActive && r.PeriodEndsAt == nil {
		return fmt.Errorf("%w: active without period_ends_at", ErrInvalidRecord)
	}
	return nil
}

// PremiumAt reports whether the record grants premium at the given instant.
func (r *Record) PremiumAt(now time.Time) bool {
	switch r.Status {
	case StatusActive:
		return r.PeriodEndsAt != nil && now.Before(*r.PeriodEndsAt)
	case StatusTrialing:
		return r.TrialEndsAt != nil && now.Before(*r.TrialEndsAt)
	}
	return false
}

// NewFreeBaseline returns the default record a user holds from registration
// until a verification or grant changes it.
func NewFreeBaseline(user uuid.UUID) *Record {
	return &Record{UserID: user, Provider: ProviderNone, Status: StatusNone}
}

// NewManualGrant builds an operator-issued premium record. A grant whose
// expiry is not in the future is rejected here, before it can be stored.
func NewManualGrant(user uuid.UUID, plan string, expiresAt time.Time, notes string, now time.Time) (*Record, error) {
	if !expiresAt.After(now) {
		return nil, fmt.Errorf("%w: manual grant expires at %s, not after %s", ErrInvalidRecord, expiresAt.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	end := expiresAt
	r := &Record{
		UserID:       user,
		Provider:     ProviderManual,
		Status:       StatusActive,
		Plan:         plan,
		PeriodEndsAt: &end,
		Notes:        notes,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewExternal builds a record from a verified store receipt.
func NewExternal(user uuid.UUID, provider Provider, status Status, plan, externalID string, trialEndsAt, periodEndsAt *time.Time) (*Record, error) {
	if provider != ProviderApple && provider != ProviderGoogle {
		return nil, fmt.Errorf("%w: provider %q is not an external store", ErrInvalidRecord, provider)
	}
	r := &Record{
		UserID:       user,
		Provider:     provider,
		Status:       status,
		Plan:         plan,
		ExternalID:   externalID,
		TrialEndsAt:  trialEndsAt,
		PeriodEndsAt: periodEndsAt,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
