package entitlement

import (
	"context"

	"github.com/google/uuid"
)

// Store persists entitlement records. Writes are serialized per user by an
// optimistic version stamp: Update succeeds only when the caller holds the
// current version, otherwise it returns ErrVersionConflict and the caller
// retries with fresh state.
type Store interface {
	// Get returns the user's record, or ErrNotFound.
	Get(ctx context.Context, user uuid.UUID) (*Record, error)

	// Create inserts a first record at version 1. If a record already
	// exists it returns ErrVersionConflict.
	Create(ctx context.Context, rec *Record) error

	// Update replaces the record if rec.Version matches the stored version,
	// bumping the version on success.
	Update(ctx context.Context, rec *Record) error
}
