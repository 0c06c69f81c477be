package memoryentitlement

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/open-rails/gatekit/entitlement"
)

// Store is an in-memory entitlement record store for single-node deployments
// and tests. Version checks mirror the postgres store so callers exercise the
// same conflict handling.
type Store struct {
	mu   sync.Mutex
	recs map[uuid.UUID]*entitlement.Record
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{recs: make(map[uuid.UUID]*entitlement.Record)}
}

func (s *Store) Get(ctx context.Context, user uuid.UUID) (*entitlement.Record, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[user]
	if !ok {
		return nil, entitlement.ErrNotFound
	}
	return clone(rec), nil
}

func (s *Store) Create(ctx context.Context, rec *entitlement.Record) error {
	_ = ctx
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.UserID]; ok {
		return entitlement.ErrVersionConflict
	}
	now := time.Now()
	stored := clone(rec)
	stored.Version = 1
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.recs[rec.UserID] = stored
	rec.Version = stored.Version
	return nil
}

func (s *Store) Update(ctx context.Context, rec *entitlement.Record) error {
	_ = ctx
	if err := rec.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[rec.UserID]
	if !ok || cur.Version != rec.Version {
		return entitlement.ErrVersionConflict
	}
	stored := clone(rec)
	stored.Version = cur.Version + 1
	stored.CreatedAt = cur.CreatedAt
	stored.UpdatedAt = time.Now()
	s.recs[rec.UserID] = stored
	rec.Version = stored.Version
	return nil
}

// clone copies the record including its timestamp pointers so callers never
// share mutable state with the store.
func clone(rec *entitlement.Record) *entitlement.Record {
	out := *rec
	if rec.TrialEndsAt != nil {
		t := *rec.TrialEndsAt
		out.TrialEndsAt = &t
	}
	if rec.PeriodEndsAt != nil {
		t := *rec.PeriodEndsAt
		out.PeriodEndsAt = &t
	}
	return &out
}
