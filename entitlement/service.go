package entitlement

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/clock"
)

// Service carries the administrative and verification writes. Manual grants
// and store-verified subscriptions go through the same record, so there is no
// separate code path for operators.
type Service struct {
	store Store
	clk   clock.Clock
	log   *logrus.Logger
}

// NewService builds a Service. A nil clk uses the system clock; a nil logger
// uses the logrus standard logger.
func NewService(store Store, clk clock.Clock, log *logrus.Logger) *Service {
	if clk == nil {
		clk = clock.Default()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{store: store, clk: clk, log: log}
}

// EnsureBaseline creates the free baseline record if the user has none.
// Called at registration.
func (s *Service) EnsureBaseline(ctx context.Context, user uuid.UUID) error {
	_, err := s.store.Get(ctx, user)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	err = s.store.Create(ctx, NewFreeBaseline(user))
	if errors.Is(err, ErrVersionConflict) {
		// Lost a create race; the record exists now.
		return nil
	}
	return err
}

// Grant issues an operator premium grant with an explicit expiry. A past
// expiry is rejected before anything is written. On a version conflict the
// caller re-reads and retries.
func (s *Service) Grant(ctx context.Context, user uuid.UUID, plan string, expiresAt time.Time, notes string) (*Record, error) {
	rec, err := NewManualGrant(user, plan, expiresAt, notes, s.clk.Now())
	if err != nil {
		return nil, err
	}
	if err := s.upsert(ctx, rec); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"user_id":    user,
		"plan":       plan,
		"expires_at": expiresAt,
	}).Info("manual premium grant")
	return rec, nil
}

// Revoke returns the user to the free baseline. The record is kept, not
// deleted.
func (s *Service) Revoke(ctx context.Context, user uuid.UUID) (*Record, error) {
	rec := NewFreeBaseline(user)
	if err := s.upsert(ctx, rec); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", user).Info("premium revoked")
	return rec, nil
}

// ApplyExternal records the outcome of a store receipt verification.
func (s *Service) ApplyExternal(ctx context.Context, user uuid.UUID, provider Provider, status Status, plan, externalID string, trialEndsAt, periodEndsAt *time.Time) (*Record, error) {
	rec, err := NewExternal(user, provider, status, plan, externalID, trialEndsAt, periodEndsAt)
	if err != nil {
		return nil, err
	}
	if err := s.upsert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// upsert writes rec over whatever version currently exists. Version conflicts
// propagate so concurrent operators never overwrite each other blindly.
func (s *Service) upsert(ctx context.Context, rec *Record) error {
	existing, err := s.store.Get(ctx, rec.UserID)
	switch {
	case err == nil:
		rec.Version = existing.Version
		return s.store.Update(ctx, rec)
	case errors.Is(err, ErrNotFound):
		return s.store.Create(ctx, rec)
	default:
		return err
	}
}
