package entitlement_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/entitlement"
	memoryentitlement "github.com/open-rails/gatekit/entitlement/memory"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// brokenStore simulates a subscription-store outage.
type brokenStore struct{}

func (brokenStore) Get(context.Context, uuid.UUID) (*entitlement.Record, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) Create(context.Context, *entitlement.Record) error {
	return errors.New("connection refused")
}
func (brokenStore) Update(context.Context, *entitlement.Record) error {
	return errors.New("connection refused")
}

func TestRecordAloneGrantsPremium(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := memoryentitlement.New()
	user := uuid.New()
	end := now.Add(time.Hour)
	rec, err := entitlement.NewExternal(user, entitlement.ProviderApple, entitlement.StatusActive, "premium_monthly", "sub_1", nil, &end)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	r := entitlement.NewResolver(entitlement.ResolverConfig{Store: store, Logger: quietLogger()})
	// No claim in ctx; the record alone must be sufficient.
	if !r.IsPremium(context.Background(), user, now) {
		t.Fatal("active record should grant premium without a claim")
	}
	if r.IsPremium(context.Background(), user, end.Add(time.Minute)) {
		t.Fatal("expired record should not grant premium")
	}
}

func TestClaimWinsOverStaleRecord(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := memoryentitlement.New()
	user := uuid.New()
	end := now.Add(-time.Hour) // already expired
	rec := &entitlement.Record{
		UserID:       user,
		Provider:     entitlement.ProviderApple,
		Status:       entitlement.StatusExpired,
		ExternalID:   "sub_2",
		PeriodEndsAt: &end,
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	r := entitlement.NewResolver(entitlement.ResolverConfig{Store: store, Logger: quietLogger()})
	ctx := entitlement.WithPremiumClaim(context.Background(), true)
	if !r.IsPremium(ctx, user, now) {
		t.Fatal("premium claim should win over a stale record")
	}
	if r.IsPremium(context.Background(), user, now) {
		t.Fatal("without the claim the stale record means free")
	}
}

func TestClaimSurvivesStoreOutage(t *testing.T) {
	r := entitlement.NewResolver(entitlement.ResolverConfig{Store: brokenStore{}, Logger: quietLogger()})
	user := uuid.New()
	now := time.Now()

	ctx := entitlement.WithPremiumClaim(context.Background(), true)
	if !r.IsPremium(ctx, user, now) {
		t.Fatal("claim-path premium must survive a store outage")
	}
	if r.IsPremium(context.Background(), user, now) {
		t.Fatal("no record and no claim means free")
	}
}

func TestUnknownUserIsFree(t *testing.T) {
	r := entitlement.NewResolver(entitlement.ResolverConfig{Store: memoryentitlement.New(), Logger: quietLogger()})
	if r.IsPremium(context.Background(), uuid.New(), time.Now()) {
		t.Fatal("unknown user should be free")
	}
}

func TestGracePeriodExtension(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	store := memoryentitlement.New()
	user := uuid.New()
	end := now.Add(-time.Minute)
	rec := &entitlement.Record{
		UserID:       user,
		Provider:     entitlement.ProviderGoogle,
		Status:       entitlement.StatusActive,
		ExternalID:   "sub_3",
		PeriodEndsAt: &end,
	}
	if err := store.Create(context.Background(), rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	strict := entitlement.NewResolver(entitlement.ResolverConfig{Store: store, Logger: quietLogger()})
	if strict.IsPremium(context.Background(), user, now) {
		t.Fatal("strict resolver should not honor an expired period")
	}
	lenient := entitlement.NewResolver(entitlement.ResolverConfig{Store: store, Logger: quietLogger(), GracePeriod: time.Hour})
	if !lenient.IsPremium(context.Background(), user, now) {
		t.Fatal("grace period should extend the expiry check")
	}
}
