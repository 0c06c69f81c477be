package pgentitlement

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/open-rails/gatekit/entitlement"
)

// Store persists entitlement records in Postgres. Optimistic versioning is
// enforced in SQL: updates match on the version column and bump it, so a
// concurrent writer's stale version affects zero rows.
type Store struct {
	pg     *pgxpool.Pool
	schema string
}

// New creates a store over the given pool. An empty schema defaults to
// "billing".
func New(pg *pgxpool.Pool, schema string) *Store {
	s := strings.TrimSpace(schema)
	if s == "" {
		s = "billing"
	}
	return &Store{pg: pg, schema: s}
}

func (s *Store) table() string { return s.schema + ".entitlements" }

func (s *Store) Get(ctx context.Context, user uuid.UUID) (*entitlement.Record, error) {
	var rec entitlement.Record
	var provider, status string
	err := s.pg.QueryRow(ctx, `SELECT user_id, provider, status, plan, external_id, trial_ends_at, period_ends_at, notes, version, created_at, updated_at FROM `+s.table()+` WHERE user_id=$1`, user).
		Scan(&rec.UserID, &provider, &status, &rec.Plan, &rec.ExternalID, &rec.TrialEndsAt, &rec.PeriodEndsAt, &rec.Notes, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entitlement.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Provider = entitlement.Provider(provider)
	rec.Status = entitlement.Status(status)
	return &rec, nil
}

func (s *Store) Create(ctx context.Context, rec *entitlement.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	tag, err := s.pg.Exec(ctx, `INSERT INTO `+s.table()+` (user_id, provider, status, plan, external_id, trial_ends_at, period_ends_at, notes, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,1,NOW(),NOW())
		ON CONFLICT (user_id) DO NOTHING`,
		rec.UserID, string(rec.Provider), string(rec.Status), rec.Plan, rec.ExternalID, rec.TrialEndsAt, rec.PeriodEndsAt, rec.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entitlement.ErrVersionConflict
	}
	rec.Version = 1
	return nil
}

func (s *Store) Update(ctx context.Context, rec *entitlement.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	tag, err := s.pg.Exec(ctx, `UPDATE `+s.table()+` SET provider=$2, status=$3, plan=$4, external_id=$5, trial_ends_at=$6, period_ends_at=$7, notes=$8, version=version+1, updated_at=NOW()
		WHERE user_id=$1 AND version=$9`,
		rec.UserID, string(rec.Provider), string(rec.Status), rec.Plan, rec.ExternalID, rec.TrialEndsAt, rec.PeriodEndsAt, rec.Notes, rec.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entitlement.ErrVersionConflict
	}
	rec.Version++
	return nil
}
