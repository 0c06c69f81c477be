package reset

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/quota"
	memoryquota "github.com/open-rails/gatekit/quota/memory"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// plainStore implements quota.Store without quota.Resetter.
type plainStore struct{}

func (plainStore) Remaining(context.Context, uuid.UUID) (int, error) { return 0, nil }
func (plainStore) TryConsume(context.Context, uuid.UUID, int) (quota.Result, error) {
	return quota.Result{}, nil
}
func (plainStore) Set(context.Context, uuid.UUID, int) error        { return nil }
func (plainStore) Initialize(context.Context, uuid.UUID, int) error { return nil }

func TestNewSweeperRequiresResetter(t *testing.T) {
	if _, err := NewSweeper("0 0 * * *", plainStore{}, quietLogger()); !errors.Is(err, ErrNotResettable) {
		t.Fatalf("expected ErrNotResettable, got %v", err)
	}
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	if _, err := NewSweeper("not a schedule", memoryquota.New(5), quietLogger()); err == nil {
		t.Fatal("expected an error for a bad cron spec")
	}
}

func TestSweeperStartStop(t *testing.T) {
	s, err := NewSweeper("@daily", memoryquota.New(5), quietLogger())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.Start()
	s.Stop()
}
