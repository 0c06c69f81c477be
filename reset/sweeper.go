// Package reset holds the optional periodic quota reset. It is an extension
// point: nothing runs unless a schedule is configured.
package reset

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/quota"
)

// ErrNotResettable is returned when the configured store cannot restore
// balances.
var ErrNotResettable = errors.New("reset: quota store does not support ResetAll")

// Sweeper restores every tracked user to the default total on a cron
// schedule.
type Sweeper struct {
	c   *cron.Cron
	log *logrus.Logger
}

// NewSweeper builds a sweeper for the given schedule (standard cron spec,
// e.g. "0 0 * * *" for midnight). The store must implement quota.Resetter.
func NewSweeper(schedule string, store quota.Store, log *logrus.Logger) (*Sweeper, error) {
	r, ok := store.(quota.Resetter)
	if !ok {
		return nil, ErrNotResettable
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := r.ResetAll(context.Background()); err != nil {
			log.WithError(err).Error("quota reset sweep failed")
			return
		}
		log.Info("quota reset sweep complete")
	})
	if err != nil {
		return nil, fmt.Errorf("reset: bad schedule %q: %w", schedule, err)
	}
	return &Sweeper{c: c, log: log}, nil
}

// Start begins scheduling sweeps.
func (s *Sweeper) Start() { s.c.Start() }

// Stop halts scheduling; a sweep already running completes.
func (s *Sweeper) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}
