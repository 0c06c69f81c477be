package enforce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/gatekit/quota"
)

// DefaultStoreTimeout bounds every quota store call.
const DefaultStoreTimeout = 2 * time.Second

// QuotaService wraps a quota.Store with fail-closed error handling: any store
// fault (timeout, transport error) presents as "cannot allow", exactly like
// exhaustion. No inline retry, to avoid amplifying load on a struggling
// backend.
type QuotaService struct {
	store   quota.Store
	timeout time.Duration
	log     *logrus.Logger
}

// NewQuotaService builds the service. Timeout <= 0 uses DefaultStoreTimeout;
// a nil logger uses the logrus standard logger.
func NewQuotaService(store quota.Store, timeout time.Duration, log *logrus.Logger) *QuotaService {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuotaService{store: store, timeout: timeout, log: log}
}

// TryConsume attempts an atomic consume. Store faults are logged and mapped
// to a refusal with zero remaining; callers cannot distinguish them from
// exhaustion.
func (s *QuotaService) TryConsume(ctx context.Context, user uuid.UUID, amount int) quota.Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.store.TryConsume(ctx, user, amount)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user).Warn("quota store failure, failing closed")
		return quota.Result{Allowed: false, Remaining: 0}
	}
	return res
}

// Remaining reports the balance, zero on store fault.
func (s *QuotaService) Remaining(ctx context.Context, user uuid.UUID) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	v, err := s.store.Remaining(ctx, user)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user).Warn("quota store failure, reporting zero")
		return 0
	}
	return v
}
