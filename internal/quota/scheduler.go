package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Scheduler gates outgoing requests against the remote hourly quota.
// The token bucket refills at the quota rate with a full-quota burst,
// so short interactive sessions run unthrottled and only sustained use
// is slowed. On startup the bucket is drained by the ledger's
// trailing-hour count so a restart cannot double-spend the quota.
type Scheduler struct {
	limiter *rate.Limiter
	ledger  *Ledger
}

// NewScheduler builds a scheduler for perHour requests. A nil ledger is
// allowed; reservations are then purely in-memory.
func NewScheduler(ctx context.Context, ledger *Ledger, perHour int) (*Scheduler, error) {
	if perHour <= 0 {
		return nil, fmt.Errorf("invalid hourly quota: %d", perHour)
	}

	limiter := rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), perHour)

	s := &Scheduler{limiter: limiter, ledger: ledger}

	if ledger != nil {
		used, err := ledger.CountSince(ctx, time.Now().Add(-time.Hour))
		if err != nil {
			return nil, fmt.Errorf("seed scheduler from ledger: %w", err)
		}
		if used > 0 {
			if used > perHour {
				used = perHour
			}
			limiter.AllowN(time.Now(), used)
			slog.InfoContext(ctx, "Seeded quota scheduler from ledger",
				"component", "quota", "quota_used", used, "per_hour", perHour)
		}
	}

	return s, nil
}

// Reserve blocks until a request slot is available (or ctx is done) and
// records the request in the ledger. Called before every attempt,
// retries included, since each attempt spends quota remotely.
func (s *Scheduler) Reserve(ctx context.Context, method, path string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	if s.ledger == nil {
		return nil
	}
	if err := s.ledger.Record(ctx, time.Now(), method, path); err != nil {
		// Ledger trouble must not block API traffic; the in-memory
		// limiter still holds.
		slog.WarnContext(ctx, "Failed to record request in quota ledger",
			"component", "quota", "error", err)
	}
	return nil
}
