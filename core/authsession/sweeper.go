package authsession

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentreports/erpauth/core/logger"
)

// Sweeper periodically removes stale persisted sessions, independent of
// request-serving goroutines. It sweeps once immediately and then on every
// interval tick until the context is cancelled, so process shutdown is
// deterministic.
type Sweeper struct {
	store    Store
	interval time.Duration
	log      *slog.Logger
}

// NewSweeper creates a sweeper over the given store. An interval of zero
// or less disables periodic sweeps; Run then performs the startup sweep
// only and returns.
func NewSweeper(store Store, interval time.Duration, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{store: store, interval: interval, log: log}
}

// Run blocks until ctx is cancelled. Sweep failures are logged and do not
// stop subsequent sweeps.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	if s.interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	removed, err := s.store.DeleteExpired(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "session sweep failed",
			logger.Component("sweeper"), logger.Error(err))
		return
	}
	if removed > 0 {
		s.log.InfoContext(ctx, "removed expired sessions",
			logger.Component("sweeper"),
			logger.Count("removed", int(removed)),
			logger.Elapsed(start))
	}
}
