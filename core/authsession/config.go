package authsession

import (
	"log/slog"
	"time"
)

// DefaultTTL is the maximum session age honored regardless of activity.
const DefaultTTL = 30 * 24 * time.Hour

type config struct {
	ttl time.Duration
	log *slog.Logger
	now func() time.Time
}

func defaultConfig() *config {
	return &config{
		ttl: DefaultTTL,
		log: slog.Default(),
		now: time.Now,
	}
}

// Option is a functional option for configuring the session service.
type Option func(*config)

// WithTTL sets the maximum session age. Sessions older than ttl are
// treated as absent and removed when encountered.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides the time source. Test seam.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
