package authsession

import "context"

// Store is the durable layer beneath the in-memory cache. Implementations
// must be safe for concurrent use and must make writes atomic from a
// reader's perspective: a concurrent Load never observes a partial write.
type Store interface {
	// Save persists the session under its identity token, overwriting any
	// prior session for that token.
	Save(ctx context.Context, session Session) error

	// Load returns the session persisted for the identity token.
	// Absent sessions yield ErrNotFound. A corrupt persisted session is
	// removed and reported as ErrNotFound rather than as a fault.
	Load(ctx context.Context, identityToken string) (Session, error)

	// Delete removes the persisted session if present. Idempotent.
	Delete(ctx context.Context, identityToken string) error

	// DeleteExpired removes persisted sessions older than the store's TTL,
	// whether or not they are cached anywhere, and returns how many were
	// removed. Failures on individual entries are skipped, not fatal.
	DeleteExpired(ctx context.Context) (int64, error)
}
