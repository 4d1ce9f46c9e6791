// Package authsession lets a browser authenticate once against a back-end
// ERP system and have that authentication reused across requests, keyed by
// an identity token derived from request metadata rather than a cookie.
// Credential bundles are held encrypted at rest and cached in memory.
//
// # Architecture
//
// The Service composes four collaborators:
//
//   - an identity-token derivation (pkg/fingerprint) turning user agent
//     plus source address into a stable key
//   - an in-memory write-through cache in front of a durable Store
//   - a Store implementation persisting encrypted sessions
//     (core/sessionstore)
//   - a Validator checking supplied credentials against the ERP
//     (core/odoo)
//
// # Usage
//
//	store, err := sessionstore.NewFileStore(cfg.Dir, key, authsession.DefaultTTL)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	svc := authsession.New(store, validator,
//		authsession.WithTTL(30*24*time.Hour),
//		authsession.WithLogger(log),
//	)
//
//	result, err := svc.AuthenticateAndSave(ctx, creds, r.UserAgent(), clientip.GetIP(r))
//	switch {
//	case err == nil:
//		// result.SessionID identifies the new session
//	case errors.Is(err, authsession.ErrConnection):
//		// credentials rejected upstream
//	default:
//		var verr *authsession.ValidationError
//		if errors.As(err, &verr) {
//			// missing fields listed in verr.Missing
//		}
//	}
//
// Later requests resolve their session without re-authenticating:
//
//	sess, err := svc.GetSession(ctx, r.UserAgent(), clientip.GetIP(r))
//	if errors.Is(err, authsession.ErrNotFound) {
//		// no usable session; client must authenticate
//	}
//
// # Concurrency
//
// All operations for one identity token are serialized by a per-token
// lock; operations on distinct tokens do not block each other. Sessions
// are passed by value throughout, so callers never share mutable state
// with the cache.
//
// # Lifecycle
//
// A session is usable while it has not been logged out and is younger than
// the configured TTL (default 30 days). Expired, invalidated, and corrupt
// sessions are removed when encountered and reported as ErrNotFound; the
// Sweeper additionally removes stale persisted sessions in the background.
package authsession
