package authsession

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agentreports/erpauth/core/logger"
	"github.com/agentreports/erpauth/pkg/fingerprint"
)

// Service is the public API of the credential-session subsystem. It
// composes the identity-token derivation, the in-memory write-through
// cache, the encrypted durable store, and the external credential
// validator. Construct one Service at process start and share it by
// reference; every method is safe for concurrent use.
type Service struct {
	store     Store
	validator Validator
	cache     *cache
	locks     *keyedMutex

	ttl time.Duration
	log *slog.Logger
	now func() time.Time
}

// AuthResult reports a successful authentication: the freshly generated
// session ID and the validator's welcome message.
type AuthResult struct {
	SessionID uuid.UUID
	Message   string
}

// New constructs the session service with the given durable store and
// credential validator.
func New(store Store, validator Validator, opts ...Option) *Service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Service{
		store:     store,
		validator: validator,
		cache:     newCache(),
		locks:     newKeyedMutex(),
		ttl:       cfg.ttl,
		log:       cfg.log,
		now:       cfg.now,
	}
}

// TTL returns the configured maximum session age.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// AuthenticateAndSave validates the credential bundle against the upstream
// system and, on success, persists a new session keyed by the identity
// token derived from the request metadata. Any prior session for the same
// token is overwritten.
//
// Structurally incomplete credentials yield a ValidationError without the
// validator being called or anything written. A rejection by the validator
// yields a ConnectionError carrying the validator's message, persisting
// nothing. A storage failure after successful validation wraps ErrStorage.
func (s *Service) AuthenticateAndSave(ctx context.Context, creds Credentials, userAgent, sourceAddr string) (AuthResult, error) {
	if err := creds.Validate(); err != nil {
		return AuthResult{}, err
	}

	outcome, err := s.validator.Validate(ctx, creds)
	if err != nil {
		s.log.ErrorContext(ctx, "credential validation errored",
			logger.Component("authsession"), logger.Error(err))
		return AuthResult{}, &ConnectionError{Message: err.Error()}
	}
	if !outcome.OK {
		return AuthResult{}, &ConnectionError{Message: outcome.Message}
	}

	identityToken := fingerprint.Derive(userAgent, sourceAddr)
	unlock := s.locks.lock(identityToken)
	defer unlock()

	now := s.now()
	session := Session{
		ID:            uuid.New(),
		IdentityToken: identityToken,
		Credentials:   creds,
		CreatedAt:     now,
		LastAccessed:  now,
		Valid:         true,
	}

	if err := s.store.Save(ctx, session); err != nil {
		s.log.ErrorContext(ctx, "failed to persist session",
			logger.Component("authsession"),
			logger.ID("identity_token", identityToken),
			logger.Error(err))
		return AuthResult{}, errors.Join(ErrStorage, err)
	}
	s.cache.put(session)

	s.log.InfoContext(ctx, "session created",
		logger.Component("authsession"),
		logger.ID("identity_token", identityToken),
		logger.ID("session_id", session.ID))

	return AuthResult{SessionID: session.ID, Message: outcome.Message}, nil
}

// GetSession returns the usable session for the request metadata, checking
// the cache first and falling back to the durable store. A found session
// has its LastAccessed refreshed and written through best-effort: failure
// to persist the refreshed timestamp does not fail the read.
//
// Expired and logged-out sessions encountered on the way are removed from
// both layers and reported as ErrNotFound, as are corrupt persisted
// sessions (the store removes those itself).
func (s *Service) GetSession(ctx context.Context, userAgent, sourceAddr string) (Session, error) {
	identityToken := fingerprint.Derive(userAgent, sourceAddr)
	unlock := s.locks.lock(identityToken)
	defer unlock()

	if session, ok := s.cache.get(identityToken); ok {
		if session.IsUsable(s.now(), s.ttl) {
			return s.touch(ctx, session), nil
		}
		s.evict(ctx, identityToken)
		return Session{}, ErrNotFound
	}

	session, err := s.store.Load(ctx, identityToken)
	if errors.Is(err, ErrNotFound) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, errors.Join(ErrStorage, err)
	}

	if !session.IsUsable(s.now(), s.ttl) {
		s.evict(ctx, identityToken)
		return Session{}, ErrNotFound
	}

	return s.touch(ctx, session), nil
}

// ClearSession removes the session for the request metadata from both the
// cache and the durable store. Idempotent: clearing a nonexistent session
// succeeds.
func (s *Service) ClearSession(ctx context.Context, userAgent, sourceAddr string) error {
	identityToken := fingerprint.Derive(userAgent, sourceAddr)
	unlock := s.locks.lock(identityToken)
	defer unlock()

	s.cache.delete(identityToken)
	if err := s.store.Delete(ctx, identityToken); err != nil {
		s.log.ErrorContext(ctx, "failed to delete persisted session",
			logger.Component("authsession"),
			logger.ID("identity_token", identityToken),
			logger.Error(err))
		return errors.Join(ErrStorage, err)
	}

	return nil
}

// touch refreshes LastAccessed, repopulates the cache, and writes the
// update through to the store. Caller holds the per-token lock.
func (s *Service) touch(ctx context.Context, session Session) Session {
	session.LastAccessed = s.now()
	s.cache.put(session)
	if err := s.store.Save(ctx, session); err != nil {
		// Best-effort: the read still succeeds with a stale timestamp.
		s.log.WarnContext(ctx, "failed to persist refreshed session",
			logger.Component("authsession"),
			logger.ID("identity_token", session.IdentityToken),
			logger.Error(err))
	}
	return session
}

// evict drops an unusable session from both layers. Caller holds the
// per-token lock.
func (s *Service) evict(ctx context.Context, identityToken string) {
	s.cache.delete(identityToken)
	if err := s.store.Delete(ctx, identityToken); err != nil {
		s.log.WarnContext(ctx, "failed to remove unusable session",
			logger.Component("authsession"),
			logger.ID("identity_token", identityToken),
			logger.Error(err))
	}
}
