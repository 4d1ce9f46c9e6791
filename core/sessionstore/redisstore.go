package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentreports/erpauth/core/authsession"
	"github.com/agentreports/erpauth/core/logger"
)

const redisKeyPrefix = "erpauth:session:"

// RedisStore is an alternate session store for deployments without durable
// local disk. Payloads carry the same at-rest encryption as the file
// store; expiry is delegated to Redis key TTLs, anchored to the session's
// CreatedAt so a refreshed LastAccessed never extends the lifetime.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	sealer *sealer
	log    *slog.Logger
}

// NewRedisStore creates a Redis-backed session store using the given
// client. The masterKey and ttl follow the same contract as NewFileStore.
func NewRedisStore(client *redis.Client, masterKey []byte, ttl time.Duration, log *slog.Logger) (*RedisStore, error) {
	sealer, err := newSealer(masterKey)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{client: client, ttl: ttl, sealer: sealer, log: log}, nil
}

// Save persists the session under its identity token with an expiry of
// whatever remains of its lifetime. A session already past its lifetime is
// deleted instead of stored.
func (r *RedisStore) Save(ctx context.Context, session authsession.Session) error {
	remaining := time.Until(session.CreatedAt.Add(r.ttl))
	if remaining <= 0 {
		return r.Delete(ctx, session.IdentityToken)
	}

	plaintext, err := json.Marshal(session)
	if err != nil {
		return err
	}
	sealed, err := r.sealer.seal(plaintext)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(session.IdentityToken), sealed, remaining).Err()
}

// Load returns the session persisted for the identity token. A value that
// fails to decrypt or parse is removed and reported as
// authsession.ErrNotFound.
func (r *RedisStore) Load(ctx context.Context, identityToken string) (authsession.Session, error) {
	sealed, err := r.client.Get(ctx, r.key(identityToken)).Bytes()
	if errors.Is(err, redis.Nil) {
		return authsession.Session{}, authsession.ErrNotFound
	}
	if err != nil {
		return authsession.Session{}, err
	}

	plaintext, err := r.sealer.open(sealed)
	if err != nil {
		r.discardCorrupt(ctx, identityToken, err)
		return authsession.Session{}, authsession.ErrNotFound
	}

	var session authsession.Session
	if err := json.Unmarshal(plaintext, &session); err != nil {
		r.discardCorrupt(ctx, identityToken, err)
		return authsession.Session{}, authsession.ErrNotFound
	}

	return session, nil
}

// Delete removes the persisted session if present. Idempotent.
func (r *RedisStore) Delete(ctx context.Context, identityToken string) error {
	return r.client.Del(ctx, r.key(identityToken)).Err()
}

// DeleteExpired is a no-op: Redis removes expired keys natively.
func (r *RedisStore) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *RedisStore) key(identityToken string) string {
	return redisKeyPrefix + identityToken
}

func (r *RedisStore) discardCorrupt(ctx context.Context, identityToken string, cause error) {
	r.log.WarnContext(ctx, "discarding corrupt session entry",
		logger.Component("redisstore"),
		logger.ID("identity_token", identityToken),
		logger.Error(cause))
	if err := r.client.Del(ctx, r.key(identityToken)).Err(); err != nil {
		r.log.WarnContext(ctx, "failed to remove corrupt session entry",
			logger.Component("redisstore"),
			logger.ID("identity_token", identityToken),
			logger.Error(err))
	}
}
