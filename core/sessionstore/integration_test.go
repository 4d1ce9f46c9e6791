package sessionstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentreports/erpauth/core/authsession"
	"github.com/agentreports/erpauth/core/sessionstore"
	"github.com/agentreports/erpauth/pkg/fingerprint"
)

// These tests exercise the service through the real file store, covering
// the behaviors that only show up with actual files on disk.

func acceptAll() authsession.Validator {
	return authsession.ValidatorFunc(func(ctx context.Context, creds authsession.Credentials) (authsession.ValidationOutcome, error) {
		return authsession.ValidationOutcome{OK: true, Message: "Connection successful! Welcome Admin"}, nil
	})
}

func TestServiceWithFileStore(t *testing.T) {
	t.Parallel()

	const (
		userAgent = "Mozilla/5.0 (Macintosh) Safari/17.0"
		addr      = "198.51.100.23"
	)

	t.Run("round trip through disk", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestFileStore(t, authsession.DefaultTTL)
		svc := authsession.New(store, acceptAll())
		ctx := context.Background()

		result, err := svc.AuthenticateAndSave(ctx, storeCreds, userAgent, addr)
		require.NoError(t, err)

		// A second service over the same store simulates a process
		// restart: the session must come back from disk.
		restarted := authsession.New(store, acceptAll())
		session, err := restarted.GetSession(ctx, userAgent, addr)
		require.NoError(t, err)
		assert.Equal(t, result.SessionID, session.ID)
		assert.Equal(t, storeCreds, session.Credentials)
	})

	t.Run("expired session file is removed on access", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		key, err := sessionstore.LoadOrCreateKey(dir)
		require.NoError(t, err)

		ttl := time.Hour
		store, err := sessionstore.NewFileStore(dir, key, ttl, nil)
		require.NoError(t, err)

		current := time.Now()
		svc := authsession.New(store, acceptAll(),
			authsession.WithTTL(ttl),
			authsession.WithClock(func() time.Time { return current }),
		)
		ctx := context.Background()

		_, err = svc.AuthenticateAndSave(ctx, storeCreds, userAgent, addr)
		require.NoError(t, err)

		token := fingerprint.Derive(userAgent, addr)
		path := sessionFilePath(dir, token)
		require.FileExists(t, path)

		current = current.Add(ttl + time.Second)

		_, err = svc.GetSession(ctx, userAgent, addr)
		assert.ErrorIs(t, err, authsession.ErrNotFound)
		assert.NoFileExists(t, path)
	})

	t.Run("corrupt session file yields absent without error escaping", func(t *testing.T) {
		t.Parallel()

		store, dir := newTestFileStore(t, authsession.DefaultTTL)
		svc := authsession.New(store, acceptAll())
		ctx := context.Background()

		_, err := svc.AuthenticateAndSave(ctx, storeCreds, userAgent, addr)
		require.NoError(t, err)

		token := fingerprint.Derive(userAgent, addr)
		path := sessionFilePath(dir, token)
		require.NoError(t, os.Truncate(path, 5))

		// New service instance so the corrupt file is actually read.
		fresh := authsession.New(store, acceptAll())
		_, err = fresh.GetSession(ctx, userAgent, addr)
		assert.ErrorIs(t, err, authsession.ErrNotFound)
		assert.NoFileExists(t, path)
	})

	t.Run("logout removes the persisted file", func(t *testing.T) {
		t.Parallel()

		store, dir := newTestFileStore(t, authsession.DefaultTTL)
		svc := authsession.New(store, acceptAll())
		ctx := context.Background()

		_, err := svc.AuthenticateAndSave(ctx, storeCreds, userAgent, addr)
		require.NoError(t, err)

		require.NoError(t, svc.ClearSession(ctx, userAgent, addr))

		token := fingerprint.Derive(userAgent, addr)
		assert.NoFileExists(t, sessionFilePath(dir, token))

		_, err = svc.GetSession(ctx, userAgent, addr)
		assert.ErrorIs(t, err, authsession.ErrNotFound)
	})
}
