package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentreports/erpauth/core/authsession"
	"github.com/agentreports/erpauth/core/logger"
)

const (
	sessionFilePrefix = "sess_"
	sessionFileSuffix = ".enc"
)

// FileStore persists one encrypted session file per identity token inside
// a single storage directory. Writes go through a temporary file and a
// rename, so a concurrent Load never observes a partial write.
type FileStore struct {
	dir    string
	ttl    time.Duration
	sealer *sealer
	log    *slog.Logger
}

// NewFileStore creates a file-backed session store in dir, encrypting
// payloads with a key derived from masterKey. The ttl bounds how old a
// persisted file may grow before DeleteExpired removes it; it should match
// the session TTL of the service using the store.
func NewFileStore(dir string, masterKey []byte, ttl time.Duration, log *slog.Logger) (*FileStore, error) {
	sealer, err := newSealer(masterKey)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	return &FileStore{dir: dir, ttl: ttl, sealer: sealer, log: log}, nil
}

// Save serializes, encrypts, and atomically writes the session under its
// identity token with owner-only permissions.
func (f *FileStore) Save(ctx context.Context, session authsession.Session) error {
	plaintext, err := json.Marshal(session)
	if err != nil {
		return err
	}
	sealed, err := f.sealer.seal(plaintext)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".tmp-sess-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(sealed); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), f.sessionPath(session.IdentityToken))
}

// Load reads and decrypts the session persisted for the identity token.
// A file that fails to decrypt or parse is removed and reported as
// authsession.ErrNotFound: corruption invalidates the session rather than
// failing the caller.
func (f *FileStore) Load(ctx context.Context, identityToken string) (authsession.Session, error) {
	path := f.sessionPath(identityToken)

	sealed, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return authsession.Session{}, authsession.ErrNotFound
		}
		return authsession.Session{}, err
	}

	plaintext, err := f.sealer.open(sealed)
	if err != nil {
		f.discardCorrupt(ctx, path, identityToken, err)
		return authsession.Session{}, authsession.ErrNotFound
	}

	var session authsession.Session
	if err := json.Unmarshal(plaintext, &session); err != nil {
		f.discardCorrupt(ctx, path, identityToken, err)
		return authsession.Session{}, authsession.ErrNotFound
	}

	return session, nil
}

// Delete removes the persisted session if present. Idempotent.
func (f *FileStore) Delete(ctx context.Context, identityToken string) error {
	err := os.Remove(f.sessionPath(identityToken))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// DeleteExpired scans the storage directory and removes session files
// whose modification time exceeds the TTL, regardless of cache state.
// Failures on individual files are logged and skipped.
func (f *FileStore) DeleteExpired(ctx context.Context) (int64, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-f.ttl)

	var removed int64
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, sessionFilePrefix) || !strings.HasSuffix(name, sessionFileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// The file may have been deleted between the directory scan
			// and this stat; treat as already cleaned.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			f.log.WarnContext(ctx, "failed to stat session file",
				logger.Component("filestore"), logger.Path(name), logger.Error(err))
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(f.dir, name)); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			f.log.WarnContext(ctx, "failed to remove expired session file",
				logger.Component("filestore"), logger.Path(name), logger.Error(err))
			continue
		}
		removed++
	}

	return removed, nil
}

func (f *FileStore) sessionPath(identityToken string) string {
	return filepath.Join(f.dir, sessionFilePrefix+identityToken+sessionFileSuffix)
}

func (f *FileStore) discardCorrupt(ctx context.Context, path, identityToken string, cause error) {
	f.log.WarnContext(ctx, "discarding corrupt session file",
		logger.Component("filestore"),
		logger.ID("identity_token", identityToken),
		logger.Error(cause))
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		f.log.WarnContext(ctx, "failed to remove corrupt session file",
			logger.Component("filestore"), logger.Path(path), logger.Error(err))
	}
}
