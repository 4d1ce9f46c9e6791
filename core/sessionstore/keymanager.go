package sessionstore

import (
	"crypto/rand"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// KeySize is the length of the at-rest encryption key in bytes (256 bits).
const KeySize = 32

// keyFileName is the dedicated key file inside the storage directory.
const keyFileName = ".erpauth_key"

// ErrKeyInit is returned when the at-rest encryption key cannot be created
// or loaded. The service cannot run without a key, so this is fatal at
// startup.
var ErrKeyInit = errors.New("failed to initialize session encryption key")

// LoadOrCreateKey returns the symmetric key for the storage directory,
// generating and persisting a fresh one on first use. The directory is
// created with owner-only permissions if missing; the key file is written
// 0600.
//
// Concurrent first use is safe: the key is written to a temporary file and
// linked into place, so exactly one caller's key wins and the others read
// it back. A partially written key file is never observable.
func LoadOrCreateKey(dir string) ([]byte, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}

	path := filepath.Join(dir, keyFileName)
	if key, err := readKeyFile(path); err == nil {
		return key, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}

	tmp, err := os.CreateTemp(dir, ".key-*")
	if err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return nil, errors.Join(ErrKeyInit, err)
	}
	if _, err := tmp.Write(key); err != nil {
		tmp.Close()
		return nil, errors.Join(ErrKeyInit, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.Join(ErrKeyInit, err)
	}

	// Link is atomic create-if-absent with full content: either this
	// caller's key becomes the key file, or another caller won the race
	// and its key is read back instead.
	if err := os.Link(tmp.Name(), path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return readKeyFile(path)
		}
		return nil, errors.Join(ErrKeyInit, err)
	}

	return key, nil
}

func readKeyFile(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, errors.Join(ErrKeyInit, err)
	}
	if len(key) != KeySize {
		return nil, errors.Join(ErrKeyInit, errors.New("key file has unexpected size"))
	}
	return key, nil
}
