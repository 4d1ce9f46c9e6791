package sessionstore_test

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentreports/erpauth/core/sessionstore"
)

func TestLoadOrCreateKey(t *testing.T) {
	t.Parallel()

	t.Run("creates key and directory on first use", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "auth_sessions")

		key, err := sessionstore.LoadOrCreateKey(dir)
		require.NoError(t, err)
		assert.Len(t, key, sessionstore.KeySize)

		if runtime.GOOS != "windows" {
			info, err := os.Stat(dir)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)

			fileInfo, err := entries[0].Info()
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
		}
	})

	t.Run("reuses the persisted key", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		first, err := sessionstore.LoadOrCreateKey(dir)
		require.NoError(t, err)

		second, err := sessionstore.LoadOrCreateKey(dir)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("distinct directories get distinct keys", func(t *testing.T) {
		t.Parallel()

		first, err := sessionstore.LoadOrCreateKey(t.TempDir())
		require.NoError(t, err)

		second, err := sessionstore.LoadOrCreateKey(t.TempDir())
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("concurrent first use yields exactly one key", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		const workers = 20
		keys := make([][]byte, workers)

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			i := i
			go func() {
				defer wg.Done()
				key, err := sessionstore.LoadOrCreateKey(dir)
				assert.NoError(t, err)
				keys[i] = key
			}()
		}
		wg.Wait()

		for i := 1; i < workers; i++ {
			assert.Equal(t, keys[0], keys[i], "caller %d observed a different key", i)
		}
	})

	t.Run("fails on truncated key file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".erpauth_key"), []byte("short"), 0o600))

		_, err := sessionstore.LoadOrCreateKey(dir)
		assert.ErrorIs(t, err, sessionstore.ErrKeyInit)
	})
}
