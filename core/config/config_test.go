package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentreports/erpauth/core/config"
)

type storageConfig struct {
	Dir string        `env:"TEST_STORAGE_DIR" envDefault:"auth_sessions"`
	TTL time.Duration `env:"TEST_SESSION_TTL" envDefault:"720h"`
}

type requiredConfig struct {
	Secret string `env:"TEST_REQUIRED_SECRET,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when variables are unset", func(t *testing.T) {
		var cfg storageConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "auth_sessions", cfg.Dir)
		assert.Equal(t, 720*time.Hour, cfg.TTL)
	})

	t.Run("caches per type", func(t *testing.T) {
		var first storageConfig
		require.NoError(t, config.Load(&first))

		// Changing the environment after the first load must not affect
		// the cached value.
		t.Setenv("TEST_STORAGE_DIR", "/somewhere/else")

		var second storageConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("reads values from environment", func(t *testing.T) {
		t.Setenv("TEST_REQUIRED_SECRET", "s3cret")

		var cfg requiredConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "s3cret", cfg.Secret)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required variable", func(t *testing.T) {
		type missingConfig struct {
			Value string `env:"TEST_DEFINITELY_UNSET_VALUE,required"`
		}

		assert.Panics(t, func() {
			var cfg missingConfig
			config.MustLoad(&cfg)
		})
	})
}
