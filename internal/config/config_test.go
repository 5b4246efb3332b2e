package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSecurityConfig() SecurityConfig {
	return SecurityConfig{
		AccessSecret:  strings.Repeat("a", 32),
		RefreshSecret: strings.Repeat("b", 32),
	}
}

func TestSecurityConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validSecurityConfig().Validate())
	})

	t.Run("missing access secret", func(t *testing.T) {
		cfg := validSecurityConfig()
		cfg.AccessSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("short refresh secret", func(t *testing.T) {
		cfg := validSecurityConfig()
		cfg.RefreshSecret = "too-short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("reused secret", func(t *testing.T) {
		cfg := validSecurityConfig()
		cfg.RefreshSecret = cfg.AccessSecret
		assert.Error(t, cfg.Validate())
	})
}
