package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gsk_", cfg.LLMCredentialPrefix)
	assert.Equal(t, "compound-beta", cfg.LLMModel)
	assert.Equal(t, 1000, cfg.LLMMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout())
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Equal(t, 10, cfg.MailboxFetchCount)
}

func TestLoadClampsTemperature(t *testing.T) {
	t.Setenv("LLM_TEMPERATURE", "0.9")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.LLMTemperature)
}

func TestGetEnvSliceTrims(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getEnvSlice("ALLOWED_ORIGINS", nil))
}
