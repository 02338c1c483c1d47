package httputil

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientAppliesConfig(t *testing.T) {
	cfg := MailboxClientConfig()
	client := NewClient(cfg)

	assert.Equal(t, 60*time.Second, client.Timeout)
	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, cfg.MaxConnsPerHost, transport.MaxConnsPerHost)
	assert.Equal(t, cfg.MaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
}

func TestLLMClientLeavesDeadlineToContext(t *testing.T) {
	assert.Zero(t, LLMClient().Timeout)
	assert.Same(t, LLMClient(), LLMClient())
}

func TestPoolStats(t *testing.T) {
	stats := PoolStats()
	require.Len(t, stats, 2)
	assert.Equal(t, "llm", stats[0].Name)
	assert.Equal(t, "mailbox", stats[1].Name)
	assert.Equal(t, 60, stats[1].TimeoutSeconds)
}
