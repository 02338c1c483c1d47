// Package httputil provides pooled HTTP clients for outbound backends.
package httputil

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// ClientConfig holds HTTP client configuration.
type ClientConfig struct {
	Name string

	// Connection settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	// Timeout settings
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	ResponseTimeout     time.Duration // zero leaves the deadline to the request context

	KeepAliveInterval time.Duration
}

// DefaultClientConfig returns the baseline pool configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Name:                "default",
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     100,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ResponseTimeout:     30 * time.Second,
		KeepAliveInterval:   30 * time.Second,
	}
}

// LLMClientConfig is tuned for completion calls. The per-call timeout is
// enforced by the caller's context, so the client itself has none.
func LLMClientConfig() ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Name = "llm"
	cfg.MaxIdleConns = 30
	cfg.MaxConnsPerHost = 30
	cfg.IdleConnTimeout = 120 * time.Second
	cfg.ResponseTimeout = 0
	return cfg
}

// MailboxClientConfig is tuned for the parallel Gmail message fetch.
func MailboxClientConfig() ClientConfig {
	cfg := DefaultClientConfig()
	cfg.Name = "mailbox"
	cfg.MaxIdleConnsPerHost = 10
	cfg.MaxConnsPerHost = 20
	cfg.IdleConnTimeout = 120 * time.Second
	cfg.ResponseTimeout = 60 * time.Second
	return cfg
}

// NewClient creates an HTTP client with its own connection pool.
func NewClient(cfg ClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAliveInterval,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:     true,
		ResponseHeaderTimeout: cfg.ResponseTimeout,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ResponseTimeout,
	}
}

var (
	llmOnce    sync.Once
	llmClient  *http.Client
	mailOnce   sync.Once
	mailClient *http.Client
)

// LLMClient returns the shared client for completion backends.
func LLMClient() *http.Client {
	llmOnce.Do(func() { llmClient = NewClient(LLMClientConfig()) })
	return llmClient
}

// MailboxClient returns the shared client for mailbox APIs.
func MailboxClient() *http.Client {
	mailOnce.Do(func() { mailClient = NewClient(MailboxClientConfig()) })
	return mailClient
}

// ClientPoolStats describes a client pool's limits.
type ClientPoolStats struct {
	Name                string `json:"name"`
	MaxIdleConns        int    `json:"max_idle_conns"`
	MaxIdleConnsPerHost int    `json:"max_idle_conns_per_host"`
	MaxConnsPerHost     int    `json:"max_conns_per_host"`
	TimeoutSeconds      int    `json:"timeout_seconds"`
}

// PoolStats returns the limits of the shared pools.
func PoolStats() []ClientPoolStats {
	return []ClientPoolStats{
		statsOf(LLMClientConfig()),
		statsOf(MailboxClientConfig()),
	}
}

func statsOf(cfg ClientConfig) ClientPoolStats {
	return ClientPoolStats{
		Name:                cfg.Name,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		TimeoutSeconds:      int(cfg.ResponseTimeout.Seconds()),
	}
}
