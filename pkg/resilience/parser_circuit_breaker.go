// Package resilience provides fault tolerance patterns for external service calls.
package resilience

import (
	"errors"
	"time"

	"parser_server/pkg/logger"

	"github.com/sony/gobreaker"
)

// Errors returned while the breaker refuses calls.
var (
	ErrCircuitOpen    = gobreaker.ErrOpenState
	ErrTooManyRequest = gobreaker.ErrTooManyRequests
)

// CircuitBreakerConfig holds configuration for a circuit breaker.
type CircuitBreakerConfig struct {
	Name             string        // Name for logging
	FailureThreshold uint32        // Consecutive failures before opening (default: 5)
	MinRequests      uint32        // Requests before the failure ratio applies (default: 10)
	FailureRatio     float64       // Ratio that trips once MinRequests is reached (default: 0.6)
	Interval         time.Duration // Closed-state counter reset interval (default: 60s)
	Timeout          time.Duration // Open-state duration before half-open (default: 30s)
	MaxHalfOpen      uint32        // Requests allowed in half-open (default: 1)
}

// DefaultCircuitBreakerConfig returns sensible defaults.
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		MinRequests:      10,
		FailureRatio:     0.6,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		MaxHalfOpen:      1,
	}
}

// CircuitBreaker guards calls to one external dependency.
type CircuitBreaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a new circuit breaker with the given config.
func NewCircuitBreaker(cfg *CircuitBreakerConfig) *CircuitBreaker {
	if cfg == nil {
		cfg = DefaultCircuitBreakerConfig("default")
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxHalfOpen,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= cfg.FailureThreshold {
				return true
			}
			if cfg.MinRequests == 0 || counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &CircuitBreaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Name returns the circuit breaker name.
func (b *CircuitBreaker) Name() string {
	return b.cb.Name()
}

// State returns the current state as a string ("closed", "open", "half-open").
func (b *CircuitBreaker) State() string {
	return b.cb.State().String()
}

// IsOpen reports whether calls are currently refused.
func (b *CircuitBreaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// Execute runs fn with circuit breaker protection.
func (b *CircuitBreaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// ExecuteString runs fn and passes its string result through the breaker.
func (b *CircuitBreaker) ExecuteString(fn func() (string, error)) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		return "", err
	}
	s, _ := out.(string)
	return s, nil
}

// IsRejected reports whether err came from the breaker refusing the call.
func IsRejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequest)
}

// CircuitBreakerStats is a snapshot for health output.
type CircuitBreakerStats struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// Stats returns current statistics.
func (b *CircuitBreaker) Stats() CircuitBreakerStats {
	counts := b.cb.Counts()
	return CircuitBreakerStats{
		Name:                b.cb.Name(),
		State:               b.cb.State().String(),
		Requests:            counts.Requests,
		TotalFailures:       counts.TotalFailures,
		ConsecutiveFailures: counts.ConsecutiveFailures,
	}
}

// Group reports several breakers together.
type Group []*CircuitBreaker

// Stats returns a snapshot of every breaker in the group.
func (g Group) Stats() []CircuitBreakerStats {
	stats := make([]CircuitBreakerStats, 0, len(g))
	for _, b := range g {
		if b != nil {
			stats = append(stats, b.Stats())
		}
	}
	return stats
}
