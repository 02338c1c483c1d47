package http

import (
	"context"
	"time"

	"parser_server/pkg/httputil"
	"parser_server/pkg/metrics"
	"parser_server/pkg/resilience"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// BreakerSource reports circuit breaker state for health output.
type BreakerSource interface {
	Stats() []resilience.CircuitBreakerStats
}

type HealthHandler struct {
	redis    *redis.Client
	metrics  *metrics.AnalysisMetrics
	breakers []BreakerSource
}

// NewHealthHandler creates the handler. redis may be nil when sessions live
// in memory.
func NewHealthHandler(redisClient *redis.Client, m *metrics.AnalysisMetrics, breakers ...BreakerSource) *HealthHandler {
	return &HealthHandler{
		redis:    redisClient,
		metrics:  m,
		breakers: breakers,
	}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/health/metrics", h.Metrics)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status := "ready"
	statusCode := fiber.StatusOK
	if !healthy {
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Metrics reports analysis path counters, backend latency and breaker state.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	out := fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if h.metrics != nil {
		out["analysis"] = h.metrics.Snapshot()
	}

	var breakers []resilience.CircuitBreakerStats
	for _, b := range h.breakers {
		breakers = append(breakers, b.Stats()...)
	}
	out["circuit_breakers"] = breakers
	out["http_pools"] = httputil.PoolStats()

	if h.redis != nil {
		out["redis_pool"] = metrics.RedisPoolStats(h.redis)
	}
	return c.JSON(out)
}
