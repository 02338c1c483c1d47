package bootstrap

import (
	"time"

	"parser_server/adapter/out/persistence"
	"parser_server/adapter/out/provider"
	"parser_server/adapter/out/provider/gmail"
	"parser_server/adapter/out/provider/imap"
	"parser_server/config"
	"parser_server/core/agent/llm"
	"parser_server/core/port/out"
	"parser_server/core/service/ai"
	"parser_server/core/service/auth"
	"parser_server/core/service/extract"
	"parser_server/core/service/mailbox"
	"parser_server/infra/database"
	"parser_server/pkg/cache"
	"parser_server/pkg/crypto"
	"parser_server/pkg/logger"
	"parser_server/pkg/metrics"
	"parser_server/pkg/resilience"

	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Config *config.Config
	Redis  *redis.Client

	// Stores
	Sessions out.SessionStore

	// Providers
	Providers *provider.Factory

	// Agent
	LLMClient *llm.Client
	Metrics   *metrics.AnalysisMetrics

	// Services
	Parser          *extract.Extractor
	AIService       *ai.Service
	SessionAnalyzer *ai.SessionAnalyzer
	SessionService  *auth.SessionService
	MailboxService  *mailbox.Service
}

// NewAnalyzer builds the two analysis stages without any session plumbing.
// The one-shot CLI modes use it directly.
func NewAnalyzer(cfg *config.Config, m *metrics.AnalysisMetrics) (*ai.Service, *llm.Client) {
	client := llm.NewClient(llm.ClientConfig{
		BaseURL:     cfg.LLMBaseURL,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout(),
	}, resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("llm")))

	svc := ai.NewService(client,
		ai.WithCredentialPrefix(cfg.LLMCredentialPrefix),
		ai.WithMetrics(m),
	)
	return svc, client
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{
		Config:  cfg,
		Metrics: metrics.NewAnalysisMetrics(),
		Parser:  extract.NewExtractor(),
	}
	var cleanups []func()

	// Sessions: Redis when reachable, otherwise process memory
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed, sessions stay in memory: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })
		}
	}

	if deps.Redis != nil {
		enc, err := crypto.NewEncryptor([]byte(cfg.EncryptionKey))
		if err != nil {
			return nil, nil, err
		}
		deps.Sessions = persistence.NewRedisSessionStore(cache.NewRedisCache(deps.Redis), cfg.SessionTTL(), enc)
		logger.Info("Session store: redis")
	} else {
		deps.Sessions = persistence.NewMemorySessionStore(cfg.SessionTTL(), 0)
		logger.Info("Session store: memory")
	}

	// Mailbox providers
	factoryCfg := &provider.FactoryConfig{
		IMAP: imap.Config{
			Host: cfg.IMAPHost,
			Port: cfg.IMAPPort,
			TLS:  cfg.IMAPTLS,
		},
		MockDelay: cfg.MockMailboxDelay,
	}
	if cfg.GmailConfigured() {
		factoryCfg.Gmail = &gmail.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}
	} else {
		logger.Info("Gmail OAuth not configured; gmail connect disabled")
	}
	deps.Providers = provider.NewFactory(factoryCfg)

	// Analysis
	deps.AIService, deps.LLMClient = NewAnalyzer(cfg, deps.Metrics)
	if !deps.AIService.ValidCredential(cfg.LLMAPIKey) {
		logger.Info("No valid AI credential; analysis uses local heuristics")
	}
	deps.SessionAnalyzer = ai.NewSessionAnalyzer(deps.AIService, deps.Sessions, cfg.LLMAPIKey)

	// Sessions and mailbox
	deps.SessionService = auth.NewSessionService(deps.Sessions, deps.Providers.Authenticator(), cfg.SessionSecret, cfg.SessionTTL())
	deps.MailboxService = mailbox.NewService(deps.Sessions, deps.Providers, deps.Parser, deps.SessionAnalyzer, cfg.MailboxFetchCount)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return deps, cleanup, nil
}

// Breakers lists every circuit breaker for health output.
func (d *Dependencies) Breakers() resilience.Group {
	return resilience.Group{d.LLMClient.Breaker()}
}

func analyzeWindow(cfg *config.Config) time.Duration {
	return time.Duration(cfg.AnalyzeRateWindowSec) * time.Second
}
