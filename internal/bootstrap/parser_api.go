package bootstrap

import (
	"strings"

	"parser_server/adapter/in/http"
	"parser_server/config"
	"parser_server/infra/middleware"
	"parser_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.ParseLevel(cfg.LogLevel)
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "parser-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	return NewApp(deps), cleanup, nil
}

// NewApp builds the Fiber application over already constructed dependencies.
func NewApp(deps *Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		// go-json for every request and response body
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// Pasted emails are small; attachments are never uploaded.
		BodyLimit: 1 * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())

	// AllowCredentials requires explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health (no session)
	http.NewHealthHandler(deps.Redis, deps.Metrics, deps.Breakers(), deps.Providers).Register(app)

	api := app.Group("/api/v1")

	// Public routes: parsing is stateless, sessions are created here and
	// Google redirects to the callback without our token.
	http.NewParseHandler(deps.Parser, cfg.ParseDelay).Register(api)
	sessionHandler := http.NewSessionHandler(deps.SessionService)
	sessionHandler.RegisterPublic(api)

	// Session routes
	authed := api.Group("", middleware.SessionAuth(deps.SessionService))
	limiter := middleware.AnalyzeLimiter(cfg.AnalyzeRateLimit, analyzeWindow(cfg))

	sessionHandler.Register(authed)
	http.NewAnalysisHandler(deps.SessionAnalyzer).Register(authed, limiter)
	http.NewMailboxHandler(deps.MailboxService).Register(authed, limiter)

	return app
}
