package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parser_server/config"
	"parser_server/core/service/extract"
	"parser_server/internal/bootstrap"
	"parser_server/pkg/logger"
	"parser_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Logs go to stderr so the one-shot modes can print JSON on stdout.
	logger.Init(logger.Config{
		Level:   logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		Output:  os.Stderr,
		Service: "parser",
	})

	// Load .env file if exists (for local development)
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	mode := flag.String("mode", "api", "Run mode: api, parse, analyze")
	file := flag.String("file", "", "Email file for parse/analyze (default: stdin)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	switch *mode {
	case "api":
		runAPI(cfg)
	case "parse":
		runParse(readInput(*file))
	case "analyze":
		runAnalyze(cfg, readInput(*file))
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	// Graceful shutdown with timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down: %v", err)
		} else {
			logger.Info("API server shut down gracefully")
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func runParse(text string) {
	result, err := extract.Parse(text)
	if err != nil {
		logger.Fatal("Parse failed: %v", err)
	}
	printJSON(result)
}

func runAnalyze(cfg *config.Config, text string) {
	svc, _ := bootstrap.NewAnalyzer(cfg, metrics.NewAnalysisMetrics())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome := svc.Analyze(ctx, text, cfg.LLMAPIKey)
	if notice := outcome.Notice(); notice != "" {
		logger.Info(notice)
	}
	printJSON(outcome)
}

func readInput(path string) string {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		logger.Fatal("Failed to read input: %v", err)
	}
	return string(data)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		logger.Fatal("Failed to encode output: %v", err)
	}
}
