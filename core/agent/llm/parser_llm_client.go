// Package llm is the text-completion backend client.
package llm

import (
	"context"
	"errors"
	"time"

	"parser_server/pkg/httputil"
	"parser_server/pkg/resilience"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "compound-beta"
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.1
	DefaultTimeout     = 30 * time.Second

	maxTemperature = 0.2
)

var ErrEmptyCompletion = errors.New("backend returned no choices")

type ClientConfig struct {
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client sends system+user completions to an OpenAI-compatible endpoint.
// The credential is supplied per call, so one Client serves every caller.
type Client struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	breaker     *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig, breaker *resilience.CircuitBreaker) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}
	if temperature > maxTemperature {
		temperature = maxTemperature
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("llm"))
	}
	return &Client{
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		timeout:     timeout,
		breaker:     breaker,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Breaker exposes the circuit breaker for health output.
func (c *Client) Breaker() *resilience.CircuitBreaker {
	return c.breaker
}

// Complete implements out.Completer. Exceeding the timeout is reported like
// any other request failure.
func (c *Client) Complete(ctx context.Context, credential, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.breaker.ExecuteString(func() (string, error) {
		resp, err := c.openai(credential).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		})
		if err != nil {
			return "", err
		}

		if len(resp.Choices) == 0 {
			return "", ErrEmptyCompletion
		}

		return resp.Choices[0].Message.Content, nil
	})
}

func (c *Client) openai(credential string) *openai.Client {
	cfg := openai.DefaultConfig(credential)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = httputil.LLMClient()
	return openai.NewClientWithConfig(cfg)
}
