package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/sashabaranov/go-openai"
)

// Defaults for the OpenAI provider.
const (
	DefaultModel       = "gpt-4"
	DefaultTemperature = 0.3
	DefaultTimeout     = 120 * time.Second
)

// OpenAIProvider implements AIProvider using OpenAI's chat completions API.
type OpenAIProvider struct {
	client              *openai.Client
	model               string
	temperature         float32
	maxCompletionTokens int
	contextWindow       int
	tokenizer           gotdoc.Tokenizer
	logger              *slog.Logger
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey              string           // OpenAI API key (required)
	Model               string           // Model to use (default: "gpt-4")
	Temperature         float32          // Temperature for generation, 0 selects the default (0.3)
	BaseURL             string           // Custom base URL for OpenAI-compatible APIs (optional)
	MaxCompletionTokens int              // Tokens reserved for the answer (default: 1024)
	ContextWindow       int              // Model context window (default: from the model name)
	Timeout             time.Duration    // HTTP timeout per request (default: 120s)
	Tokenizer           gotdoc.Tokenizer // Enables prompt fitting when set
	Logger              *slog.Logger     // Optional
	HTTPClient          *http.Client     // Overrides the default client (Timeout is then ignored)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	config.HTTPClient = &http.Client{Timeout: timeout}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	maxCompletion := cfg.MaxCompletionTokens
	if maxCompletion <= 0 {
		maxCompletion = gotdoc.DefaultMaxCompletionTokens
	}

	window := cfg.ContextWindow
	if window <= 0 {
		window = gotdoc.ContextWindow(model)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &OpenAIProvider{
		client:              openai.NewClientWithConfig(config),
		model:               model,
		temperature:         temperature,
		maxCompletionTokens: maxCompletion,
		contextWindow:       window,
		tokenizer:           cfg.Tokenizer,
		logger:              logger,
	}
}

// Model returns the model name requests are sent to.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Translate translates one chunk with a single chat completion call.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", nil
	}

	req = p.fit(req)
	prompt := gotdoc.BuildPrompt(req)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openai.ChatMessageRoleUser, Content: prompt.User},
		},
		MaxTokens:   p.maxCompletionTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", &gotdoc.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(ctx, err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &gotdoc.ProviderError{
			Message:   "no choices in OpenAI response",
			Cause:     gotdoc.ErrEmptyResponse,
			Retryable: true,
		}
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", &gotdoc.ProviderError{
			Message:   "empty completion from OpenAI",
			Cause:     gotdoc.ErrEmptyResponse,
			Retryable: true,
		}
	}

	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		p.logger.Warn("completion stopped at the token limit", "max_completion_tokens", p.maxCompletionTokens)
	}

	return content, nil
}

// fit trims context and sample so the prompt leaves room for the answer.
func (p *OpenAIProvider) fit(req TranslateRequest) TranslateRequest {
	if p.tokenizer == nil {
		return req
	}
	budget := p.contextWindow - p.maxCompletionTokens
	fitted, ok := gotdoc.FitRequest(req, p.tokenizer, budget)
	if fitted.Previous != req.Previous || fitted.Sample != req.Sample {
		p.logger.Debug("trimmed prompt context to fit the model window", "budget", budget)
	}
	if !ok {
		p.logger.Warn("prompt exceeds the model window even without context, sending anyway", "budget", budget)
	}
	return fitted
}

// isRetryableError reports whether a failed call is worth repeating:
// network failures, timeouts, rate limiting and server-side errors.
func isRetryableError(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}

// Verify OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)
