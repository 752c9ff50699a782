package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicMaxRetries     = 3
	anthropicInitialBackoff = 1 * time.Second
)

// AnthropicGenerator implements Generator against the Claude Messages API,
// used as the default backend for AiRevision and TitleGeneration.
type AnthropicGenerator struct {
	client     anthropic.Client
	model      anthropic.Model
	configured bool
}

func NewAnthropicGenerator(apiKey, model string) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: API key required")
	}
	return &AnthropicGenerator{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:      anthropic.Model(model),
		configured: true,
	}, nil
}

func (a *AnthropicGenerator) Name() string { return "anthropic" }

// HealthCheck has no cheap no-op endpoint on the Messages API; a minimal
// generation call would cost real tokens, so health is reported optimistic
// here and real failures surface from Generate itself.
func (a *AnthropicGenerator) HealthCheck(ctx context.Context) error {
	if !a.configured {
		return errors.New("anthropic: client not configured")
	}
	return nil
}

// Generate calls Messages.New with exponential backoff on retryable errors
// (timeouts, 429, 5xx): up to anthropicMaxRetries retries, waiting 1s, 2s,
// 4s, ... between attempts, with no cap and no jitter.
func (a *AnthropicGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	for attempt := 0; attempt <= anthropicMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := anthropicInitialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := a.client.Messages.New(ctx, params)
		if err == nil {
			if len(message.Content) == 0 {
				return "", errors.New("anthropic: response had no content blocks")
			}
			content := message.Content[0]
			if content.Type != "text" {
				return "", fmt.Errorf("anthropic: unexpected content block type %q", content.Type)
			}
			return content.Text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryableAnthropicErr(err) {
			return "", fmt.Errorf("anthropic: non-retryable error: %w", err)
		}
	}

	return "", fmt.Errorf("anthropic: failed after %d attempts: %w", anthropicMaxRetries+1, lastErr)
}

func isRetryableAnthropicErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
