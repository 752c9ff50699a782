package inference

import (
	"context"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicGeneratorRejectsEmptyKey(t *testing.T) {
	_, err := NewAnthropicGenerator("", "claude-haiku")
	assert.Error(t, err)
}

func TestNewAnthropicGeneratorSucceedsWithKey(t *testing.T) {
	g, err := NewAnthropicGenerator("sk-test", "claude-haiku")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", g.Name())
	assert.NoError(t, g.HealthCheck(context.Background()))
}

func TestIsRetryableAnthropicErrNilIsFalse(t *testing.T) {
	assert.False(t, isRetryableAnthropicErr(nil))
}

func TestIsRetryableAnthropicErrContextCanceledIsFalse(t *testing.T) {
	assert.False(t, isRetryableAnthropicErr(context.Canceled))
}

func TestIsRetryableAnthropicErrRateLimitIsTrue(t *testing.T) {
	err := &anthropic.Error{StatusCode: 429}
	assert.True(t, isRetryableAnthropicErr(err))
}

func TestIsRetryableAnthropicErrServerErrorIsTrue(t *testing.T) {
	err := &anthropic.Error{StatusCode: 503}
	assert.True(t, isRetryableAnthropicErr(err))
}

func TestIsRetryableAnthropicErrClientErrorIsFalse(t *testing.T) {
	err := &anthropic.Error{StatusCode: 400}
	assert.False(t, isRetryableAnthropicErr(err))
}

func TestIsRetryableAnthropicErrUnrelatedErrorIsFalse(t *testing.T) {
	assert.False(t, isRetryableAnthropicErr(errors.New("boom")))
}
