package inference_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodsafe/internal/config"
	"foodsafe/internal/domain"
	"foodsafe/internal/inference"
	"foodsafe/internal/inference/openaicompat"
	"foodsafe/internal/port"
)

// stubCompleter is a minimal ChatCompleter for testing the factory.
type stubCompleter struct {
	model string
}

func (s *stubCompleter) Complete(_ context.Context, _ port.ChatRequest) (string, error) {
	return s.model, nil
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	inference.RegisterProvider("test-provider", func(cfg *config.InferenceConfig) (port.ChatCompleter, error) {
		return &stubCompleter{model: cfg.RefineModel}, nil
	})

	c, err := inference.NewCompleter(&config.InferenceConfig{
		Provider:    "test-provider",
		APIKey:      "key",
		RefineModel: "test-model",
	})

	require.NoError(t, err)
	out, err := c.Complete(context.Background(), port.ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "test-model", out)
}

func TestFactory_UnknownProvider(t *testing.T) {
	c, err := inference.NewCompleter(&config.InferenceConfig{
		Provider: "nonexistent-provider-xyz",
		APIKey:   "key",
	})

	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown inference provider")
}

func TestFactory_MissingCredential(t *testing.T) {
	c, err := inference.NewCompleter(&config.InferenceConfig{Provider: "groq"})

	assert.Nil(t, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingCredential))

	var remoteErr *domain.RemoteServiceError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "groq", remoteErr.Provider)
}

func TestFactory_OpenAICompatProviders(t *testing.T) {
	openaicompat.Register()

	for _, provider := range []string{"groq", "openai"} {
		t.Run(provider, func(t *testing.T) {
			c, err := inference.NewCompleter(&config.InferenceConfig{Provider: provider, APIKey: "key"})
			require.NoError(t, err)
			assert.IsType(t, &openaicompat.Client{}, c)
		})
	}
}

func TestNewRateLimitError(t *testing.T) {
	base := errors.New("slow down")

	rl := inference.NewRateLimitError("groq", base, 30)
	assert.Equal(t, 30*time.Second, rl.RetryAfter)
	assert.True(t, errors.Is(rl, base))
	assert.Contains(t, rl.Error(), "groq rate limited")

	assert.Equal(t, 60*time.Second, inference.NewRateLimitError("groq", base, 0).RetryAfter)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, inference.ParseRetryAfterHeader(""))
	assert.Equal(t, 0, inference.ParseRetryAfterHeader("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Equal(t, 45, inference.ParseRetryAfterHeader("45"))
}

func TestNewCompleterWithFallback(t *testing.T) {
	openaicompat.Register()

	c, err := inference.NewCompleterWithFallback(&config.InferenceConfig{Provider: "groq", APIKey: "key"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &openaicompat.Client{}, c)

	c, err = inference.NewCompleterWithFallback(&config.InferenceConfig{
		Provider:        "groq",
		APIKey:          "key",
		FallbackAPIKeys: []string{"key2", "key3"},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &inference.FallbackCompleter{}, c)

	_, err = inference.NewCompleterWithFallback(&config.InferenceConfig{
		Provider:        "groq",
		FallbackAPIKeys: []string{"key2"},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}
