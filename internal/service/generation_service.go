package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/culturallm/backend/config"
	"github.com/culturallm/backend/internal/metrics"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// GenerationParams are the sampling controls passed with a prompt. Zero
// values leave the model default in place.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Generator turns a prompt into free text. Implementations return an error
// wrapping ErrServiceUnavailable when the backend cannot be reached in time.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

type geminiGenerator struct {
	client     *genai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	metrics    *metrics.Metrics
}

// NewGeminiGenerator builds the Gemini backed generator. Without an API key
// it returns a generator that always reports unavailability.
func NewGeminiGenerator(cfg *config.Config, m *metrics.Metrics) (Generator, error) {
	if cfg.Generation.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Generation will report the service as unavailable.")
		return unavailableGenerator{}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.Generation.GeminiApiKey))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{
		client:     client,
		model:      cfg.Generation.Model,
		timeout:    cfg.Generation.Timeout,
		maxRetries: cfg.Generation.MaxRetries,
		metrics:    m,
	}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	start := time.Now()
	text, err := callWithRetry(ctx, g.maxRetries, g.timeout, func(ctx context.Context) (string, error) {
		return g.generateOnce(ctx, prompt, params)
	})

	switch {
	case err == nil:
		g.metrics.GenerationObserved("ok", time.Since(start))
	case errors.Is(err, ErrServiceUnavailable):
		g.metrics.GenerationObserved("unavailable", time.Since(start))
		log.Error().Err(err).Str("model", g.model).Msg("Gemini unavailable")
	default:
		g.metrics.GenerationObserved("error", time.Since(start))
		log.Error().Err(err).Str("model", g.model).Msg("Gemini returned an unusable response")
	}
	return text, err
}

func (g *geminiGenerator) generateOnce(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if params.Temperature > 0 {
		model.SetTemperature(params.Temperature)
	}
	if params.TopP > 0 {
		model.SetTopP(params.TopP)
	}
	if params.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(params.MaxOutputTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", backoff.Permanent(&MalformedResponseError{Reason: "no candidates returned"})
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

func (g *geminiGenerator) Close() error {
	return g.client.Close()
}

var _ io.Closer = (*geminiGenerator)(nil)

var retryInitialInterval = 500 * time.Millisecond

const (
	retryMaxInterval = 5 * time.Second
	retryMultiplier  = 1.5
	retryJitter      = 0.5
)

// GenerationBudget is the longest a retried generation call can take: every
// attempt hitting its timeout plus the largest jittered wait between attempts.
// It is zero when attempts are unbounded.
func GenerationBudget(timeout time.Duration, maxRetries int) time.Duration {
	if timeout <= 0 {
		return 0
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	budget := time.Duration(maxRetries+1) * timeout
	interval := float64(retryInitialInterval)
	for i := 0; i < maxRetries; i++ {
		if interval > float64(retryMaxInterval) {
			interval = float64(retryMaxInterval)
		}
		budget += time.Duration(interval * (1 + retryJitter))
		interval *= retryMultiplier
	}
	return budget
}

// callWithRetry runs fn with a per-attempt timeout, retrying failures with
// exponential backoff up to maxRetries extra attempts. Errors wrapped with
// backoff.Permanent stop the loop and are returned unwrapped; exhausted
// retries are reported as ErrServiceUnavailable.
func callWithRetry(ctx context.Context, maxRetries int, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.MaxInterval = retryMaxInterval
	policy.Multiplier = retryMultiplier
	policy.RandomizationFactor = retryJitter

	attempt := 0
	var text string
	op := func() error {
		attempt++
		attemptCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		out, err := fn(attemptCtx)
		if err != nil {
			return err
		}
		text = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retryIn", wait).Msg("Generation attempt failed")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxRetries)), ctx), notify)
	if err == nil {
		return text, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return "", permanent.Err
	}
	if errors.Is(err, ErrMalformedResponse) {
		return "", err
	}
	return "", fmt.Errorf("%w after %d attempt(s): %v", ErrServiceUnavailable, attempt, err)
}

type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string, GenerationParams) (string, error) {
	return "", fmt.Errorf("%w: no API key configured", ErrServiceUnavailable)
}
