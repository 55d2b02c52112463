// Package summary handles AI-powered PDF summarization.
//
// The Service builds the prompt and makes exactly one call to a Provider
// (Gemini, Vertex AI or OpenRouter). There is no retry: a failure is
// reported to the user as-is. A circuit breaker sits in front of the
// provider so that a dead or rate-limited API fails fast instead of making
// every visitor wait for the full timeout.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrNotConfigured means the provider has no credentials.
	ErrNotConfigured = errors.New("summary provider not configured")
	// ErrProviderUnavailable means the circuit breaker is open.
	ErrProviderUnavailable = errors.New("summary provider temporarily unavailable")
	// ErrEmptyResponse means the model returned no text (or blocked the prompt).
	ErrEmptyResponse = errors.New("model returned no summary")
)

// Provider is a hosted generative-AI completion backend.
type Provider interface {
	Name() string
	Model() string // Default model
	Configured() bool
	// Generate sends prompt to model (the default when empty) and returns the text.
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// StatusError is a non-2xx answer from an HTTP provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, body)
}

// Result holds the generated summary.
type Result struct {
	Summary  string        `json:"summary"`
	Model    string        `json:"model"`
	Provider string        `json:"provider"`
	Prompt   string        `json:"-"`
	Duration time.Duration `json:"-"`
}

// BreakerConfig tunes the circuit breaker around the provider.
type BreakerConfig struct {
	FailureThreshold int           // Consecutive failures that open the breaker
	OpenTimeout      time.Duration // How long it stays open before a trial call
}

// Service handles AI summary generation.
type Service struct {
	provider Provider
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[string]
}

// New creates a summary service around provider. timeout bounds the single
// outbound call; zero means no extra deadline beyond the caller's context.
func New(provider Provider, timeout time.Duration, bc BreakerConfig) *Service {
	if bc.FailureThreshold <= 0 {
		bc.FailureThreshold = 5
	}
	if bc.OpenTimeout <= 0 {
		bc.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Timeout:     bc.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(bc.FailureThreshold)
		},
		IsSuccessful: func(err error) bool {
			return !countsAsOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚡ Circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &Service{
		provider: provider,
		timeout:  timeout,
		breaker:  gobreaker.NewCircuitBreaker[string](settings),
	}
}

// ProviderName returns the configured provider's name.
func (s *Service) ProviderName() string { return s.provider.Name() }

// Model returns the provider's default model.
func (s *Service) Model() string { return s.provider.Model() }

// IsConfigured reports whether the provider has credentials.
func (s *Service) IsConfigured() bool { return s.provider.Configured() }

// BreakerState returns "closed", "half-open" or "open".
func (s *Service) BreakerState() string { return s.breaker.State().String() }

// Summarize generates a summary of text. The provider is called at most once.
func (s *Service) Summarize(ctx context.Context, text string, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	if !s.provider.Configured() {
		return nil, fmt.Errorf("%w: set the API key for %s", ErrNotConfigured, s.provider.Name())
	}

	model := opts.Model
	if model == "" {
		model = s.provider.Model()
	}

	prompt := BuildPrompt(text, opts)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Printf("🤖 Generating ~%d word %s summary using %s/%s", opts.Words, opts.Style, s.provider.Name(), model)

	start := time.Now()
	content, err := s.breaker.Execute(func() (string, error) {
		return s.provider.Generate(ctx, prompt, model)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	return &Result{
		Summary:  content,
		Model:    model,
		Provider: s.provider.Name(),
		Prompt:   prompt,
		Duration: time.Since(start),
	}, nil
}

// countsAsOutage decides whether an error should move the breaker toward open.
// Caller cancellations and request-specific rejections (bad input, blocked
// content) say nothing about the provider's health.
func countsAsOutage(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrEmptyResponse) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusRequestTimeout:
			return true
		}
		return statusErr.StatusCode >= 500
	}
	return true
}
