package aiprovider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariachat/server/internal/port/outbound"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrProviderUnavailable is returned while the breaker rejects calls.
var ErrProviderUnavailable = errors.New("completion provider unavailable")

// Observer receives completion call outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	RecordAIRequest(provider, status string, duration time.Duration)
	SetBreakerState(provider string, state int)
}

// BreakerConfig configures the circuit breaker.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the default breaker configuration.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerCompletion guards a completion provider with a circuit breaker.
type BreakerCompletion struct {
	name     string
	next     outbound.CompletionPort
	breaker  *gobreaker.CircuitBreaker[string]
	observer Observer
	logger   *zap.Logger
}

// NewBreakerCompletion wraps next. observer may be nil.
func NewBreakerCompletion(name string, next outbound.CompletionPort, cfg BreakerConfig, observer Observer, logger *zap.Logger) *BreakerCompletion {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	b := &BreakerCompletion{
		name:     name,
		next:     next,
		observer: observer,
		logger:   logger.Named("completion_breaker"),
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// A caller giving up says nothing about the provider.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn("breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if b.observer != nil {
				b.observer.SetBreakerState(name, int(to))
			}
		},
	}
	b.breaker = gobreaker.NewCircuitBreaker[string](settings)
	if observer != nil {
		observer.SetBreakerState(name, int(gobreaker.StateClosed))
	}
	return b
}

// Complete calls the wrapped provider unless the breaker is open.
func (b *BreakerCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := b.breaker.Execute(func() (string, error) {
		return b.next.Complete(ctx, prompt)
	})
	b.record(err, time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return text, err
}

// State returns the current breaker state.
func (b *BreakerCompletion) State() gobreaker.State {
	return b.breaker.State()
}

func (b *BreakerCompletion) record(err error, d time.Duration) {
	if b.observer == nil {
		return
	}
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		status = "rejected"
	default:
		status = "error"
	}
	b.observer.RecordAIRequest(b.name, status, d)
}

// Compile-time interface assertions
var _ outbound.CompletionPort = (*BreakerCompletion)(nil)
