package resilience

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Outcome struct {
	Retryable     bool
	RecordFailure bool
}

type Classifier func(err error) Outcome

// Executor guards calls to an external service with a per-operation circuit
// breaker and optional bounded retries.
type Executor struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[struct{}]
}

func NewExecutor(cfg Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		cfg:      cfg.withDefaults(),
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker[struct{}]),
	}
}

func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, classify Classifier) error {
	if fn == nil {
		return errors.New("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classify == nil {
		classify = recordAll
	}

	if !e.cfg.BreakerEnabled {
		return e.attempt(ctx, op, fn, classify)
	}
	_, err := e.breaker(op, classify).Execute(func() (struct{}, error) {
		return struct{}{}, e.attempt(ctx, op, fn, classify)
	})
	return err
}

func (e *Executor) attempt(ctx context.Context, op string, fn func(context.Context) error, classify Classifier) error {
	wait := e.cfg.InitialBackoff
	var err error
	for n := 1; n <= e.cfg.MaxAttempts; n++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if n == e.cfg.MaxAttempts || !classify(err).Retryable {
			return err
		}

		e.logger.Warn("retry_attempt",
			"operation", op,
			"attempt", n,
			"max_attempts", e.cfg.MaxAttempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err,
		)
		if !sleep(ctx, wait) {
			return err
		}
		wait = time.Duration(float64(wait) * e.cfg.Multiplier)
		if wait > e.cfg.MaxBackoff {
			wait = e.cfg.MaxBackoff
		}
	}
	return err
}

func (e *Executor) breaker(op string, classify Classifier) *gobreaker.CircuitBreaker[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[op]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        op,
		MaxRequests: e.cfg.BreakerHalfOpenMax,
		Timeout:     e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[op] = cb
	return cb
}

func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func recordAll(error) Outcome {
	return Outcome{Retryable: false, RecordFailure: true}
}
