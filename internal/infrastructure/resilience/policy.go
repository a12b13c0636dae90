package resilience

import "time"

// Config tunes the executor. One attempt means no retries; the breaker still
// trips on repeated failures.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
	BreakerHalfOpenMax  uint32
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    1,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     400 * time.Millisecond,
		Multiplier:     2.0,

		BreakerEnabled:      true,
		BreakerMinRequests:  5,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  30 * time.Second,
		BreakerHalfOpenMax:  1,
	}
}

func (c Config) withDefaults() Config {
	out := c
	def := DefaultConfig()

	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = def.InitialBackoff
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.Multiplier < 1.0 {
		out.Multiplier = def.Multiplier
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	if out.BreakerHalfOpenMax == 0 {
		out.BreakerHalfOpenMax = def.BreakerHalfOpenMax
	}
	return out
}
