package gemini

import (
	"context"
	"errors"
	"net"
	"time"
)

// Outcome is how one failed attempt steers the retry loop.
type Outcome int

const (
	// OutcomeOther abandons the endpoint and moves on.
	OutcomeOther Outcome = iota
	// OutcomeUnusable retries the same endpoint after the base delay.
	OutcomeUnusable
	// OutcomeNotFound moves to the next endpoint without waiting.
	OutcomeNotFound
	// OutcomeTransient retries the same endpoint after the backoff delay.
	OutcomeTransient
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnusable:
		return "unusable"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransient:
		return "transient"
	default:
		return "other"
	}
}

// RetryPolicy controls attempts per endpoint and the waits between them.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     func(delay time.Duration, attempt int) time.Duration
	Classify    func(err error) Outcome
}

// DefaultRetryPolicy makes two attempts per endpoint with a one second linear backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Delay:       time.Second,
		Backoff:     LinearBackoff,
		Classify:    ClassifyError,
	}
}

// LinearBackoff waits delay × attempt.
func LinearBackoff(delay time.Duration, attempt int) time.Duration {
	return delay * time.Duration(attempt)
}

// ClassifyError maps transport and decode errors to outcomes.
func ClassifyError(err error) Outcome {
	if err == nil {
		return OutcomeOther
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.NotFound() {
			return OutcomeNotFound
		}
		return OutcomeTransient
	}
	if errors.Is(err, ErrEmptyCompletion) || errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrMissingIntent) {
		return OutcomeUnusable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return OutcomeTransient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTransient
	}
	return OutcomeOther
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	if p.Backoff == nil {
		p.Backoff = def.Backoff
	}
	if p.Classify == nil {
		p.Classify = def.Classify
	}
	return p
}

// waitFor returns how long to pause after a failed attempt and whether the
// same endpoint should be tried again.
func (p RetryPolicy) waitFor(outcome Outcome, attempt int) (time.Duration, bool) {
	last := attempt >= p.MaxAttempts
	switch outcome {
	case OutcomeUnusable:
		if last {
			return 0, false
		}
		return p.Delay, true
	case OutcomeTransient:
		if last {
			return 0, false
		}
		return p.Backoff(p.Delay, attempt), true
	default:
		return 0, false
	}
}

// WorstCase bounds the time one Generate call can take when every attempt
// runs to timeout and waits the longest permitted pause.
func (p RetryPolicy) WorstCase(endpoints int, timeout time.Duration) time.Duration {
	p = p.withDefaults()
	if endpoints <= 0 {
		return 0
	}
	var perEndpoint time.Duration
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		perEndpoint += timeout
		if attempt < p.MaxAttempts {
			pause := p.Backoff(p.Delay, attempt)
			if p.Delay > pause {
				pause = p.Delay
			}
			perEndpoint += pause
		}
	}
	return time.Duration(endpoints) * perEndpoint
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
