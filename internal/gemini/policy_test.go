package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"not found", &StatusError{Code: http.StatusNotFound}, OutcomeNotFound},
		{"wrapped not found", fmt.Errorf("call: %w", &StatusError{Code: 404}), OutcomeNotFound},
		{"unavailable", &StatusError{Code: http.StatusServiceUnavailable}, OutcomeTransient},
		{"bad request", &StatusError{Code: http.StatusBadRequest}, OutcomeTransient},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, OutcomeTransient},
		{"deadline", context.DeadlineExceeded, OutcomeTransient},
		{"empty", ErrEmptyCompletion, OutcomeUnusable},
		{"malformed", fmt.Errorf("%w: eof", ErrMalformedResponse), OutcomeUnusable},
		{"missing intent", ErrMissingIntent, OutcomeUnusable},
		{"other", errors.New("boom"), OutcomeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestWaitForNeverPausesAfterLastAttempt(t *testing.T) {
	p := DefaultRetryPolicy()

	pause, retry := p.waitFor(OutcomeTransient, 1)
	assert.True(t, retry)
	assert.Equal(t, time.Second, pause)

	_, retry = p.waitFor(OutcomeTransient, 2)
	assert.False(t, retry)

	pause, retry = p.waitFor(OutcomeUnusable, 1)
	assert.True(t, retry)
	assert.Equal(t, time.Second, pause)

	_, retry = p.waitFor(OutcomeNotFound, 1)
	assert.False(t, retry)
	_, retry = p.waitFor(OutcomeOther, 1)
	assert.False(t, retry)
}

func TestWorstCase(t *testing.T) {
	p := DefaultRetryPolicy()
	timeout := 60 * time.Second

	// 8 endpoints × (2 attempts × 60s + 1s backoff)
	assert.Equal(t, 8*(2*timeout+time.Second), p.WorstCase(len(DefaultModels), timeout))

	p.MaxAttempts = 3
	// backoff sum: 1s + 2s
	assert.Equal(t, 2*(3*timeout+3*time.Second), p.WorstCase(2, timeout))
	assert.Zero(t, p.WorstCase(0, timeout))
}

func TestSleepContextHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := sleepContext(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
