package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/dental-ai-assistant/internal/intent"
	"github.com/wolfman30/dental-ai-assistant/internal/observability/metrics"
	"github.com/wolfman30/dental-ai-assistant/pkg/logging"
)

// Client classifies messages with failover across endpoints. It is safe for
// concurrent use.
type Client struct {
	transport Transport
	endpoints []Endpoint
	policy    RetryPolicy
	timeout   time.Duration
	sticky    stickyEndpoint
	logger    *logging.Logger
	metrics   *metrics.ChatbotMetrics
	tracer    trace.Tracer
	wait      func(ctx context.Context, d time.Duration) error
}

// Option customises a Client.
type Option func(*Client)

// WithEndpoints overrides the endpoint priority list.
func WithEndpoints(endpoints []Endpoint) Option {
	return func(c *Client) {
		if len(endpoints) > 0 {
			c.endpoints = append([]Endpoint(nil), endpoints...)
		}
	}
}

// WithRetryPolicy overrides the per-endpoint retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.policy = p.withDefaults() }
}

// WithAttemptTimeout bounds each transport call. Non-positive values keep
// DefaultAttemptTimeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.ChatbotMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client. A nil transport yields an unconfigured client whose
// Generate always returns ErrNotConfigured.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		endpoints: DefaultEndpoints(),
		policy:    DefaultRetryPolicy(),
		timeout:   DefaultAttemptTimeout,
		logger:    logging.Default(),
		tracer:    otel.Tracer("dental.internal.gemini"),
		wait:      sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Component("gemini")
	return c
}

// Configured reports whether Generate can reach the service.
func (c *Client) Configured() bool {
	return c != nil && c.transport != nil
}

// Endpoints returns the endpoints the next Generate call would try.
func (c *Client) Endpoints() []Endpoint {
	if ep, ok := c.sticky.load(); ok {
		return []Endpoint{ep}
	}
	return append([]Endpoint(nil), c.endpoints...)
}

// Policy returns the retry policy in use.
func (c *Client) Policy() RetryPolicy {
	return c.policy
}

// AttemptTimeout returns the bound applied to each transport call.
func (c *Client) AttemptTimeout() time.Duration {
	return c.timeout
}

// WorstCase bounds one Generate call from the current endpoint list, the
// retry policy and the attempt timeout.
func (c *Client) WorstCase() time.Duration {
	return c.policy.WorstCase(len(c.Endpoints()), c.timeout)
}

// Generate classifies userMessage. Once any endpoint has produced a usable
// reply, only that endpoint is tried.
func (c *Client) Generate(ctx context.Context, userMessage, clinicContext string) (env intent.Envelope, err error) {
	if !c.Configured() {
		return intent.Envelope{}, ErrNotConfigured
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := c.tracer.Start(ctx, "gemini.generate")
	defer span.End()
	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		c.metrics.ObserveAILatency(status, time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("gemini generate panicked", "panic", r)
			env, err = intent.Envelope{}, fmt.Errorf("gemini: recovered panic: %v", r)
		}
	}()

	prompt := BuildPrompt(userMessage, clinicContext)
	endpoints := c.Endpoints()
	span.SetAttributes(attribute.Int("gemini.endpoints", len(endpoints)))

	var lastErr error
	for _, ep := range endpoints {
		env, err := c.tryEndpoint(ctx, ep, prompt)
		if err == nil {
			if c.sticky.claim(ep) {
				c.logger.Info("found working gemini endpoint", "model", ep.Model)
			}
			span.SetAttributes(attribute.String("gemini.model", ep.Model))
			return env, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return intent.Envelope{}, ctxErr
		}
		lastErr = err
	}

	c.logger.Warn("all gemini endpoints failed, falling back to rules", "error", lastErr)
	if lastErr == nil {
		return intent.Envelope{}, ErrEndpointsExhausted
	}
	return intent.Envelope{}, fmt.Errorf("%w: %w", ErrEndpointsExhausted, lastErr)
}

func (c *Client) tryEndpoint(ctx context.Context, ep Endpoint, prompt string) (intent.Envelope, error) {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		env, err := c.attempt(ctx, ep, prompt)
		if err == nil {
			c.metrics.ObserveEndpointAttempt(ep.Model, "ok")
			return env, nil
		}
		if ctx.Err() != nil {
			return intent.Envelope{}, ctx.Err()
		}
		lastErr = err

		outcome := c.policy.Classify(err)
		c.metrics.ObserveEndpointAttempt(ep.Model, outcome.String())
		pause, retry := c.policy.waitFor(outcome, attempt)
		switch outcome {
		case OutcomeNotFound:
			c.logger.Warn("gemini endpoint not available", "model", ep.Model, "error", err)
		case OutcomeOther:
			c.logger.Warn("unexpected gemini error", "model", ep.Model, "error", err)
		default:
			c.logger.Warn("gemini attempt failed",
				"model", ep.Model,
				"attempt", attempt,
				"max_attempts", c.policy.MaxAttempts,
				"outcome", outcome.String(),
				"error", err,
			)
		}
		if !retry {
			break
		}
		if err := c.wait(ctx, pause); err != nil {
			return intent.Envelope{}, err
		}
	}
	return intent.Envelope{}, lastErr
}

func (c *Client) attempt(ctx context.Context, ep Endpoint, prompt string) (intent.Envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	completion, err := c.transport.Complete(ctx, ep, prompt)
	if err != nil {
		return intent.Envelope{}, err
	}
	env, err := DecodeEnvelope(completion)
	if err != nil {
		if !errors.Is(err, ErrEmptyCompletion) {
			c.logger.Debug("gemini returned unusable completion", "model", ep.Model, "raw", completion)
		}
		return intent.Envelope{}, err
	}
	return env, nil
}
